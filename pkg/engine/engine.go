package engine

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/clawcast/internal/config"
	"github.com/iWorld-y/clawcast/internal/logger"
	"github.com/iWorld-y/clawcast/pkg/coingecko"
	"github.com/iWorld-y/clawcast/pkg/errs"
	"github.com/iWorld-y/clawcast/pkg/evidence"
	"github.com/iWorld-y/clawcast/pkg/firecrawl"
	"github.com/iWorld-y/clawcast/pkg/model"
	"github.com/iWorld-y/clawcast/pkg/polymarket"
	"github.com/iWorld-y/clawcast/pkg/query"
	"github.com/iWorld-y/clawcast/pkg/synthesis"
)

// Gatherer 证据聚合入口
type Gatherer interface {
	Gather(ctx context.Context, query string) *evidence.Set
}

// Synthesizer 证据综合入口
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, items []model.EvidenceItem, odds []model.MarketOdds) (*model.Analysis, error)
}

// Engine 核心流水线：校验 -> 并发采集 -> 综合 -> 组装。
// 每次请求无状态，不保留任何查询或证据。
type Engine struct {
	cfg      *config.Config
	gatherer Gatherer
	synth    Synthesizer
	gatherTO time.Duration
	synthTO  time.Duration
}

// NewEngine 创建引擎实例
func NewEngine(cfg *config.Config) (*Engine, error) {
	ctx := context.Background()

	// 推理调用限流：Limit 取 RPM/60，Burst 取 QPS
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.Concurrency.RPM)/60.0), cfg.Concurrency.QPS)

	synth, err := synthesis.NewSynthesizer(ctx, synthesis.Options{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	}, limiter)
	if err != nil {
		return nil, err
	}

	fetchTimeout := time.Duration(cfg.Timeout.Fetch) * time.Second
	gatherer := evidence.NewAggregator(
		time.Duration(cfg.Timeout.Gather)*time.Second,
		evidence.NewWebAdapter(firecrawl.NewClient(cfg.Firecrawl.APIKey, cfg.Firecrawl.BaseURL), fetchTimeout),
		evidence.NewMarketAdapter(coingecko.NewClient(cfg.CoinGecko.BaseURL)),
		evidence.NewPredictionAdapter(polymarket.NewClient(cfg.Polymarket.BaseURL)),
	)

	return &Engine{
		cfg:      cfg,
		gatherer: gatherer,
		synth:    synth,
		gatherTO: time.Duration(cfg.Timeout.Gather) * time.Second,
		synthTO:  time.Duration(cfg.Timeout.Synthesis) * time.Second,
	}, nil
}

// Analyze 执行一次完整的分析流水线。
// 校验失败立即返回，不发起任何网络请求；采集阶段部分失败不致命；
// 综合阶段失败则整个请求失败。流水线内部不做重试。
func (e *Engine) Analyze(ctx context.Context, input any) (*model.AnalysisResult, error) {
	sanitized, err := query.Validate(input)
	if err != nil {
		logger.Stage("validating").Infof("查询未通过校验: %v", err)
		return nil, err
	}
	logger.Stage("validating").Debugf("查询已清洗: %s", sanitized)

	// 任何网络调用之前先确认凭证齐全；对外只报"服务不可用"，不暴露细节
	if missing := e.cfg.MissingCredential(); missing != "" {
		cfgErr := errs.NewConfiguration(missing)
		logger.Stage("validating").Error(cfgErr.Error())
		return nil, cfgErr
	}

	gctx, cancelGather := context.WithTimeout(ctx, e.gatherTO)
	set := e.gatherer.Gather(gctx, sanitized)
	cancelGather()
	logger.Stage("gathering").Infof("共采集到 %d 条证据, %d 条市场赔率", len(set.Items), len(set.Odds))

	sctx, cancelSynth := context.WithTimeout(ctx, e.synthTO)
	defer cancelSynth()
	analysis, err := e.synth.Synthesize(sctx, sanitized, set.Items, set.Odds)
	if err != nil {
		logger.Stage("synthesizing").Errorf("综合失败: %v", err)
		return nil, err
	}
	logger.Stage("synthesizing").Infof("综合完成: confidence=%s", analysis.Confidence)

	return &model.AnalysisResult{
		EventSummary:  analysis.EventSummary,
		Confidence:    analysis.Confidence,
		KeyDrivers:    analysis.KeyDrivers,
		ChangeFactors: analysis.ChangeFactors,
		Evidence:      set.Items,
		MarketOdds:    set.Odds,
	}, nil
}
