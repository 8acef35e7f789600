package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/clawcast/internal/logger"
	"github.com/iWorld-y/clawcast/pkg/errs"
	dm "github.com/iWorld-y/clawcast/pkg/model"
)

const (
	maxKeyDrivers    = 5
	maxChangeFactors = 3
)

// 证据之外不允许模型使用任何事实；置信度只许三档，严禁数字概率
const systemPrompt = `You are ClawCast, an evidence-based analysis agent. Your core principles:

1. ONLY use evidence provided in context - never invent data
2. Every claim must be traceable to a source
3. Highlight disagreements between sources
4. Identify factors that could change the outcome
5. NEVER produce numeric probabilities - only HIGH/MEDIUM/LOW confidence

Confidence levels:
- HIGH: 3+ sources agree, prediction markets show >70% consensus, recent high-quality sources
- MEDIUM: Mixed signals, markets 40-70%, some uncertainty
- LOW: Conflicting sources, limited data, inherently unpredictable

Respond in JSON format:
{
  "eventSummary": "Clear 1-sentence summary of the event being analyzed",
  "confidence": "HIGH" | "MEDIUM" | "LOW",
  "keyDrivers": ["3-5 bullet points explaining the assessment, citing sources"],
  "changeFactors": ["2-3 factors that could change this assessment"]
}

Be honest about uncertainty. If evidence is limited, say so.`

// fencedJSON 兼容模型把 JSON 包在代码块里返回的情况
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Options 综合器配置
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
}

// Synthesizer 调用外部推理模型，把合并后的证据加工成结构化评估
type Synthesizer struct {
	cm          model.BaseChatModel
	limiter     *rate.Limiter
	temperature float32
}

// NewSynthesizer 创建综合器
func NewSynthesizer(ctx context.Context, opts Options, limiter *rate.Limiter) (*Synthesizer, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: opts.BaseURL,
		APIKey:  opts.APIKey,
		Model:   opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("chat model init failed: %w", err)
	}
	return &Synthesizer{cm: cm, limiter: limiter, temperature: opts.Temperature}, nil
}

// NewSynthesizerWithModel 直接注入模型实例，供测试使用
func NewSynthesizerWithModel(cm model.BaseChatModel, limiter *rate.Limiter, temperature float32) *Synthesizer {
	return &Synthesizer{cm: cm, limiter: limiter, temperature: temperature}
}

// Synthesize 发起一次推理调用并解析回复。
// 上游失败会失败整个请求（没有评估就没有结果）；
// 回复解析失败则降级为确定性的保底评估，不算失败。
func (s *Synthesizer) Synthesize(ctx context.Context, query string, items []dm.EvidenceItem, odds []dm.MarketOdds) (*dm.Analysis, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, classifyUpstreamError(err)
		}
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: buildUserPrompt(query, items, odds)},
	}

	resp, err := s.cm.Generate(ctx, messages, model.WithTemperature(s.temperature))
	if err != nil {
		return nil, classifyUpstreamError(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, errs.NewSynthesis(errs.SynthesisFailed, errors.New("no response from model"))
	}

	return parseAnalysis(query, content), nil
}

// buildUserPrompt 渲染证据上下文与可选的市场赔率块
func buildUserPrompt(query string, items []dm.EvidenceItem, odds []dm.MarketOdds) string {
	var evidence strings.Builder
	for i, item := range items {
		if i > 0 {
			evidence.WriteString("\n\n")
		}
		fmt.Fprintf(&evidence, "[Source %d: %s] %s", i+1, item.Source, item.Quote)
	}

	var market strings.Builder
	if len(odds) > 0 {
		market.WriteString("\n\nPrediction Market Data:\n")
		for i, o := range odds {
			if i > 0 {
				market.WriteString("\n")
			}
			fmt.Fprintf(&market, "- %s: %s", o.Platform, o.Odds)
		}
	}

	return fmt.Sprintf(`Query: %q

Evidence Gathered:
%s%s

Synthesize this evidence into an assessment. Remember:
- Only cite the evidence provided above
- Do not invent additional data points
- Be explicit about uncertainty`, query, evidence.String(), market.String())
}

// parseAnalysis 从模型回复中提取 JSON 并钳制所有字段；
// 提取或解析失败时返回保底评估
func parseAnalysis(query, content string) *dm.Analysis {
	jsonStr := content
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		jsonStr = strings.TrimSpace(m[1])
	}

	var raw struct {
		EventSummary  any   `json:"eventSummary"`
		Confidence    any   `json:"confidence"`
		KeyDrivers    []any `json:"keyDrivers"`
		ChangeFactors []any `json:"changeFactors"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		logger.Stage("synthesizing").Warnf("模型回复无法解析为 JSON，使用保底评估: %v", err)
		return fallbackAnalysis(query)
	}

	summary := coerceString(raw.EventSummary)
	if summary == "" {
		summary = query
	}

	drivers := coerceStrings(raw.KeyDrivers, maxKeyDrivers)
	if len(drivers) == 0 {
		drivers = []string{"Based on available evidence"}
	}
	factors := coerceStrings(raw.ChangeFactors, maxChangeFactors)
	if len(factors) == 0 {
		factors = []string{"New information could change this assessment"}
	}

	return &dm.Analysis{
		EventSummary:  summary,
		Confidence:    dm.ParseConfidence(coerceString(raw.Confidence)),
		KeyDrivers:    drivers,
		ChangeFactors: factors,
	}
}

// fallbackAnalysis 确定性的降级结果
func fallbackAnalysis(query string) *dm.Analysis {
	return &dm.Analysis{
		EventSummary:  query,
		Confidence:    dm.ConfidenceMedium,
		KeyDrivers:    []string{"Analysis based on available evidence"},
		ChangeFactors: []string{"Additional data could refine this assessment"},
	}
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceStrings(vs []any, limit int) []string {
	var out []string
	for _, v := range vs {
		if len(out) >= limit {
			break
		}
		if s := coerceString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// classifyUpstreamError 按上游症状分类综合错误。
// eino 把上游状态码揉在错误文本里，这里按文本特征识别。
func classifyUpstreamError(err error) *errs.SynthesisError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.NewSynthesis(errs.Timeout, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "rate limit"):
		return errs.NewSynthesis(errs.RateLimited, err)
	case strings.Contains(msg, "402") || strings.Contains(msg, "usage limit") || strings.Contains(msg, "credits") || strings.Contains(msg, "insufficient quota"):
		return errs.NewSynthesis(errs.CapacityReached, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return errs.NewSynthesis(errs.Timeout, err)
	default:
		return errs.NewSynthesis(errs.SynthesisFailed, err)
	}
}
