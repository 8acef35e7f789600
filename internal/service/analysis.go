package service

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/clawcast/internal/logger"
	"github.com/iWorld-y/clawcast/pkg/errs"
	"github.com/iWorld-y/clawcast/pkg/model"
)

// Analyzer 流水线入口
type Analyzer interface {
	Analyze(ctx context.Context, input any) (*model.AnalysisResult, error)
}

// AnalysisService 对外的分析接口层
type AnalysisService struct {
	eng Analyzer
	log *log.Helper
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(eng Analyzer, kl log.Logger) *AnalysisService {
	return &AnalysisService{eng: eng, log: log.NewHelper(kl)}
}

type analyzeRequest struct {
	Query any `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleAnalyze 处理 POST /api/v1/analyze
func (s *AnalysisService) HandleAnalyze(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodPost {
		writeJSON(w, nethttp.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		writeJSON(w, nethttp.StatusUnsupportedMediaType, errorResponse{Error: "Content-Type must be application/json"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, nethttp.StatusBadRequest, errorResponse{Error: "Invalid JSON in request body"})
		return
	}

	// 纯装饰性的进度计数，模拟前端的分步加载动画，跟流水线正确性无关
	stop := startProgressTicker(r.Context(), s.log)
	result, err := s.eng.Analyze(r.Context(), req.Query)
	stop()

	if err != nil {
		status, msg := errs.Translate(err)
		// 翻译决策连同内部错误一起记服务端日志，客户端只拿固定话术
		logger.Log.WithFields(map[string]any{
			"stage":  "translate",
			"status": status,
			"error":  err.Error(),
		}).Error("分析请求失败")
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	writeJSON(w, nethttp.StatusOK, result)
}

// startProgressTicker 每 2 秒推进一步、封顶 3 步，返回停止函数
func startProgressTicker(ctx context.Context, helper *log.Helper) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		step := 0
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if step < 3 {
					step++
				}
				helper.Debugf("analysis in progress, step %d/3", step)
			}
		}
	}()
	var once bool
	return func() {
		if !once {
			once = true
			close(done)
		}
	}
}

func writeJSON(w nethttp.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
