package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/clawcast/pkg/errs"
	"github.com/iWorld-y/clawcast/pkg/model"
)

// mockAnalyzer 流水线替身
type mockAnalyzer struct {
	result *model.AnalysisResult
	err    error
	input  any
}

func (m *mockAnalyzer) Analyze(ctx context.Context, input any) (*model.AnalysisResult, error) {
	m.input = input
	return m.result, m.err
}

func newService(m *mockAnalyzer) *AnalysisService {
	return NewAnalysisService(m, log.DefaultLogger)
}

func doRequest(t *testing.T, svc *AnalysisService, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	svc.HandleAnalyze(w, req)
	return w
}

func TestHandleAnalyze_WrongContentType(t *testing.T) {
	w := doRequest(t, newService(&mockAnalyzer{}), "text/plain", `{"query":"Will X happen?"}`)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "Content-Type must be application/json" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestHandleAnalyze_InvalidJSON(t *testing.T) {
	w := doRequest(t, newService(&mockAnalyzer{}), "application/json", `{"query":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "Invalid JSON in request body" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestHandleAnalyze_Success(t *testing.T) {
	m := &mockAnalyzer{result: &model.AnalysisResult{
		EventSummary:  "summary",
		Confidence:    model.ConfidenceHigh,
		KeyDrivers:    []string{"d"},
		ChangeFactors: []string{"f"},
		Evidence:      []model.EvidenceItem{{ID: "1", Source: "s", Quote: "q", Type: model.EvidenceNews}},
	}}
	w := doRequest(t, newService(m), "application/json; charset=utf-8", `{"query":"Will X happen?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if m.input != "Will X happen?" {
		t.Errorf("pipeline input = %v", m.input)
	}

	var resp model.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Confidence != model.ConfidenceHigh || len(resp.Evidence) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleAnalyze_RateLimitTranslated(t *testing.T) {
	m := &mockAnalyzer{err: errs.NewSynthesis(errs.RateLimited, errors.New("upstream body with secrets"))}
	w := doRequest(t, newService(m), "application/json", `{"query":"Will X happen?"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if strings.Contains(w.Body.String(), "secrets") {
		t.Errorf("upstream detail leaked: %s", w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "Too many requests. Please try again in a moment." {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestHandleAnalyze_ValidationMessageVerbatim(t *testing.T) {
	m := &mockAnalyzer{err: errs.NewValidation(errs.TooShort, "Query must be at least 5 characters")}
	w := doRequest(t, newService(m), "application/json", `{"query":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "Query must be at least 5 characters" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestHandleAnalyze_NonStringQueryReachesPipeline(t *testing.T) {
	// 类型校验属于 QueryValidator 的职责，接口层原样透传
	m := &mockAnalyzer{err: errs.NewValidation(errs.MissingOrWrongType, "Query is required and must be a string")}
	w := doRequest(t, newService(m), "application/json", `{"query":42}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if f, ok := m.input.(float64); !ok || f != 42 {
		t.Errorf("pipeline input = %#v, want raw 42", m.input)
	}
}
