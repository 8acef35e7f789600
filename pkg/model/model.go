package model

// EvidenceType 证据类别
type EvidenceType string

const (
	EvidenceNews       EvidenceType = "news"
	EvidenceMarket     EvidenceType = "market"
	EvidencePrediction EvidenceType = "prediction"
	EvidenceAnalysis   EvidenceType = "analysis"
)

// Confidence 三档置信度，明确不是概率
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ParseConfidence 将模型返回的置信度钳制到合法枚举，非法值一律回退 MEDIUM
func ParseConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(s)
	default:
		return ConfidenceMedium
	}
}

// EvidenceItem 单条证据，由适配器创建后不再修改
type EvidenceItem struct {
	ID             string       `json:"id"`
	Source         string       `json:"source"`
	URL            string       `json:"url,omitempty"`
	Quote          string       `json:"quote"`
	Timestamp      string       `json:"timestamp"` // YYYY-MM-DD
	Type           EvidenceType `json:"type"`
	RelevanceScore float64      `json:"relevanceScore,omitempty"`
}

// MarketOdds 预测市场赔率引用
type MarketOdds struct {
	Platform string `json:"platform"`
	Odds     string `json:"odds"` // 例如 "62% Yes"
	URL      string `json:"url,omitempty"`
}

// Analysis 综合步骤的产出
type Analysis struct {
	EventSummary  string     `json:"eventSummary"`
	Confidence    Confidence `json:"confidence"`
	KeyDrivers    []string   `json:"keyDrivers"`
	ChangeFactors []string   `json:"changeFactors"`
}

// AnalysisResult 流水线最终响应，query/timestamp 由调用方补充
type AnalysisResult struct {
	EventSummary  string         `json:"eventSummary"`
	Confidence    Confidence     `json:"confidence"`
	KeyDrivers    []string       `json:"keyDrivers"`
	ChangeFactors []string       `json:"changeFactors"`
	Evidence      []EvidenceItem `json:"evidence"`
	MarketOdds    []MarketOdds   `json:"marketOdds,omitempty"`
}
