package evidence

import (
	"context"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/iWorld-y/clawcast/pkg/model"
	"github.com/iWorld-y/clawcast/pkg/polymarket"
)

const (
	predictionMaxMarkets     = 3
	predictionRelevanceScore = 0.95
)

// PredictionAdapter 预测市场证据适配器
type PredictionAdapter struct {
	client *polymarket.Client
}

// NewPredictionAdapter 创建预测市场适配器
func NewPredictionAdapter(client *polymarket.Client) *PredictionAdapter {
	return &PredictionAdapter{client: client}
}

func (a *PredictionAdapter) Name() string { return "prediction" }

// Gather 检索未关闭的预测市场，对每个可解析出 Yes 价格的市场
// 产出一条赔率引用和一条配套证据
func (a *PredictionAdapter) Gather(ctx context.Context, query string) ([]model.EvidenceItem, []model.MarketOdds, error) {
	markets, err := a.client.SearchMarkets(ctx, polymarket.SearchRequest{
		Search: query,
		Limit:  predictionMaxMarkets,
		Closed: false,
	})
	if err != nil {
		return nil, nil, err
	}

	var items []model.EvidenceItem
	var odds []model.MarketOdds

	for _, m := range markets {
		yes, ok := m.YesPrice()
		if !ok {
			continue
		}
		percentage := int(math.Round(yes * 100))
		eventURL := m.EventURL()

		odds = append(odds, model.MarketOdds{
			Platform: "Polymarket",
			Odds:     fmt.Sprintf("%d%% Yes", percentage),
			URL:      eventURL,
		})

		items = append(items, model.EvidenceItem{
			ID:     uuid.NewString(),
			Source: "Polymarket",
			URL:    eventURL,
			Quote: fmt.Sprintf("Prediction market %q shows %d%% probability. Volume: $%s.",
				m.Question, percentage, humanize.Commaf(m.VolumeUSD())),
			Timestamp:      today(),
			Type:           model.EvidencePrediction,
			RelevanceScore: predictionRelevanceScore,
		})
	}

	return items, odds, nil
}
