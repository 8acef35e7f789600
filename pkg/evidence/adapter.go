package evidence

import (
	"context"
	"time"

	"github.com/iWorld-y/clawcast/pkg/model"
)

// Adapter 单个证据来源适配器。实现方自行处理上游差异，
// 返回的错误只会被聚合器记录，绝不向上传播。
type Adapter interface {
	Name() string
	Gather(ctx context.Context, query string) ([]model.EvidenceItem, []model.MarketOdds, error)
}

// Set 一次请求聚合得到的全部证据
type Set struct {
	Items []model.EvidenceItem
	Odds  []model.MarketOdds
}

func today() string {
	return time.Now().Format(time.DateOnly)
}
