package evidence

import (
	"context"
	"sync"
	"time"

	"github.com/iWorld-y/clawcast/internal/logger"
	"github.com/iWorld-y/clawcast/pkg/model"
)

// Aggregator 并发运行全部适配器并按固定顺序合并结果。
// 单个来源失败或超时只影响自己，不会让整个请求失败。
type Aggregator struct {
	adapters       []Adapter
	adapterTimeout time.Duration
}

// NewAggregator 创建聚合器，adapters 的声明顺序即合并顺序
func NewAggregator(adapterTimeout time.Duration, adapters ...Adapter) *Aggregator {
	if adapterTimeout == 0 {
		adapterTimeout = 20 * time.Second
	}
	return &Aggregator{adapters: adapters, adapterTimeout: adapterTimeout}
}

type adapterResult struct {
	items []model.EvidenceItem
	odds  []model.MarketOdds
}

// Gather 扇出所有适配器，等全部返回后合并。
// 合并顺序固定为适配器声明顺序，与完成先后无关；跨来源不做去重。
func (g *Aggregator) Gather(ctx context.Context, query string) *Set {
	results := make([]adapterResult, len(g.adapters))
	var wg sync.WaitGroup

	for i, adapter := range g.adapters {
		wg.Add(1)
		go func(i int, adapter Adapter) {
			defer wg.Done()

			actx, cancel := context.WithTimeout(ctx, g.adapterTimeout)
			defer cancel()

			items, odds, err := adapter.Gather(actx, query)
			if err != nil {
				// 单一来源故障按"该来源无证据"处理
				logger.Stage("gathering").Warnf("证据来源 [%s] 采集失败: %v", adapter.Name(), err)
				return
			}
			results[i] = adapterResult{items: items, odds: odds}
		}(i, adapter)
	}

	wg.Wait()

	set := &Set{}
	for i, r := range results {
		logger.Stage("gathering").Debugf("来源 [%s] 返回 %d 条证据", g.adapters[i].Name(), len(r.items))
		set.Items = append(set.Items, r.items...)
		set.Odds = append(set.Odds, r.odds...)
	}
	return set
}
