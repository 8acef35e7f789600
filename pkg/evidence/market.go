package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/iWorld-y/clawcast/pkg/coingecko"
	"github.com/iWorld-y/clawcast/pkg/model"
)

const marketRelevanceScore = 0.9

// cryptoTerm 检索词到 CoinGecko 币种 ID 的映射项，按声明顺序匹配
type cryptoTerm struct {
	term   string
	coinID string
}

// 固定的加密货币词表，"crypto" 泛指时默认比特币
var cryptoTerms = []cryptoTerm{
	{"bitcoin", "bitcoin"},
	{"btc", "bitcoin"},
	{"ethereum", "ethereum"},
	{"eth", "ethereum"},
	{"crypto", "bitcoin"},
	{"solana", "solana"},
	{"sol", "solana"},
	{"xrp", "ripple"},
}

// MarketAdapter 加密货币行情证据适配器
type MarketAdapter struct {
	client *coingecko.Client
}

// NewMarketAdapter 创建行情适配器
func NewMarketAdapter(client *coingecko.Client) *MarketAdapter {
	return &MarketAdapter{client: client}
}

func (a *MarketAdapter) Name() string { return "market" }

// DetectCoin 扫描查询中的加密货币词汇，返回对应的币种 ID
func DetectCoin(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, t := range cryptoTerms {
		if strings.Contains(lower, t.term) {
			return t.coinID, true
		}
	}
	return "", false
}

// Gather 查询提到加密货币时拉取一条行情证据，否则返回空
func (a *MarketAdapter) Gather(ctx context.Context, query string) ([]model.EvidenceItem, []model.MarketOdds, error) {
	coinID, ok := DetectCoin(query)
	if !ok {
		return nil, nil, nil
	}

	coin, err := a.client.GetCoin(ctx, coinID)
	if err != nil {
		return nil, nil, err
	}

	md := coin.MarketData
	quote := fmt.Sprintf("%s (%s) is currently trading at %s with a market cap of %s. Price changes: 24h %s, 7d %s, 30d %s.",
		coin.Name,
		strings.ToUpper(coin.Symbol),
		formatUSD(md.CurrentPrice["usd"]),
		formatUSD(md.MarketCap["usd"]),
		formatChange(md.PriceChangePercentage24h),
		formatChange(md.PriceChangePercentage7d),
		formatChange(md.PriceChangePercentage30d),
	)

	item := model.EvidenceItem{
		ID:             uuid.NewString(),
		Source:         "CoinGecko",
		URL:            "https://www.coingecko.com/en/coins/" + coinID,
		Quote:          quote,
		Timestamp:      today(),
		Type:           model.EvidenceMarket,
		RelevanceScore: marketRelevanceScore,
	}

	return []model.EvidenceItem{item}, nil, nil
}

// formatUSD 按数量级缩写金额：万亿 T、十亿 B、百万 M，其余带千分位
func formatUSD(n float64) string {
	switch {
	case n >= 1e12:
		return fmt.Sprintf("$%.2fT", n/1e12)
	case n >= 1e9:
		return fmt.Sprintf("$%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("$%.2fM", n/1e6)
	default:
		return "$" + humanize.Commaf(n)
	}
}

// formatChange 带符号的百分比变化
func formatChange(n float64) string {
	sign := ""
	if n >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, n)
}
