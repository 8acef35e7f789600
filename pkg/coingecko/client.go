package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultBaseURL = "https://api.coingecko.com"

// Client CoinGecko API 客户端（公开接口，无需凭证）
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 CoinGecko 客户端
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// Coin 币种详情（只保留本项目用到的字段）
type Coin struct {
	Name       string     `json:"name"`
	Symbol     string     `json:"symbol"`
	MarketData MarketData `json:"market_data"`
}

// MarketData 行情数据
type MarketData struct {
	CurrentPrice             map[string]float64 `json:"current_price"`
	MarketCap                map[string]float64 `json:"market_cap"`
	PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
	PriceChangePercentage7d  float64            `json:"price_change_percentage_7d"`
	PriceChangePercentage30d float64            `json:"price_change_percentage_30d"`
}

// GetCoin 按币种 ID 拉取当前行情
func (c *Client) GetCoin(ctx context.Context, coinID string) (*Coin, error) {
	u := fmt.Sprintf("%s/api/v3/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		c.baseURL, url.PathEscape(coinID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko api error (status %d): %s", res.StatusCode, string(body))
	}

	var coin Coin
	if err := json.Unmarshal(body, &coin); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &coin, nil
}
