package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultBaseURL = "https://gamma-api.polymarket.com"

// Client Polymarket gamma API 客户端（公开接口，无需凭证）
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 Polymarket 客户端
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// Market 单个预测市场
type Market struct {
	ID            string          `json:"id"`
	Slug          string          `json:"slug"`
	Question      string          `json:"question"`
	Volume        json.RawMessage `json:"volume"` // gamma 返回字符串或数字，两种都可能
	OutcomePrices string          `json:"outcomePrices"` // JSON 数组字符串，如 "[\"0.62\",\"0.38\"]"
}

// YesPrice 解析 "Yes" 结果价格（outcomePrices 的第一项）
func (m Market) YesPrice() (float64, bool) {
	if m.OutcomePrices == "" {
		return 0, false
	}
	var prices []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err != nil || len(prices) == 0 {
		return 0, false
	}
	p, err := strconv.ParseFloat(prices[0], 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

// VolumeUSD 交易量，解析失败时返回 0
func (m Market) VolumeUSD() float64 {
	s := strings.Trim(string(m.Volume), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// EventURL 市场对应的事件页面
func (m Market) EventURL() string {
	slug := m.Slug
	if slug == "" {
		slug = m.ID
	}
	return "https://polymarket.com/event/" + slug
}

// SearchRequest 市场检索参数
type SearchRequest struct {
	Search string
	Limit  int
	Closed bool
}

// SearchMarkets 按自由文本检索未关闭的市场
func (c *Client) SearchMarkets(ctx context.Context, req SearchRequest) ([]Market, error) {
	if req.Limit == 0 {
		req.Limit = 3
	}

	q := url.Values{}
	q.Set("closed", strconv.FormatBool(req.Closed))
	q.Set("limit", strconv.Itoa(req.Limit))
	q.Set("search", req.Search)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/markets?"+q.Encode(), nil)
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
		return nil, fmt.Errorf("polymarket api error (status %d): %s", res.StatusCode, string(body))
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return markets, nil
}
