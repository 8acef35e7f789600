package evidence

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/google/uuid"

	"github.com/iWorld-y/clawcast/pkg/firecrawl"
	"github.com/iWorld-y/clawcast/pkg/model"
)

const (
	webMaxResults      = 5
	quoteMaxRunes      = 300
	paragraphMinLength = 50
	webRelevanceScore  = 0.8
)

// noExcerpt 无任何可用内容时的占位摘录，保证 quote 永远不被凭空编造
const noExcerpt = "No excerpt available"

// WebAdapter 网页搜索证据适配器
type WebAdapter struct {
	client       *firecrawl.Client
	fetchTimeout time.Duration
}

// NewWebAdapter 创建网页搜索适配器
func NewWebAdapter(client *firecrawl.Client, fetchTimeout time.Duration) *WebAdapter {
	if fetchTimeout == 0 {
		fetchTimeout = 15 * time.Second
	}
	return &WebAdapter{client: client, fetchTimeout: fetchTimeout}
}

func (a *WebAdapter) Name() string { return "web" }

// Gather 搜索网页并为每条结果提取摘录
func (a *WebAdapter) Gather(ctx context.Context, query string) ([]model.EvidenceItem, []model.MarketOdds, error) {
	resp, err := a.client.Search(ctx, firecrawl.SearchRequest{
		Query:         query,
		Limit:         webMaxResults,
		ScrapeOptions: firecrawl.ScrapeOptions{Formats: []string{"markdown"}},
	})
	if err != nil {
		return nil, nil, err
	}

	var items []model.EvidenceItem
	for _, result := range resp.Data {
		quote := result.Description

		content := result.Markdown
		if content == "" && quote == "" {
			// 结果没带任何内容时回退抓取原文
			content = a.fetchArticleText(result.URL)
		}
		if content != "" {
			if p := firstParagraph(content); p != "" {
				quote = p
			}
		}
		if quote == "" {
			quote = noExcerpt
		}

		source := result.Title
		if source == "" {
			source = hostOf(result.URL)
		}

		items = append(items, model.EvidenceItem{
			ID:             uuid.NewString(),
			Source:         source,
			URL:            result.URL,
			Quote:          quote,
			Timestamp:      today(),
			Type:           model.EvidenceNews,
			RelevanceScore: webRelevanceScore,
		})
	}

	return items, nil, nil
}

// fetchArticleText 抓取并清洗页面正文，失败时返回空串
func (a *WebAdapter) fetchArticleText(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	article, err := readability.FromURL(pageURL, a.fetchTimeout)
	if err != nil {
		return ""
	}
	return article.TextContent
}

// firstParagraph 取第一个超过 50 rune、且不是标题或图片标记的段落，
// 超过 300 rune 时截断并加省略号
func firstParagraph(markdown string) string {
	for _, p := range strings.Split(markdown, "\n\n") {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) <= paragraphMinLength || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "!") {
			continue
		}
		runes := []rune(p)
		if len(runes) > quoteMaxRunes {
			return string(runes[:quoteMaxRunes]) + "..."
		}
		return p
	}
	return ""
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
