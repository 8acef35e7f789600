package evidence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/clawcast/pkg/firecrawl"
	"github.com/iWorld-y/clawcast/pkg/model"
)

func TestFirstParagraph(t *testing.T) {
	long := strings.Repeat("x", 400)
	md := "# Heading\n\n![image](a.png)\n\nshort\n\n" + long + "\n\nsecond paragraph that is also long enough to qualify here"

	got := firstParagraph(md)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis on truncated paragraph, got %q", got[len(got)-10:])
	}
	if len([]rune(got)) != 303 {
		t.Errorf("len = %d, want 300 runes + ellipsis", len([]rune(got)))
	}
	if !strings.HasPrefix(got, "xxx") {
		t.Errorf("picked wrong paragraph: %q", got[:10])
	}
}

func TestFirstParagraph_RuneThreshold(t *testing.T) {
	// 多字节段落按 rune 计：40 个汉字（120 字节）不达标，60 个达标
	short := strings.Repeat("短", 40)
	long := strings.Repeat("长", 60)
	if got := firstParagraph(short + "\n\n" + long); got != long {
		t.Errorf("firstParagraph() = %q, want the 60-rune paragraph", got)
	}
	if got := firstParagraph(short); got != "" {
		t.Errorf("firstParagraph() = %q, want empty for 40-rune paragraph", got)
	}
}

func TestFirstParagraph_NoneQualify(t *testing.T) {
	if got := firstParagraph("# only\n\n## headings\n\ntiny"); got != "" {
		t.Errorf("firstParagraph() = %q, want empty", got)
	}
}

func TestWebAdapter_Gather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			t.Errorf("missing bearer auth, got %q", auth)
		}
		var req firecrawl.SearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Limit != 5 {
			t.Errorf("limit = %d, want 5", req.Limit)
		}
		json.NewEncoder(w).Encode(firecrawl.SearchResponse{
			Success: true,
			Data: []firecrawl.SearchResult{
				{
					Title:       "Election Update",
					Description: "A concise description of the race.",
					URL:         "https://news.example.com/a",
				},
				{
					URL:      "https://other.example.org/b",
					Markdown: "# Title\n\nThis paragraph is comfortably longer than fifty characters and should become the quote.",
				},
			},
		})
	}))
	defer srv.Close()

	adapter := NewWebAdapter(firecrawl.NewClient("test-key", srv.URL), time.Second)
	items, odds, err := adapter.Gather(context.Background(), "election outcome")
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if odds != nil {
		t.Errorf("web adapter must not produce odds")
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.Source != "Election Update" || first.Quote != "A concise description of the race." {
		t.Errorf("first item = %+v", first)
	}
	if first.Type != model.EvidenceNews || first.RelevanceScore != 0.8 {
		t.Errorf("first item type/score = %v/%v", first.Type, first.RelevanceScore)
	}

	second := items[1]
	if second.Source != "other.example.org" {
		t.Errorf("titleless result should use host as source, got %q", second.Source)
	}
	if !strings.HasPrefix(second.Quote, "This paragraph") {
		t.Errorf("markdown paragraph should override quote, got %q", second.Quote)
	}
	if first.ID == second.ID || first.ID == "" {
		t.Errorf("items must carry unique ids")
	}
}

func TestWebAdapter_PlaceholderQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(firecrawl.SearchResponse{
			Success: true,
			Data:    []firecrawl.SearchResult{{Title: "Empty", URL: ""}},
		})
	}))
	defer srv.Close()

	adapter := NewWebAdapter(firecrawl.NewClient("test-key", srv.URL), time.Second)
	items, _, err := adapter.Gather(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(items) != 1 || items[0].Quote != noExcerpt {
		t.Fatalf("expected placeholder quote, got %+v", items)
	}
}

func TestWebAdapter_UpstreamFailurePropagatesToAggregatorOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	adapter := NewWebAdapter(firecrawl.NewClient("test-key", srv.URL), time.Second)
	if _, _, err := adapter.Gather(context.Background(), "anything"); err == nil {
		t.Fatal("expected error from non-200 upstream")
	}
}
