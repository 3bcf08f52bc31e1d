package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

const (
	hnAlgoliaURL      = "https://hn.algolia.com/api/v1"
	hnHitsPerPage     = 20
	hnCommentStories  = 3
	hnCommentsPerItem = 5
	hnSnippetRunes    = 500
	hnCommentRunes    = 400
)

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
	StoryText   string `json:"story_text"`
	CommentText string `json:"comment_text"`
	ObjectID    string `json:"objectID"`
}

// HackerNews searches stories through the Algolia HN API and attaches the
// top comments of the most discussed ones.
type HackerNews struct {
	BaseURL string
	limiter *hostLimiter
}

func NewHackerNews(limiter *hostLimiter) *HackerNews {
	return &HackerNews{BaseURL: hnAlgoliaURL, limiter: limiter}
}

func (h *HackerNews) Name() string { return engine.SourceHackerNews }

func (h *HackerNews) Scrape(ctx context.Context, task engine.ScrapeTask) ([]engine.ContentItem, error) {
	engine.IncrScrape(engine.SourceHackerNews)

	q := url.Values{}
	q.Set("query", strings.Join(task.Keywords, " "))
	q.Set("tags", "story")
	q.Set("hitsPerPage", strconv.Itoa(hnHitsPerPage))
	if f := hnTimeFilter(task.TimeWindow, time.Now()); f != "" {
		q.Set("numericFilters", f)
	}

	var data hnResponse
	if err := h.getJSON(ctx, h.BaseURL+"/search?"+q.Encode(), &data); err != nil {
		return nil, engine.ScrapingError(engine.SourceHackerNews, err)
	}

	items := make([]engine.ContentItem, 0, len(data.Hits))
	for _, hit := range data.Hits {
		if hit.Title == "" {
			continue
		}
		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}
		text := engine.TruncateRunes(cleanHTML(hit.StoryText), hnSnippetRunes, "...")
		if text == "" {
			text = hit.Title
		}
		items = append(items, engine.ContentItem{
			ID:            uuid.NewString(),
			Source:        engine.SourceHackerNews,
			URL:           link,
			Title:         hit.Title,
			Author:        hit.Author,
			PublishedAt:   time.Unix(hit.CreatedAtI, 0).UTC().Format(time.RFC3339),
			ExtractedText: text,
			Engagement:    map[string]any{"score": hit.Points, "comments": hit.NumComments},
			RawMetadata:   map[string]any{"object_id": hit.ObjectID},
		})
	}
	h.attachComments(ctx, items)

	slog.Debug("hackernews: search complete", slog.Int("results", len(items)))
	return items, nil
}

// hnTimeFilter turns a time window into an Algolia numeric filter.
func hnTimeFilter(window string, now time.Time) string {
	d := windowDuration(window)
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("created_at_i>%d", now.Add(-d).Unix())
}

// attachComments appends top comments to the most discussed stories.
// Comment lookups are best effort.
func (h *HackerNews) attachComments(ctx context.Context, items []engine.ContentItem) {
	idx := make([]int, 0, len(items))
	for i, it := range items {
		if n, _ := it.Engagement["comments"].(int); n > 5 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].Engagement["comments"].(int) > items[idx[b]].Engagement["comments"].(int)
	})
	if len(idx) > hnCommentStories {
		idx = idx[:hnCommentStories]
	}

	var wg sync.WaitGroup
	for _, i := range idx {
		id, _ := items[i].RawMetadata["object_id"].(string)
		if id == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			comments, err := h.topComments(ctx, id)
			if err != nil {
				slog.Debug("hackernews: comments failed", slog.String("story", id), slog.Any("error", err))
				return
			}
			if len(comments) > 0 {
				items[i].ExtractedText += "\n\nTop comments:\n" + strings.Join(comments, "\n")
			}
		}()
	}
	wg.Wait()
}

func (h *HackerNews) topComments(ctx context.Context, storyID string) ([]string, error) {
	q := url.Values{}
	q.Set("tags", "comment,story_"+storyID)
	q.Set("hitsPerPage", strconv.Itoa(hnCommentsPerItem*2))

	var data hnResponse
	if err := h.getJSON(ctx, h.BaseURL+"/search?"+q.Encode(), &data); err != nil {
		return nil, err
	}
	sort.SliceStable(data.Hits, func(i, j int) bool { return data.Hits[i].Points > data.Hits[j].Points })

	var out []string
	for _, hit := range data.Hits {
		text := cleanHTML(hit.CommentText)
		if text == "" {
			continue
		}
		out = append(out, fmt.Sprintf("[%s]: %s", hit.Author, engine.TruncateRunes(text, hnCommentRunes, "...")))
		if len(out) >= hnCommentsPerItem {
			break
		}
	}
	return out, nil
}

func (h *HackerNews) getJSON(ctx context.Context, apiURL string, out any) error {
	if err := h.limiter.Wait(ctx, apiURL); err != nil {
		return err
	}
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HN Algolia API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// cleanHTML reduces an HTML fragment to whitespace-collapsed text.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return cleanText(doc)
}
