package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/google/uuid"
)

const (
	ytBaseURL       = "https://www.youtube.com"
	ytDataAPIBase   = "https://www.googleapis.com/youtube/v3"
	ytMaxItems      = 20
	ytMinTitleRunes = 5
)

var (
	ytInitialDataRe = regexp.MustCompile(`ytInitialData\s*=\s*`)
	// Loose match over raw page source when ytInitialData cannot be decoded.
	ytFallbackRe = regexp.MustCompile(`"videoId":"([^"]+)".*?"text":"([^"]*?)"`)
)

// YouTube scrapes search result pages (or a given page) via the embedded
// ytInitialData JSON. With an API key configured, keyword searches go through
// the Data API v3 first.
type YouTube struct {
	BaseURL    string
	DataAPIURL string
	limiter    *hostLimiter
}

func NewYouTube(limiter *hostLimiter) *YouTube {
	return &YouTube{BaseURL: ytBaseURL, DataAPIURL: ytDataAPIBase, limiter: limiter}
}

func (y *YouTube) Name() string { return engine.SourceYouTube }

func (y *YouTube) Scrape(ctx context.Context, task engine.ScrapeTask) ([]engine.ContentItem, error) {
	engine.IncrScrape(engine.SourceYouTube)

	if task.URL == "" && engine.Cfg.YouTubeAPIKey != "" {
		items, err := y.searchDataAPI(ctx, task)
		if err == nil {
			return items, nil
		}
		slog.Debug("youtube: data API failed, scraping search page", slog.Any("error", err))
	}

	pageURL := task.URL
	if pageURL == "" {
		pageURL = y.BaseURL + "/results?search_query=" + url.QueryEscape(strings.Join(task.Keywords, " "))
	}
	if err := y.limiter.Wait(ctx, pageURL); err != nil {
		return nil, err
	}
	body, err := engine.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, engine.ScrapingError(engine.SourceYouTube, err)
	}
	return parseYouTubePage(body), nil
}

// parseYouTubePage reads videos from ytInitialData, falling back to a regex
// scan of the raw page.
func parseYouTubePage(body []byte) []engine.ContentItem {
	if loc := ytInitialDataRe.FindIndex(body); loc != nil {
		if data := extractJSON(body[loc[1]:]); data != nil {
			if items := extractVideosFromInitialData(data, ytMaxItems); len(items) > 0 {
				return items
			}
		}
	}
	return fallbackVideos(body)
}

// extractJSON returns the JSON object starting at b[0] == '{', tracking brace
// depth outside of strings.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

type ytRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r ytRuns) join() string {
	parts := make([]string, len(r.Runs))
	for i, run := range r.Runs {
		parts[i] = run.Text
	}
	return strings.Join(parts, " ")
}

type ytSimpleText struct {
	SimpleText string `json:"simpleText"`
}

type ytVideoRenderer struct {
	VideoID           string       `json:"videoId"`
	Title             ytRuns       `json:"title"`
	OwnerText         ytRuns       `json:"ownerText"`
	ViewCountText     ytSimpleText `json:"viewCountText"`
	PublishedTimeText ytSimpleText `json:"publishedTimeText"`
	Snippets          []struct {
		SnippetText ytRuns `json:"snippetText"`
	} `json:"detailedMetadataSnippets"`
}

// extractVideosFromInitialData walks ytInitialData for videoRenderer entries
// in document order.
func extractVideosFromInitialData(data []byte, limit int) []engine.ContentItem {
	var items []engine.ContentItem
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(items) >= limit {
			return
		}
		v = bytes.TrimSpace(v)
		if len(v) == 0 {
			return
		}
		switch v[0] {
		case '{':
			var obj map[string]json.RawMessage
			if json.Unmarshal(v, &obj) != nil {
				return
			}
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytVideoRenderer
				if json.Unmarshal(raw, &vr) == nil && vr.VideoID != "" {
					items = append(items, videoItem(vr))
					return
				}
			}
			// Map order is random; walk keys sorted by position in the source.
			for _, child := range orderedValues(v, obj) {
				walk(child)
			}
		case '[':
			var arr []json.RawMessage
			if json.Unmarshal(v, &arr) != nil {
				return
			}
			for _, child := range arr {
				walk(child)
			}
		}
	}
	walk(data)
	return items
}

// orderedValues returns obj's values in the order their keys appear in raw.
func orderedValues(raw []byte, obj map[string]json.RawMessage) []json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var out []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return out
		}
		if v, ok := obj[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

func videoItem(vr ytVideoRenderer) engine.ContentItem {
	title := vr.Title.join()
	viewText := vr.ViewCountText.SimpleText
	if viewText == "" {
		viewText = "0 views"
	}
	text := ""
	if len(vr.Snippets) > 0 {
		text = vr.Snippets[0].SnippetText.join()
	}
	if text == "" {
		text = title
	}
	return engine.ContentItem{
		ID:            uuid.NewString(),
		Source:        engine.SourceYouTube,
		URL:           "https://www.youtube.com/watch?v=" + vr.VideoID,
		Title:         title,
		Author:        vr.OwnerText.join(),
		PublishedAt:   vr.PublishedTimeText.SimpleText,
		ExtractedText: text,
		Engagement:    map[string]any{"views": parseViewCount(viewText), "view_text": viewText},
		RawMetadata:   map[string]any{"video_id": vr.VideoID},
	}
}

func fallbackVideos(body []byte) []engine.ContentItem {
	seen := make(map[string]bool)
	var items []engine.ContentItem
	for _, m := range ytFallbackRe.FindAllSubmatch(body, -1) {
		id, title := string(m[1]), string(m[2])
		if seen[id] || len(id) != 11 {
			continue
		}
		seen[id] = true
		if len([]rune(title)) < ytMinTitleRunes {
			continue
		}
		items = append(items, engine.ContentItem{
			ID:            uuid.NewString(),
			Source:        engine.SourceYouTube,
			URL:           "https://www.youtube.com/watch?v=" + id,
			Title:         title,
			ExtractedText: title,
			Engagement:    map[string]any{"views": 0},
			RawMetadata:   map[string]any{"video_id": id},
		})
		if len(items) >= ytMaxItems {
			break
		}
	}
	return items
}

// parseViewCount reads "1.2M views", "3,400 views" or "12K". Unknown text is 0.
func parseViewCount(text string) int {
	t := strings.ToLower(text)
	t = strings.ReplaceAll(t, ",", "")
	t = strings.ReplaceAll(t, " views", "")
	t = strings.ReplaceAll(t, " view", "")
	t = strings.TrimSpace(t)

	mult := 1.0
	switch {
	case strings.HasSuffix(t, "k"):
		mult, t = 1e3, strings.TrimSuffix(t, "k")
	case strings.HasSuffix(t, "m"):
		mult, t = 1e6, strings.TrimSuffix(t, "m")
	case strings.HasSuffix(t, "b"):
		mult, t = 1e9, strings.TrimSuffix(t, "b")
	default:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f * mult))
}

// --- YouTube Data API v3 ---

type ytSearchResp struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideosResp struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// searchDataAPI searches with the primary key, then the fallback key.
func (y *YouTube) searchDataAPI(ctx context.Context, task engine.ScrapeTask) ([]engine.ContentItem, error) {
	keys := []string{engine.Cfg.YouTubeAPIKey}
	if engine.Cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, engine.Cfg.YouTubeAPIKeyFallback)
	}
	var lastErr error
	for _, key := range keys {
		items, err := y.dataSearch(ctx, task, key)
		if err == nil {
			return items, nil
		}
		lastErr = err
		slog.Debug("youtube: data API key failed, trying fallback", slog.Any("error", err))
	}
	return nil, lastErr
}

func (y *YouTube) dataSearch(ctx context.Context, task engine.ScrapeTask, key string) ([]engine.ContentItem, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", strings.Join(task.Keywords, " "))
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(ytMaxItems))
	params.Set("key", key)
	if d := windowDuration(task.TimeWindow); d > 0 {
		params.Set("publishedAfter", time.Now().Add(-d).UTC().Format(time.RFC3339))
	}

	var search ytSearchResp
	if err := y.getJSON(ctx, y.DataAPIURL+"/search?"+params.Encode(), &search); err != nil {
		return nil, err
	}
	engine.IncrYouTubeDataAPI()

	items := make([]engine.ContentItem, 0, len(search.Items))
	ids := make([]string, 0, len(search.Items))
	for _, it := range search.Items {
		if it.ID.VideoID == "" {
			continue
		}
		ids = append(ids, it.ID.VideoID)
		text := it.Snippet.Description
		if text == "" {
			text = it.Snippet.Title
		}
		items = append(items, engine.ContentItem{
			ID:            uuid.NewString(),
			Source:        engine.SourceYouTube,
			URL:           "https://www.youtube.com/watch?v=" + it.ID.VideoID,
			Title:         it.Snippet.Title,
			Author:        it.Snippet.ChannelTitle,
			PublishedAt:   it.Snippet.PublishedAt,
			ExtractedText: text,
			Engagement:    map[string]any{"views": 0},
			RawMetadata:   map[string]any{"video_id": it.ID.VideoID, "via": "data_api"},
		})
	}
	if len(ids) == 0 {
		return items, nil
	}

	stats := url.Values{}
	stats.Set("part", "statistics")
	stats.Set("id", strings.Join(ids, ","))
	stats.Set("key", key)
	var videos ytVideosResp
	if err := y.getJSON(ctx, y.DataAPIURL+"/videos?"+stats.Encode(), &videos); err != nil {
		slog.Debug("youtube: statistics lookup failed", slog.Any("error", err))
		return items, nil
	}
	byID := make(map[string]int, len(items))
	for i, it := range items {
		byID[it.RawMetadata["video_id"].(string)] = i
	}
	for _, v := range videos.Items {
		i, ok := byID[v.ID]
		if !ok {
			continue
		}
		views, _ := strconv.Atoi(v.Statistics.ViewCount)
		likes, _ := strconv.Atoi(v.Statistics.LikeCount)
		comments, _ := strconv.Atoi(v.Statistics.CommentCount)
		items[i].Engagement = map[string]any{"views": views, "likes": likes, "comments": comments}
	}
	return items, nil
}

func (y *YouTube) getJSON(ctx context.Context, apiURL string, out any) error {
	if err := y.limiter.Wait(ctx, apiURL); err != nil {
		return err
	}
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube data API status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube data API: %w", err)
	}
	return nil
}

// windowDuration maps a time window ("24h", "7d", "30d") to a duration; 0 if unknown.
func windowDuration(w string) time.Duration {
	if strings.HasSuffix(w, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(w, "d"))
		if err != nil || n <= 0 {
			return 0
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(w)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
