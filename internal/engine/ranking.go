package engine

import (
	"encoding/json"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Composite score weights.
const (
	weightEngagement = 0.40
	weightRecency    = 0.25
	weightKeyword    = 0.35
)

var firstNumberRe = regexp.MustCompile(`\d+`)

// Rank scores items against keywords and returns the top n, best first.
// Items with equal scores keep their scraped order.
func Rank(items []ContentItem, keywords []string, n int) []ContentItem {
	return rankAt(items, keywords, n, time.Now())
}

func rankAt(items []ContentItem, keywords []string, n int, now time.Time) []ContentItem {
	if len(items) == 0 || n <= 0 {
		return []ContentItem{}
	}
	scored := slices.Clone(items)
	for i := range scored {
		s := weightEngagement*engagementScore(scored[i]) +
			weightRecency*recencyScore(scored[i].PublishedAt, now) +
			weightKeyword*keywordRelevance(scored[i], keywords)
		scored[i].RelevanceScore = math.Round(s*10000) / 10000
	}
	slices.SortStableFunc(scored, func(a, b ContentItem) int {
		switch {
		case a.RelevanceScore > b.RelevanceScore:
			return -1
		case a.RelevanceScore < b.RelevanceScore:
			return 1
		}
		return 0
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func engagementScore(item ContentItem) float64 {
	switch item.Source {
	case SourceYouTube:
		return tier(numberOf(item.Engagement["views"]),
			[]float64{1_000_000, 100_000, 10_000, 1_000, 100})
	case SourceReddit, SourceHackerNews:
		combined := numberOf(item.Engagement["score"]) + 2*numberOf(item.Engagement["comments"])
		return tier(combined, []float64{5000, 1000, 500, 100, 10})
	default:
		return 0.3
	}
}

// tier maps v against five descending thresholds to 1.0, .8, .6, .4, .2, else .1.
func tier(v float64, thresholds []float64) float64 {
	scores := []float64{1.0, 0.8, 0.6, 0.4, 0.2}
	for i, t := range thresholds {
		if v >= t {
			return scores[i]
		}
	}
	return 0.1
}

func recencyScore(published string, now time.Time) float64 {
	if published == "" {
		return 0.3
	}
	p := strings.ToLower(published)
	switch {
	case strings.Contains(p, "hour"), strings.Contains(p, "minute"):
		return 1.0
	case strings.Contains(p, "day"):
		days := 1
		if m := firstNumberRe.FindString(p); m != "" {
			days, _ = strconv.Atoi(m)
		}
		switch {
		case days <= 1:
			return 1.0
		case days <= 3:
			return 0.8
		case days <= 7:
			return 0.6
		}
		return 0.4
	case strings.Contains(p, "week"):
		return 0.4
	case strings.Contains(p, "month"):
		return 0.2
	case strings.Contains(p, "year"):
		return 0.05
	}

	t, ok := parseTimestamp(published)
	if !ok {
		return 0.3
	}
	age := int(now.Sub(t).Hours() / 24)
	switch {
	case age <= 1:
		return 1.0
	case age <= 7:
		return 0.7
	case age <= 30:
		return 0.4
	}
	return 0.1
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func keywordRelevance(item ContentItem, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.5
	}
	text := strings.ToLower(item.Title + " " + item.ExtractedText)
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			matches++
		}
	}
	return math.Min(float64(matches)/float64(len(keywords))*1.2, 1.0)
}

// numberOf reads a numeric engagement value. Records loaded back from JSON
// carry float64, freshly scraped items carry ints.
func numberOf(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}
