package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TopicsRuns            atomic.Int64
	ScriptRuns            atomic.Int64
	ResearchRuns          atomic.Int64
	LLMCalls              atomic.Int64
	LLMErrors             atomic.Int64
	FetchRequests         atomic.Int64
	FetchErrors           atomic.Int64
	YouTubeScrapes        atomic.Int64
	YouTubeDataAPIQueries atomic.Int64
	RedditScrapes         atomic.Int64
	GenericScrapes        atomic.Int64
	HackerNewsScrapes     atomic.Int64
	ScrapeErrors          atomic.Int64
	RecordsStored         atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"topics_runs", "script_runs", "research_runs",
	"llm_calls", "llm_errors",
	"fetch_requests", "fetch_errors",
	"youtube_scrapes", "youtube_data_api_queries", "reddit_scrapes", "generic_scrapes", "hackernews_scrapes",
	"scrape_errors",
	"records_stored",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"topics_runs":              metrics.TopicsRuns.Load(),
		"script_runs":              metrics.ScriptRuns.Load(),
		"research_runs":            metrics.ResearchRuns.Load(),
		"llm_calls":                metrics.LLMCalls.Load(),
		"llm_errors":               metrics.LLMErrors.Load(),
		"fetch_requests":           metrics.FetchRequests.Load(),
		"fetch_errors":             metrics.FetchErrors.Load(),
		"youtube_scrapes":          metrics.YouTubeScrapes.Load(),
		"youtube_data_api_queries": metrics.YouTubeDataAPIQueries.Load(),
		"reddit_scrapes":           metrics.RedditScrapes.Load(),
		"generic_scrapes":          metrics.GenericScrapes.Load(),
		"hackernews_scrapes":       metrics.HackerNewsScrapes.Load(),
		"scrape_errors":            metrics.ScrapeErrors.Load(),
		"records_stored":           metrics.RecordsStored.Load(),
		"cache_hits":               hits,
		"cache_misses":             misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the sources sub-package.
func IncrScrape(source string) {
	switch source {
	case SourceYouTube:
		metrics.YouTubeScrapes.Add(1)
	case SourceReddit:
		metrics.RedditScrapes.Add(1)
	case SourceHackerNews:
		metrics.HackerNewsScrapes.Add(1)
	default:
		metrics.GenericScrapes.Add(1)
	}
}

func IncrYouTubeDataAPI() { metrics.YouTubeDataAPIQueries.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 20*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
