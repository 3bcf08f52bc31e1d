package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFormatMetricsOrder(t *testing.T) {
	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(metricKeys) {
		t.Fatalf("got %d lines, want %d", len(lines), len(metricKeys))
	}
	for i, k := range metricKeys {
		if !strings.HasPrefix(lines[i], k+" ") {
			t.Errorf("line %d = %q, want key %q", i, lines[i], k)
		}
	}
}

func TestIncrScrape(t *testing.T) {
	yt, rd, gen := metrics.YouTubeScrapes.Load(), metrics.RedditScrapes.Load(), metrics.GenericScrapes.Load()
	IncrScrape(SourceYouTube)
	IncrScrape(SourceReddit)
	IncrScrape("blog")
	m := GetMetrics()
	if m["youtube_scrapes"] != yt+1 || m["reddit_scrapes"] != rd+1 || m["generic_scrapes"] != gen+1 {
		t.Errorf("unexpected counters: %v", m)
	}
}

func TestTrackOperationReturnsError(t *testing.T) {
	want := errors.New("x")
	err := TrackOperation(context.Background(), "op", func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("err = %v", err)
	}
}
