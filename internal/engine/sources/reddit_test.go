package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redditListing = `<html><body><div id="siteTable">
<div class="thing link" data-fullname="t3_1">
  <a class="title" href="/r/golang/comments/1/generics/">Generics in Go 1.26</a>
  <a class="author">gopher</a>
  <div class="score unvoted">1.2k</div>
  <a class="comments">345 comments</a>
  <time datetime="2025-06-14T10:00:00+00:00">1 day ago</time>
  <a class="subreddit">r/golang</a>
</div>
<div class="thing link" data-fullname="t3_2">
  <a class="title" href="https://example.com/post">External link</a>
  <div class="score unvoted">•</div>
</div>
<div class="thing link" data-fullname="t3_3"><span>no title</span></div>
</div></body></html>`

func TestRedditScrapeListing(t *testing.T) {
	setupEngine(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(redditListing))
	}))
	defer srv.Close()

	rd := NewReddit(nil)
	rd.BaseURL = srv.URL
	items, err := rd.Scrape(context.Background(), engine.ScrapeTask{URL: srv.URL + "/r/golang"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Generics in Go 1.26", first.Title)
	assert.Equal(t, srv.URL+"/r/golang/comments/1/generics/", first.URL)
	assert.Equal(t, "gopher", first.Author)
	assert.Equal(t, 1200, first.Engagement["score"])
	assert.Equal(t, 345, first.Engagement["comments"])
	assert.Equal(t, "2025-06-14T10:00:00+00:00", first.PublishedAt)
	assert.Equal(t, "r/golang", first.RawMetadata["subreddit"])

	second := items[1]
	assert.Equal(t, "https://example.com/post", second.URL)
	assert.Equal(t, "[deleted]", second.Author)
	assert.Equal(t, 0, second.Engagement["score"])
}

func TestRedditSearchURL(t *testing.T) {
	rd := NewReddit(nil)
	tests := map[string]string{"24h": "day", "7d": "week", "14d": "month", "30d": "month", "90d": "week", "": "week"}
	for window, want := range tests {
		u, err := url.Parse(rd.searchURL([]string{"ai", "jobs"}, window))
		require.NoError(t, err)
		assert.Equal(t, "old.reddit.com", u.Host)
		assert.Equal(t, "/search", u.Path)
		assert.Equal(t, "ai jobs", u.Query().Get("q"))
		assert.Equal(t, "relevance", u.Query().Get("sort"))
		assert.Equal(t, want, u.Query().Get("t"), window)
	}
}

func TestRedditSearchRequest(t *testing.T) {
	setupEngine(t)
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`<div data-fullname="t3_9"><a class="search-title" href="/r/x/9">Search hit title</a><span class="search-score">87 points</span><a class="search-comments">12 comments</a></div>`))
	}))
	defer srv.Close()

	rd := NewReddit(nil)
	rd.BaseURL = srv.URL
	items, err := rd.Scrape(context.Background(), engine.ScrapeTask{Keywords: []string{"go"}, TimeWindow: "24h"})
	require.NoError(t, err)
	assert.Equal(t, "day", got.Get("t"))
	require.Len(t, items, 1)
	assert.Equal(t, 87, items[0].Engagement["score"])
	assert.Equal(t, 12, items[0].Engagement["comments"])
}

func TestRedditCapsPosts(t *testing.T) {
	page := "<div>"
	for i := 0; i < 25; i++ {
		page += `<div class="thing link"><a class="title" href="/p">Post title</a></div>`
	}
	items, err := NewReddit(nil).parse([]byte(page + "</div>"))
	require.NoError(t, err)
	assert.Len(t, items, redditMaxPosts)
}

func TestParseScore(t *testing.T) {
	tests := map[string]int{
		"1,234":     1234,
		"5.2k":      5200,
		"87 points": 87,
		"•":         0,
		"-":         0,
		"":          0,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseScore(in), in)
	}
}
