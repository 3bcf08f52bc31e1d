package sources

import (
	"bytes"
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/google/uuid"
)

const (
	redditBaseURL  = "https://old.reddit.com"
	redditMaxPosts = 20
)

var (
	redditTimeMap = map[string]string{"24h": "day", "7d": "week", "14d": "month", "30d": "month"}
	scoreRe       = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(k?)`)
	digitsRe      = regexp.MustCompile(`\d+`)
)

// Reddit scrapes old.reddit.com listing and search pages.
type Reddit struct {
	BaseURL string
	limiter *hostLimiter
}

func NewReddit(limiter *hostLimiter) *Reddit {
	return &Reddit{BaseURL: redditBaseURL, limiter: limiter}
}

func (r *Reddit) Name() string { return engine.SourceReddit }

func (r *Reddit) Scrape(ctx context.Context, task engine.ScrapeTask) ([]engine.ContentItem, error) {
	engine.IncrScrape(engine.SourceReddit)

	pageURL := task.URL
	if pageURL != "" {
		pageURL = strings.Replace(pageURL, "www.reddit.com", "old.reddit.com", 1)
	} else {
		pageURL = r.searchURL(task.Keywords, task.TimeWindow)
	}
	if err := r.limiter.Wait(ctx, pageURL); err != nil {
		return nil, err
	}

	fetch := engine.FetchPage
	if engine.Cfg.RedditStealth {
		fetch = engine.FetchPageBrowser
	}
	body, err := fetch(ctx, pageURL)
	if err != nil {
		return nil, engine.ScrapingError(engine.SourceReddit, err)
	}
	return r.parse(body)
}

func (r *Reddit) searchURL(keywords []string, window string) string {
	t, ok := redditTimeMap[window]
	if !ok {
		t = "week"
	}
	q := url.Values{}
	q.Set("q", strings.Join(keywords, " "))
	q.Set("sort", "relevance")
	q.Set("t", t)
	return r.BaseURL + "/search?" + q.Encode()
}

func (r *Reddit) parse(body []byte) ([]engine.ContentItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, engine.ScrapingError(engine.SourceReddit, err)
	}

	posts := doc.Find("div.thing.link")
	if posts.Length() == 0 {
		posts = doc.Find("[data-fullname]")
	}

	items := []engine.ContentItem{}
	posts.EachWithBreak(func(i int, post *goquery.Selection) bool {
		if i >= redditMaxPosts {
			return false
		}
		titleEl := post.Find("a.title, a.search-title").First()
		title := strings.TrimSpace(titleEl.Text())
		if title == "" {
			return true
		}
		href, _ := titleEl.Attr("href")
		if href != "" && !strings.HasPrefix(href, "http") {
			href = r.BaseURL + href
		}

		author := strings.TrimSpace(post.Find("a.author").First().Text())
		if author == "" {
			author = "[deleted]"
		}
		score := parseScore(post.Find("div.score.unvoted, span.score.unvoted, span.search-score").First().Text())
		comments := 0
		if m := digitsRe.FindString(strings.ReplaceAll(post.Find("a.comments, a.search-comments").First().Text(), ",", "")); m != "" {
			comments, _ = strconv.Atoi(m)
		}
		published, _ := post.Find("time").First().Attr("datetime")
		subreddit := strings.TrimSpace(post.Find("a.subreddit, a.search-subreddit-link").First().Text())

		items = append(items, engine.ContentItem{
			ID:            uuid.NewString(),
			Source:        engine.SourceReddit,
			URL:           href,
			Title:         title,
			Author:        author,
			PublishedAt:   published,
			ExtractedText: title,
			Engagement:    map[string]any{"score": score, "comments": comments},
			RawMetadata:   map[string]any{"subreddit": subreddit},
		})
		return true
	})
	return items, nil
}

// parseScore reads "1,234", "5.2k" or "87 points". Hidden scores ("•") are 0.
func parseScore(text string) int {
	t := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
	m := scoreRe.FindStringSubmatch(t)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	if m[2] == "k" {
		f *= 1000
	}
	return int(math.Round(f))
}
