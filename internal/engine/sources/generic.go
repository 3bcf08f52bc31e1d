package sources

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

const (
	genericMaxHeadings   = 10
	genericMaxParagraphs = 20
	minParagraphRunes    = 31
	minLinkTextRunes     = 11
)

// skipTags are dropped with their subtree before extraction.
var skipTags = map[string]bool{"script": true, "style": true, "nav": true, "footer": true, "header": true}

// Generic extracts title, headings and paragraphs from any HTML page.
type Generic struct {
	limiter *hostLimiter
}

func NewGeneric(limiter *hostLimiter) *Generic {
	return &Generic{limiter: limiter}
}

func (g *Generic) Name() string { return engine.SourceGeneric }

func (g *Generic) Scrape(ctx context.Context, task engine.ScrapeTask) ([]engine.ContentItem, error) {
	engine.IncrScrape(engine.SourceGeneric)
	if task.URL == "" {
		return []engine.ContentItem{}, nil
	}
	if err := g.limiter.Wait(ctx, task.URL); err != nil {
		return nil, err
	}
	body, err := engine.FetchPage(ctx, task.URL)
	if err != nil {
		return nil, engine.ScrapingError(engine.SourceGeneric, err)
	}
	item, err := extractPage(task.URL, body, engine.Cfg.MaxContentChars)
	if err != nil {
		return nil, engine.ScrapingError(engine.SourceGeneric, err)
	}
	return []engine.ContentItem{item}, nil
}

type pageParts struct {
	title      string
	headings   []string
	paragraphs []string
	links      int
}

func extractPage(pageURL string, body []byte, limit int) (engine.ContentItem, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return engine.ContentItem{}, err
	}
	var parts pageParts
	collect(doc, &parts)

	title := parts.title
	if title == "" {
		title = pageURL
	}
	headings := parts.headings
	if len(headings) > genericMaxHeadings {
		headings = headings[:genericMaxHeadings]
	}
	paragraphs := parts.paragraphs
	if len(paragraphs) > genericMaxParagraphs {
		paragraphs = paragraphs[:genericMaxParagraphs]
	}

	blocks := []string{"# " + title}
	for _, h := range headings {
		blocks = append(blocks, "## "+h)
	}
	if len(paragraphs) > 0 {
		blocks = append(blocks, paragraphs...)
	} else if md, err := engine.PageMarkdown(string(body), limit); err == nil && md != "" {
		blocks = append(blocks, md)
	}

	return engine.ContentItem{
		ID:            uuid.NewString(),
		Source:        engine.SourceGeneric,
		URL:           pageURL,
		Title:         title,
		ExtractedText: engine.TruncateRunes(strings.Join(blocks, "\n\n"), limit, ""),
		Engagement:    map[string]any{},
		RawMetadata: map[string]any{
			"headings":   nonNilStrings(headings),
			"link_count": parts.links,
		},
	}, nil
}

// collect walks the tree once, skipping noise subtrees.
func collect(n *html.Node, p *pageParts) {
	if n.Type == html.ElementNode {
		if skipTags[n.Data] {
			return
		}
		switch n.Data {
		case "title":
			if p.title == "" {
				p.title = cleanText(n)
			}
			return
		case "h1", "h2", "h3":
			if t := cleanText(n); t != "" {
				p.headings = append(p.headings, t)
			}
		case "p":
			if t := cleanText(n); utf8.RuneCountInString(t) >= minParagraphRunes {
				p.paragraphs = append(p.paragraphs, t)
			}
		case "a":
			if getAttr(n, "href") != "" && utf8.RuneCountInString(cleanText(n)) >= minLinkTextRunes {
				p.links++
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, p)
	}
}

// getAttr returns the value of an attribute on a node, or "".
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent recursively extracts text, skipping noise subtrees.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && skipTags[n.Data] {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func cleanText(n *html.Node) string {
	return strings.Join(strings.Fields(textContent(n)), " ")
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
