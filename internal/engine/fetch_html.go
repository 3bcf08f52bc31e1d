package engine

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRe     = regexp.MustCompile(`[ \t]+`)
	blankLineRe = regexp.MustCompile(`\n{3,}`)
)

// noiseSelectors are stripped before a page is converted to text.
var noiseSelectors = strings.Join([]string{
	"script", "style", "noscript", "iframe", "svg",
	"header", "footer", "nav", "aside",
	".advertisement", ".ad", ".sidebar", ".comments",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}, ", ")

// PageMarkdown converts the main content of an HTML page to markdown, capped
// at limit runes. It is the fallback text for pages without paragraph markup.
func PageMarkdown(html string, limit int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find(noiseSelectors).Remove()

	main := doc.Find("article, main, .content, .post-content, .article-content, #content").First()
	if main.Length() == 0 {
		main = doc.Find("body")
	}
	inner, err := main.Html()
	if err != nil {
		return "", err
	}

	md, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		return CollapseSpace(main.Text()), nil
	}
	return TruncateRunes(CollapseSpace(md), limit, ""), nil
}

// CollapseSpace squeezes runs of spaces and blank lines and trims the result.
func CollapseSpace(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	s = blankLineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
