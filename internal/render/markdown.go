package render

import (
	"regexp"
	"strconv"
	"strings"
)

// Fenced code bodies are swapped for these markers while the other rules run.
// Marker runes already present in the input are dropped first.
const (
	fenceOpen  = "\uE000"
	fenceClose = "\uE001"
)

var markerStripper = strings.NewReplacer(fenceOpen, "", fenceClose, "")

var (
	fenceRe       = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")
	fenceMarkerRe = regexp.MustCompile(fenceOpen + `(\d+)` + fenceClose)
	tableSepRe    = regexp.MustCompile(`^[\s\-:]+$`)
	openTagRe     = regexp.MustCompile(`^<[a-z]`)
)

// inlineRules are shared by the raw and the escaped markdown pipelines.
func inlineRules() Pipeline {
	return Pipeline{
		{Name: "h3", Pattern: regexp.MustCompile(`(?m)^### (.+)$`), Template: "<h3>${1}</h3>"},
		{Name: "h2", Pattern: regexp.MustCompile(`(?m)^## (.+)$`), Template: "<h2>${1}</h2>"},
		{Name: "h1", Pattern: regexp.MustCompile(`(?m)^# (.+)$`), Template: "<h1>${1}</h1>"},
		{Name: "bold", Pattern: regexp.MustCompile(`\*\*(.+?)\*\*`), Template: "<strong>${1}</strong>"},
		{Name: "italic", Pattern: regexp.MustCompile(`\*(.+?)\*`), Template: "<em>${1}</em>"},
		{Name: "code", Pattern: regexp.MustCompile("`(.+?)`"), Template: "<code>${1}</code>"},
		{Name: "link", Pattern: regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), Template: `<a href="${2}" target="_blank" rel="noopener">${1}</a>`},
		{Name: "hr", Pattern: regexp.MustCompile(`(?m)^---$`), Template: "<hr/>"},
		{Name: "ul-item", Pattern: regexp.MustCompile(`(?m)^- (.+)$`), Template: "<li>${1}</li>"},
		{Name: "ol-item", Pattern: regexp.MustCompile(`(?m)^\d+\. (.+)$`), Template: "<li>${1}</li>"},
		{Name: "table-row", Pattern: regexp.MustCompile(`(?m)^\|(.+)\|$`), Expand: tableRow},
	}
}

// blockRules run after the blockquote rule: paragraph wrapping and list/table merging.
func blockRules() Pipeline {
	return Pipeline{
		{Name: "paragraph", Pattern: regexp.MustCompile(`(?m)^.+$`), Expand: paragraph},
		{Name: "ul-wrap", Pattern: regexp.MustCompile(`(?s)(<li>.*?</li>)`), Template: "<ul>${1}</ul>"},
		{Name: "ul-merge", Pattern: regexp.MustCompile(`</ul>\s*<ul>`), Template: ""},
		{Name: "table-wrap", Pattern: regexp.MustCompile(`(?s)(<tr>.*?</tr>)`), Template: "<table>${1}</table>"},
		{Name: "table-merge", Pattern: regexp.MustCompile(`</table>\s*<table>`), Template: ""},
	}
}

func buildMarkdownPipeline(quoteMarker string) Pipeline {
	p := inlineRules()
	p = append(p, Rule{
		Name:     "blockquote",
		Pattern:  regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(quoteMarker) + ` (.+)$`),
		Template: "<blockquote>${1}</blockquote>",
	})
	return append(p, blockRules()...)
}

var (
	// MarkdownRules is the rule order of Markdown, fence extraction excluded.
	MarkdownRules = buildMarkdownPipeline(">")
	// MarkdownSafeRules is the rule order of MarkdownSafe, which sees "&gt;" for ">".
	MarkdownSafeRules = buildMarkdownPipeline("&gt;")
)

// Markdown converts a markdown-like document into an HTML fragment.
// Raw HTML in the input is passed through unescaped; use MarkdownSafe for
// untrusted documents.
func Markdown(md string) string {
	return renderMarkdown(md, MarkdownRules)
}

// MarkdownSafe escapes the document before the rules run and sanitizes the
// result, so only markup produced by the rules survives.
func MarkdownSafe(md string) string {
	return Sanitize(renderMarkdown(escapeAttr(md), MarkdownSafeRules))
}

func renderMarkdown(md string, rules Pipeline) string {
	if md == "" {
		return ""
	}
	md = strings.ReplaceAll(md, "\r\n", "\n")
	md = markerStripper.Replace(md)

	var bodies []string
	md = fenceRe.ReplaceAllStringFunc(md, func(m string) string {
		groups := fenceRe.FindStringSubmatch(m)
		bodies = append(bodies, groups[2])
		return "<pre><code>" + fenceOpen + strconv.Itoa(len(bodies)-1) + fenceClose + "</code></pre>"
	})

	html := rules.Apply(md)

	if len(bodies) == 0 {
		return html
	}
	return fenceMarkerRe.ReplaceAllStringFunc(html, func(m string) string {
		i, err := strconv.Atoi(m[len(fenceOpen) : len(m)-len(fenceClose)])
		if err != nil || i >= len(bodies) {
			return m
		}
		return bodies[i]
	})
}

// tableRow renders one |a|b| line. Separator rows (only -, : and spaces) vanish.
func tableRow(groups []string) string {
	var cells []string
	for _, c := range strings.Split(groups[0], "|") {
		if strings.TrimSpace(c) != "" {
			cells = append(cells, c)
		}
	}
	separator := true
	for _, c := range cells {
		if !tableSepRe.MatchString(c) {
			separator = false
			break
		}
	}
	if separator {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<tr>")
	for _, c := range cells {
		sb.WriteString("<td>")
		sb.WriteString(strings.TrimSpace(c))
		sb.WriteString("</td>")
	}
	sb.WriteString("</tr>")
	return sb.String()
}

// paragraph wraps a line in <p> unless it is blank or already starts with a tag.
func paragraph(groups []string) string {
	line := groups[0]
	if strings.TrimSpace(line) == "" || openTagRe.MatchString(line) {
		return line
	}
	return "<p>" + line + "</p>"
}
