package render

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"bold", "**bold**", "<strong>bold</strong>"},
		{"italic after bold", "*em* and **strong**", "<em>em</em> and <strong>strong</strong>"},
		{"inline code", "use `go test` now", "<p>use <code>go test</code> now</p>"},
		{"h1", "# Title", "<h1>Title</h1>"},
		{"h2", "## Section", "<h2>Section</h2>"},
		{"h3", "### Deep", "<h3>Deep</h3>"},
		{"link", "[Go](https://go.dev)", `<a href="https://go.dev" target="_blank" rel="noopener">Go</a>`},
		{"hr between paragraphs", "a\n---\nb", "<p>a</p>\n<hr/>\n<p>b</p>"},
		{"unordered list", "- a\n- b", "<ul><li>a</li><li>b</li></ul>"},
		{"ordered list", "1. one\n2. two", "<ul><li>one</li><li>two</li></ul>"},
		{"blockquote", "> quoted", "<blockquote>quoted</blockquote>"},
		{"paragraphs", "hello\n\nworld", "<p>hello</p>\n\n<p>world</p>"},
		{"blank lines kept", "a\n   \nb", "<p>a</p>\n   \n<p>b</p>"},
		{"crlf", "# T\r\nbody", "<h1>T</h1>\n<p>body</p>"},
		{
			"table drops separator row",
			"| a | b |\n| - | - |\n| 1 | 2 |",
			"<table><tr><td>a</td><td>b</td></tr><tr><td>1</td><td>2</td></tr></table>",
		},
		{"alignment separator", "| :--- | ---: |", ""},
		{
			"fenced code is verbatim",
			"```go\nx := **y**\n# not heading\n```\nafter",
			"<pre><code>x := **y**\n# not heading\n</code></pre>\n<p>after</p>",
		},
		{"raw html passes through", "<b>x</b>", "<b>x</b>"},
		{"unclosed fence", "```\nno end", "<code>`</code>\n<p>no end</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Markdown(tt.in); got != tt.want {
				t.Errorf("Markdown(%q) =\n%q\nwant\n%q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarkdownHeadingLevelsDoNotOverlap(t *testing.T) {
	got := Markdown("# Title")
	if strings.Contains(got, "<h2>") || strings.Contains(got, "<h3>") {
		t.Errorf("h1 line matched a deeper heading rule: %q", got)
	}
	got = Markdown("### Deep")
	if strings.Contains(got, "<h1>") || strings.Contains(got, "<h2>") {
		t.Errorf("h3 line matched a shallower heading rule: %q", got)
	}
}

func TestMarkdownSeparateListsStaySeparate(t *testing.T) {
	got := Markdown("- a\n\nbreak\n\n- b")
	if n := strings.Count(got, "<ul>"); n != 2 {
		t.Errorf("expected 2 lists around a paragraph, got %d: %q", n, got)
	}
}

func TestMarkdownMultipleFences(t *testing.T) {
	got := Markdown("```\none\n```\ntext\n```sh\ntwo\n```")
	want := "<pre><code>one\n</code></pre>\n<p>text</p>\n<pre><code>two\n</code></pre>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownMarkerRunesInInput(t *testing.T) {
	got := Markdown("x \uE0000\uE001 y\n```\nbody\n```")
	want := "<p>x 0 y</p>\n<pre><code>body\n</code></pre>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownSafe(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		contains    []string
		notContains []string
	}{
		{
			name:        "script tag escaped",
			in:          "<script>alert(1)</script>",
			contains:    []string{"&lt;script&gt;"},
			notContains: []string{"<script>"},
		},
		{
			name:        "javascript link dropped",
			in:          "[x](javascript:alert(1))",
			notContains: []string{"javascript:"},
		},
		{
			name:        "quote breakout in href",
			in:          `[x](https://a.example/" onclick="alert(1))`,
			notContains: []string{` onclick="`},
		},
		{
			name:     "blockquote still recognised",
			in:       "> quote",
			contains: []string{"<blockquote>quote</blockquote>"},
		},
		{
			name:     "emphasis kept",
			in:       "**bold** and *em*",
			contains: []string{"<strong>bold</strong>", "<em>em</em>"},
		},
		{
			name:     "code body escaped",
			in:       "```\n<b>x</b>\n```",
			contains: []string{"<pre><code>&lt;b&gt;x&lt;/b&gt;"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownSafe(tt.in)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("MarkdownSafe(%q) = %q, missing %q", tt.in, got, s)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(got, s) {
					t.Errorf("MarkdownSafe(%q) = %q, must not contain %q", tt.in, got, s)
				}
			}
		})
	}
}

func TestMarkdownRuleOrder(t *testing.T) {
	names := MarkdownRules.Names()
	before := [][2]string{
		{"h3", "h2"}, {"h2", "h1"},
		{"bold", "italic"},
		{"ul-item", "paragraph"},
		{"table-row", "table-wrap"},
		{"ul-wrap", "ul-merge"},
	}
	for _, pair := range before {
		i, j := slices.Index(names, pair[0]), slices.Index(names, pair[1])
		if i < 0 || j < 0 || i >= j {
			t.Errorf("rule %q must run before %q (order %v)", pair[0], pair[1], names)
		}
	}
}

func TestRenderersAreTotal(t *testing.T) {
	inputs := []string{
		"", "\n", "```", "``````", "**", "***", "[", "[]()", "|", "||", "| |", ">",
		"- ", "1.", "#", "# ", "[B-Roll: ", "[TEXT: ]", "\x00", "",
		"9", strings.Repeat("*", 101), "```\n0\n```",
	}
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in string) {
			defer wg.Done()
			for _, k := range []Kind{KindMarkdown, KindMarkdownSafe, KindScript} {
				func() {
					defer func() {
						if r := recover(); r != nil {
							t.Errorf("input %d (%q) panicked in %s: %v", i, in, k, r)
						}
					}()
					_ = Render(k, in)
				}()
			}
		}(i, in)
	}
	wg.Wait()
}

func ExampleMarkdown() {
	fmt.Println(Markdown("- first\n- second"))
	// Output: <ul><li>first</li><li>second</li></ul>
}
