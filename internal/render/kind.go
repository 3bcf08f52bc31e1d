package render

import (
	"fmt"
	"strings"
)

// Kind selects a renderer.
type Kind string

const (
	KindMarkdown     Kind = "markdown"
	KindMarkdownSafe Kind = "markdown-safe"
	KindScript       Kind = "script"
)

// ParseKind accepts a kind name case-insensitively. Empty means markdown.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindMarkdown, "md":
		return KindMarkdown, nil
	case KindMarkdownSafe, "safe":
		return KindMarkdownSafe, nil
	case KindScript:
		return KindScript, nil
	default:
		return "", fmt.Errorf("unknown render kind %q (want markdown, markdown-safe or script)", s)
	}
}

// Render dispatches text to the renderer for kind. Unknown kinds fall back to
// the script renderer, which always escapes.
func Render(kind Kind, text string) string {
	switch kind {
	case KindMarkdown:
		return Markdown(text)
	case KindMarkdownSafe:
		return MarkdownSafe(text)
	default:
		return Script(text)
	}
}
