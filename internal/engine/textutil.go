package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	if limit <= 0 {
		return s
	}
	return strutil.TruncateWith(s, limit, suffix)
}

// FirstWords returns up to n lowercase whitespace-separated words of s.
func FirstWords(s string, n int) []string {
	words := strings.Fields(strings.ToLower(s))
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// CategoryOrGeneral renders an empty category as "General" in prompts.
func CategoryOrGeneral(category string) string {
	if strings.TrimSpace(category) == "" {
		return "General"
	}
	return category
}
