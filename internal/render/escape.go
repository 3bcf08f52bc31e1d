package render

import "strings"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Escape replaces &, < and > with entities. It runs in a single pass, so
// entities it introduces are never escaped twice.
func Escape(s string) string {
	return textEscaper.Replace(s)
}

// escapeAttr also escapes double quotes, which link templates place inside href.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
