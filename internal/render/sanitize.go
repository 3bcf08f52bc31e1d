package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^(` + ClassSectionLabel + `|` + ClassBRollCue + `|` + ClassTextCue + `)$`)).OnElements("span")
	return p
}

// Sanitize strips anything from an HTML fragment that the UGC policy does not
// allow: scripts, event handlers, javascript: URLs and unknown attributes.
// The span classes the script renderer emits are kept.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}
