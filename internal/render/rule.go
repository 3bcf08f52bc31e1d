// Package render turns the two markup dialects the service produces into HTML
// fragments: a markdown subset used for research reports and the script dialect
// with bracketed section labels and production cues.
//
// Both renderers are ordered lists of regex rewrite rules applied in sequence
// over an accumulating string. There is no parse tree and no failure mode:
// every input yields some output.
package render

import "regexp"

// Rule is one rewrite step of a Pipeline.
// When Expand is set it receives the submatches of each match and returns the
// replacement; otherwise Template is expanded with regexp $-syntax.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string
	Expand   func(groups []string) string
}

// Apply rewrites every match of r.Pattern in s.
func (r Rule) Apply(s string) string {
	if r.Expand == nil {
		return r.Pattern.ReplaceAllString(s, r.Template)
	}
	return r.Pattern.ReplaceAllStringFunc(s, func(m string) string {
		groups := r.Pattern.FindStringSubmatch(m)
		if groups == nil {
			return m
		}
		return r.Expand(groups)
	})
}

// Pipeline is an ordered rule list. Each rule sees the output of the previous one.
type Pipeline []Rule

// Apply runs all rules left to right.
func (p Pipeline) Apply(s string) string {
	for _, r := range p {
		s = r.Apply(s)
	}
	return s
}

// Names returns the rule names in application order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, r := range p {
		names[i] = r.Name
	}
	return names
}
