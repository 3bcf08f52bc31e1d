package render

import (
	"regexp"
	"strings"
)

// CSS classes of the spans the script renderer emits.
const (
	ClassSectionLabel = "script-section-label"
	ClassBRollCue     = "broll-cue"
	ClassTextCue      = "text-cue"
)

// SectionLabels are the script sections the generator is asked to emit, in order.
var SectionLabels = []string{"HOOK", "INTRODUCTION", "MAIN", "KEY INSIGHTS", "CONCLUSION"}

// ScriptRules is the rule order of Script after escaping and before paragraph segmentation.
var ScriptRules = Pipeline{
	{
		Name:     "section-label",
		Pattern:  regexp.MustCompile(`\[(` + strings.Join(SectionLabels, "|") + `)\]`),
		Template: `<span class="` + ClassSectionLabel + `">[${1}]</span>`,
	},
	{
		Name:     "broll-cue",
		Pattern:  regexp.MustCompile(`\[B-Roll: ([^\]]+)\]`),
		Template: `<span class="` + ClassBRollCue + `">[B-Roll: ${1}]</span>`,
	},
	{
		Name:     "text-cue",
		Pattern:  regexp.MustCompile(`\[TEXT: ([^\]]+)\]`),
		Template: `<span class="` + ClassTextCue + `">[TEXT: ${1}]</span>`,
	},
	{Name: "bold", Pattern: regexp.MustCompile(`\*\*(.+?)\*\*`), Template: "<strong>${1}</strong>"},
}

// Script renders generated script text. The input is escaped before any rule
// runs, so the only markup in the output is the fixed set of closed tags the
// rules emit.
func Script(text string) string {
	html := ScriptRules.Apply(Escape(text))

	paras := strings.Split(html, "\n\n")
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, "<p>"+strings.ReplaceAll(p, "\n", "<br/>")+"</p>")
	}
	return strings.Join(out, "\n")
}
