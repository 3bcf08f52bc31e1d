package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultTerminalStyle is the glamour style used when none is given.
const DefaultTerminalStyle = "dark"

// Terminal renders a markdown document as ANSI text for a terminal.
// Script documents render fine too: their labels and cues are plain text.
func Terminal(md, style string) (string, error) {
	if style == "" {
		style = DefaultTerminalStyle
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return "", fmt.Errorf("terminal render: %w", err)
	}
	return out, nil
}
