package engine

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tones.yaml
var defaultTonesYAML []byte

// Tone is one entry of the tone guidance table.
type Tone struct {
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
	Signals    []string `yaml:"signals"`
	Guidance   string   `yaml:"guidance"`
}

// ToneTable picks prompt tone guidance from a category and a prompt.
type ToneTable struct {
	Default string `yaml:"default"`
	Tones   []Tone `yaml:"tones"`
}

var (
	tonesMu sync.RWMutex
	tones   = mustParseTones(defaultTonesYAML)
)

// ParseTones decodes a tone table.
func ParseTones(data []byte) (*ToneTable, error) {
	var t ToneTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse tones: %w", err)
	}
	if t.Default == "" {
		return nil, fmt.Errorf("parse tones: default guidance is empty")
	}
	for i, tone := range t.Tones {
		if tone.Guidance == "" {
			return nil, fmt.Errorf("parse tones: entry %d (%s) has no guidance", i, tone.Name)
		}
	}
	return &t, nil
}

func mustParseTones(data []byte) *ToneTable {
	t, err := ParseTones(data)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTones replaces the built-in table with the one at path.
func LoadTones(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tones: %w", err)
	}
	t, err := ParseTones(data)
	if err != nil {
		return err
	}
	tonesMu.Lock()
	tones = t
	tonesMu.Unlock()
	return nil
}

// Guidance returns the tone instructions for category and prompt.
func (t *ToneTable) Guidance(category, prompt string) string {
	cat := strings.ToLower(category)
	p := strings.ToLower(prompt)
	for _, tone := range t.Tones {
		if slices.Contains(tone.Categories, cat) {
			return tone.Guidance
		}
		for _, s := range tone.Signals {
			if strings.Contains(p, s) {
				return tone.Guidance
			}
		}
	}
	return t.Default
}

// ToneGuidance uses the active tone table.
func ToneGuidance(category, prompt string) string {
	tonesMu.RLock()
	defer tonesMu.RUnlock()
	return tones.Guidance(category, prompt)
}
