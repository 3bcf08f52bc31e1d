package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneGuidanceBuiltin(t *testing.T) {
	tests := []struct {
		name     string
		category string
		prompt   string
		contains string
	}{
		{"finance category", "finance", "", "Informational, clear"},
		{"category is case insensitive", "Gaming", "", "Casual, energetic"},
		{"prompt signal", "", "How to learn Go quickly", "Kurzgesagt"},
		{"category wins over later signal", "finance", "a movie about money", "Informational"},
		{"first matching entry wins", "", "crypto games", "Informational"},
		{"default", "", "knitting patterns", "Neutral but engaging"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ToneGuidance(tt.category, tt.prompt), tt.contains)
		})
	}
}

func TestParseTones(t *testing.T) {
	_, err := ParseTones([]byte("tones: []"))
	assert.ErrorContains(t, err, "default guidance is empty")

	_, err = ParseTones([]byte("default: x\ntones:\n  - name: empty\n"))
	assert.ErrorContains(t, err, "entry 0 (empty)")

	_, err = ParseTones([]byte("default: [unclosed"))
	assert.Error(t, err)

	table, err := ParseTones(defaultTonesYAML)
	require.NoError(t, err)
	assert.Len(t, table.Tones, 3)
}

func TestLoadTones(t *testing.T) {
	t.Cleanup(func() {
		tonesMu.Lock()
		tones = mustParseTones(defaultTonesYAML)
		tonesMu.Unlock()
	})

	path := filepath.Join(t.TempDir(), "tones.yaml")
	custom := "default: plain\ntones:\n  - name: cooking\n    categories: [food]\n    signals: [recipe]\n    guidance: warm and homely\n"
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))
	require.NoError(t, LoadTones(path))

	assert.Equal(t, "warm and homely", ToneGuidance("food", ""))
	assert.Equal(t, "warm and homely", ToneGuidance("", "Best RECIPE ever"))
	assert.Equal(t, "plain", ToneGuidance("finance", ""))

	err := LoadTones(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "read tones"))
	assert.Equal(t, "plain", ToneGuidance("", ""), "failed load keeps the active table")
}
