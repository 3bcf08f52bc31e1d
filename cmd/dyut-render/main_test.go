package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMarkdownStdin(t *testing.T) {
	out, err := runCLI(t, "# Report\n**key** point", "markdown")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Report</h1>\n<strong>key</strong> point\n", out, "lines opening with a tag are not wrapped")

	out, err = runCLI(t, "<b>x</b>", "md", "-")
	require.NoError(t, err)
	assert.Equal(t, "<b>x</b>\n", out)
}

func TestMarkdownSafe(t *testing.T) {
	out, err := runCLI(t, "<script>alert(1)</script>", "markdown", "--safe")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(path, []byte("[HOOK]\n[B-Roll: city at night]"), 0o644))

	out, err := runCLI(t, "", "script", path)
	require.NoError(t, err)
	assert.Contains(t, out, `class="script-section-label">[HOOK]</span>`)
	assert.Contains(t, out, "[B-Roll: city at night]")
}

func TestANSI(t *testing.T) {
	out, err := runCLI(t, "# Title", "markdown", "--ansi", "--style", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.NotContains(t, out, "<h1>")
}

func TestErrors(t *testing.T) {
	_, err := runCLI(t, "", "script", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = runCLI(t, "", "markdown", "a", "b")
	assert.Error(t, err)
}
