package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = &out
	argv := append([]string{"pins", "--config", "", "--env-file", "", "--db-path", dbPath, "--log-level", "error"}, args...)
	err := a.RunContext(context.Background(), argv)
	return out.String(), err
}

func TestImportListExport(t *testing.T) {
	t.Setenv("PINS_TOKEN", "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pins.db")

	export := filepath.Join(dir, "linkding.json")
	require.NoError(t, os.WriteFile(export, []byte(`[
  {"url": "https://go.dev", "title": "Go", "unread": true, "tag_names": ["go"],
   "date_added": "2024-01-01T00:00:00Z", "date_modified": "2024-01-01T00:00:00Z"}
]`), 0o644))

	out, err := runApp(t, dbPath, "import", export)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")

	out, err = runApp(t, dbPath, "list", "--unread", "#go")
	require.NoError(t, err)
	assert.Contains(t, out, "https://go.dev")

	htmlPath := filepath.Join(dir, "bookmarks.html")
	_, err = runApp(t, dbPath, "export-html", "--output", htmlPath)
	require.NoError(t, err)
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), `HREF="https://go.dev"`)
	assert.Contains(t, string(html), `TAGS="go"`)
}

func TestServeRequiresToken(t *testing.T) {
	t.Setenv("PINS_TOKEN", "")
	_, err := runApp(t, filepath.Join(t.TempDir(), "pins.db"), "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestImportUsage(t *testing.T) {
	_, err := runApp(t, filepath.Join(t.TempDir(), "pins.db"), "import")
	assert.Error(t, err)
}
