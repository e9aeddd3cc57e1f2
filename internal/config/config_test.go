package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// isolate runs the test from an empty directory with an empty XDG config home.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quandela", cfg.Keyword)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "authors_quandela.csv", cfg.RosterFile)
	assert.Equal(t, "arxiv_quandela_publications.csv", cfg.SnapshotFile)
	assert.Equal(t, "http://export.arxiv.org/api/query", cfg.Arxiv.BaseURL)
	assert.Equal(t, 100, cfg.Arxiv.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Arxiv.Timeout())
	assert.Equal(t, 3*time.Second, cfg.Arxiv.RequestInterval())
	assert.Equal(t, 200, cfg.Fetch.MaxResultsKeyword)
	assert.Equal(t, 50, cfg.Fetch.MaxResultsPerAuthor)
	assert.Equal(t, 1, cfg.Fetch.AuthorConcurrency)
	assert.False(t, cfg.Fetch.SkipFailedAuthors)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromYAML(t *testing.T) {
	dir := isolate(t)

	content := `
keyword: photonics
data_dir: /srv/pubs
arxiv:
  page_size: 25
fetch:
  author_concurrency: 4
  skip_failed_authors: true
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "photonics", cfg.Keyword)
	assert.Equal(t, 25, cfg.Arxiv.PageSize)
	assert.Equal(t, 30, cfg.Arxiv.TimeoutSecs, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.Fetch.AuthorConcurrency)
	assert.True(t, cfg.Fetch.SkipFailedAuthors)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/srv/pubs/authors_quandela.csv", cfg.RosterPath())
}

func TestLoadFromXDG(t *testing.T) {
	dir := isolate(t)

	xdgDir := filepath.Join(dir, "xdg", AppDir)
	require.NoError(t, os.MkdirAll(xdgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(xdgDir, FileName), []byte("keyword: optics\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "optics", cfg.Keyword)
	assert.Equal(t, filepath.Join(xdgDir, FileName), GlobalPath())
}

func TestLoadExplicitPath(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("keyword: lasers\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lasers", cfg.Keyword)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PUBWATCH_KEYWORD", "qubits")
	t.Setenv("PUBWATCH_ARXIV_PAGE_SIZE", "10")
	t.Setenv("PUBWATCH_FETCH_SKIP_FAILED_AUTHORS", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "qubits", cfg.Keyword)
	assert.Equal(t, 10, cfg.Arxiv.PageSize)
	assert.True(t, cfg.Fetch.SkipFailedAuthors)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	// Register restoration, then clear so godotenv may set it.
	t.Setenv("PUBWATCH_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("PUBWATCH_LOG_LEVEL"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PUBWATCH_LOG_LEVEL=warn\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"page size":   "PUBWATCH_ARXIV_PAGE_SIZE",
		"timeout":     "PUBWATCH_ARXIV_TIMEOUT_SECS",
		"concurrency": "PUBWATCH_FETCH_AUTHOR_CONCURRENCY",
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv(env, "0")

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	cfg.Keyword = "integrated photonics"
	cfg.Fetch.MaxResultsPerAuthor = 10

	path := filepath.Join(dir, "nested", FileName)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPathsResolveAgainstDataDir(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"
	cfg.SnapshotFile = "/abs/pubs.jsonl"

	assert.Equal(t, "/data/authors_quandela.csv", cfg.RosterPath())
	assert.Equal(t, "/abs/pubs.jsonl", cfg.SnapshotPath())
	assert.Equal(t, "/data/.pubwatch/index.db", cfg.IndexPath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "pubs"), ExpandPath("~/pubs"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "", ExpandPath(""))
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}
