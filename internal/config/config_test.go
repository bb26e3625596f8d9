package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, Default().Validate())
}

func TestLoadMergesFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
database:
  driver: postgres
  dsn: postgres://curator@localhost/curator
pipeline:
  batchSize: 20
retry:
  timeout: 3s
sources:
  - name: grants
    kind: feed
    category: funding
    urls: ["https://grants.example.com/feed.json"]
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://override@db/curator")
	t.Setenv(oracleProviderEnv, OracleGemini)
	t.Setenv(githubTokenEnv, "gh-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://override@db/curator", cfg.Database.DSN)
	assert.Equal(t, 20, cfg.Pipeline.BatchSize)
	assert.Equal(t, 30.0, cfg.Pipeline.ScoreThreshold)
	assert.Equal(t, 3*time.Second, cfg.Retry.Timeout)
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.Equal(t, OracleGemini, cfg.Oracle.Provider)
	assert.Equal(t, "gh-token", cfg.GitHub.Token)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "grants", cfg.Sources[0].Name)
	require.NoError(t, cfg.Validate())
}

func TestLoadReportsUnreadableFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Pipeline.BatchSize = 500
	cfg.Database.Driver = "mysql"
	cfg.Oracle.Provider = "crystal-ball"
	cfg.Sources = append(cfg.Sources,
		SourceConfig{Name: "arxiv-ai", Kind: SourceArxiv, URLs: []string{"https://a"}},
		SourceConfig{Name: "feed", Kind: SourceFeed, Category: "podcast", URLs: []string{"https://b"}},
		SourceConfig{Name: "rss", Kind: "rss"},
	)

	err := cfg.Validate()
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	msg := err.Error()
	for _, want := range []string{"batch size", "mysql", "crystal-ball", "duplicate name", "podcast", "unknown kind"} {
		assert.Contains(t, msg, want)
	}
}
