package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "hashing", cfg.Embedder.Type)
	assert.Equal(t, 512, cfg.Embedder.Hashing.Dimension)
	assert.Equal(t, "file", cfg.Cache.Type)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
corpus:
  path: posts.csv
embedder:
  type: openai
  openai:
    model: custom-model
cache:
  type: redis
  redis:
    url: redis://localhost:6379/0
retrieval:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "posts.csv", cfg.Corpus.Path)
	assert.Equal(t, "custom-model", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)
	assert.Equal(t, 32, cfg.Embedder.OpenAI.BatchSize)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.Redis.URL)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 64, cfg.Retrieval.BatchSize)
	assert.Equal(t, 10, cfg.Severity.TimeoutSecs)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvCorpus, "/data/override.csv")
	t.Setenv(EnvCacheDir, "/tmp/cache")
	t.Setenv(EnvRedisURL, "redis://cache:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/override.csv", cfg.Corpus.Path)
	assert.Equal(t, "/tmp/cache", cfg.Cache.Dir)
	require.NotNil(t, cfg.Cache.Redis)
	assert.Equal(t, "redis://cache:6379", cfg.Cache.Redis.URL)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Retrieval.TopK = 7
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
	assert.Equal(t, cfg.Corpus.Path, loaded.Corpus.Path)
}
