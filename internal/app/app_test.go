package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caserag/internal/config"
	"caserag/internal/domain"
	"caserag/internal/index"
)

const testCorpus = "User,Post,Label\n" +
	"u0,talked with friends and felt supported,Supportive\n" +
	"u1,everything feels grey and empty lately,Indicator\n" +
	"u2,I took all the pills last night,Attempt\n"

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCorpus), 0o644))
	return &config.AppConfig{
		Corpus:    config.CorpusConfig{Path: path},
		Embedder:  config.EmbedderConfig{Type: "hashing", Hashing: &config.HashingEmbedderConfig{Dimension: 64}},
		Cache:     config.CacheConfig{Type: "file", Dir: filepath.Join(dir, "cache")},
		Retrieval: config.RetrievalConfig{TopK: 2, BatchSize: 2},
	}
}

func quietLogger() *slog.Logger {
	return NewLogger(config.LogConfig{Level: "error"}, &bytes.Buffer{}, false)
}

func TestNew_BuildsThenReloadsFromCache(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, index.SourceBuilt, first.Index.Source())
	assert.Equal(t, 3, first.Index.Len())
	assert.Equal(t, "rules", first.Scorer.Name())
	assert.Equal(t, 2, first.TopK())
	require.NoError(t, first.Close())

	second, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, index.SourceCache, second.Index.Source())

	results := second.Index.FindSimilar(context.Background(), "pills last night", second.TopK())
	require.Len(t, results, 2)
	assert.Equal(t, domain.LabelAttempt, results[0].Label)
}

func TestNew_UnknownEmbedderIsError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedder.Type = "word2vec"

	_, err := New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}

func TestNew_BrokenCacheBackendStillServes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache = config.CacheConfig{Type: "redis"}

	c, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, c.Store)
	assert.Equal(t, index.SourceBuilt, c.Index.Source())
	assert.NoError(t, c.Close())
}

func TestNew_MissingCorpusServesEmptyIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.Corpus.Path = filepath.Join(t.TempDir(), "missing.csv")

	c, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, index.SourceEmpty, c.Index.Source())
	assert.Empty(t, c.Index.FindSimilar(context.Background(), "anything", 3))
}

func TestTopK_Default(t *testing.T) {
	assert.Equal(t, index.DefaultTopK, (&Context{}).TopK())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewLogger_JSONAndVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "error", Format: "json"}, &buf, true)
	logger.Debug("hello", "k", "v")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"msg":"hello"`)
}
