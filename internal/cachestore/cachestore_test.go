package cachestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caserag/internal/cachestore/file"
	"caserag/internal/cachestore/memory"
	"caserag/internal/config"
)

func TestNew_File(t *testing.T) {
	dir := t.TempDir()
	s, err := New(context.Background(), config.CacheConfig{Type: "file", Dir: dir, Prefix: "v1"})
	require.NoError(t, err)
	defer s.Close()

	fs, ok := s.(*file.Storage)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "v1"), fs.Dir())
}

func TestNew_Memory(t *testing.T) {
	s, err := New(context.Background(), config.CacheConfig{Type: "memory"})
	require.NoError(t, err)
	_, ok := s.(*memory.Storage)
	assert.True(t, ok)
}

func TestNew_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := New(context.Background(), config.CacheConfig{
		Type:   "redis",
		Prefix: "caserag:",
		Redis:  &config.RedisCacheConfig{URL: "redis://" + mr.Addr()},
	})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Put(context.Background(), "documents", []byte("x")))
	assert.True(t, mr.Exists("caserag:documents"))
}

func TestNew_SQLite(t *testing.T) {
	s, err := New(context.Background(), config.CacheConfig{
		Type:   "sqlite",
		SQLite: &config.SQLiteCacheConfig{Path: filepath.Join(t.TempDir(), "c.db")},
	})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Put(context.Background(), "k", []byte("v")))
}

func TestNew_MissingBackendConfig(t *testing.T) {
	_, err := New(context.Background(), config.CacheConfig{Type: "redis"})
	assert.Error(t, err)
	_, err = New(context.Background(), config.CacheConfig{Type: "postgres"})
	assert.Error(t, err)
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(context.Background(), config.CacheConfig{Type: "s3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache store")
}
