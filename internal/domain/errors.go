package domain

import "errors"

var (
	// ErrCorpusUnavailable means the corpus source could not be read at all.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	// ErrCacheMiss is returned by CacheStore.Get for absent keys.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheConsistency means cached documents and embeddings disagree.
	ErrCacheConsistency = errors.New("cache consistency")
	// ErrEmbedding wraps failures of the embedding service.
	ErrEmbedding = errors.New("embedding service")
)
