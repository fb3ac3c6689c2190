// Package index holds the labeled reference corpus, its embeddings, and the
// nearest-neighbour query over them.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"caserag/internal/corpus"
	"caserag/internal/domain"
)

// DefaultTopK is used when a query asks for a non-positive number of results.
const DefaultTopK = 3

// DefaultBatchSize bounds the number of texts sent per Encode call during a build.
const DefaultBatchSize = 64

// Source records where the index contents came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceBuilt Source = "built"
	SourceEmpty Source = "empty"
)

// Options configures Build.
type Options struct {
	CorpusPath string
	Embedder   domain.Embedder
	// Store may be nil, in which case nothing is loaded or persisted.
	Store     domain.CacheStore
	Logger    *slog.Logger
	BatchSize int
}

// Index is immutable once Build returns, so concurrent FindSimilar calls
// are safe.
type Index struct {
	docs       []domain.ReferenceDocument
	embeddings [][]float64
	embedder   domain.Embedder
	logger     *slog.Logger
	source     Source
}

// Verify interface compliance
var _ domain.SimilaritySearcher = (*Index)(nil)

// Build loads the cached artifacts when both are present and consistent,
// and otherwise computes them from the corpus and persists them. It never
// fails: any unrecoverable problem leaves an empty index.
func Build(ctx context.Context, opts Options) *Index {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	idx := &Index{embedder: opts.Embedder, logger: logger, source: SourceEmpty}

	if opts.Store != nil {
		wantDim := 0
		if opts.Embedder != nil {
			wantDim = opts.Embedder.Dimension()
		}
		docs, embeddings, err := loadCache(ctx, opts.Store, wantDim)
		switch {
		case err == nil:
			idx.docs, idx.embeddings, idx.source = docs, embeddings, SourceCache
			logger.Info("loaded embeddings from cache", "documents", len(docs))
			return idx
		case errors.Is(err, domain.ErrCacheMiss):
			logger.Info("embedding cache not found, building from corpus")
		default:
			logger.Warn("discarding embedding cache", "error", err)
		}
	}

	if opts.Embedder == nil {
		logger.Error("no embedder configured, serving empty index")
		return idx
	}

	docs, err := corpus.Load(ctx, opts.CorpusPath, logger)
	if err != nil {
		logger.Error("corpus load failed, serving empty index", "path", opts.CorpusPath, "error", err)
		return idx
	}
	if len(docs) == 0 {
		logger.Warn("corpus has no usable rows, serving empty index", "path", opts.CorpusPath)
		return idx
	}

	embeddings, err := encodeAll(ctx, opts.Embedder, docs, opts.BatchSize, logger)
	if err != nil {
		logger.Error("embedding corpus failed, serving empty index", "error", err)
		return idx
	}
	idx.docs, idx.embeddings, idx.source = docs, embeddings, SourceBuilt

	if opts.Store != nil {
		if err := persist(ctx, opts.Store, docs, embeddings); err != nil {
			logger.Error("persisting embedding cache failed", "error", err)
			// a half-written pair must not be loaded next time
			if derr := Invalidate(ctx, opts.Store); derr != nil {
				logger.Warn("clearing partial embedding cache failed", "error", derr)
			}
		} else {
			logger.Info("embeddings created and saved", "documents", len(docs), "embedder", opts.Embedder.Name())
		}
	}
	return idx
}

// loadCache returns both artifacts. wantDim > 0 requires the cached rows to
// have that length.
func loadCache(ctx context.Context, store domain.CacheStore, wantDim int) ([]domain.ReferenceDocument, [][]float64, error) {
	embBlob, err := store.Get(ctx, KeyEmbeddings)
	if err != nil {
		return nil, nil, err
	}
	docBlob, err := store.Get(ctx, KeyDocuments)
	if err != nil {
		return nil, nil, err
	}
	embeddings, err := DecodeMatrix(embBlob)
	if err != nil {
		return nil, nil, err
	}
	docs, err := DecodeDocuments(docBlob)
	if err != nil {
		return nil, nil, err
	}
	if len(docs) != len(embeddings) {
		return nil, nil, fmt.Errorf("%w: %d documents but %d embeddings", domain.ErrCacheConsistency, len(docs), len(embeddings))
	}
	if wantDim > 0 && len(embeddings) > 0 && len(embeddings[0]) != wantDim {
		return nil, nil, fmt.Errorf("%w: cached dimension %d, embedder dimension %d", domain.ErrCacheConsistency, len(embeddings[0]), wantDim)
	}
	return docs, embeddings, nil
}

func encodeAll(ctx context.Context, emb domain.Embedder, docs []domain.ReferenceDocument, batchSize int, logger *slog.Logger) ([][]float64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	out := make([][]float64, 0, len(docs))
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		texts := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			texts = append(texts, d.Text)
		}
		vecs, err := emb.Encode(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(vecs), len(texts))
		}
		out = append(out, vecs...)
		logger.Debug("encoded batch", "done", end, "total", len(docs))
	}
	return out, nil
}

func persist(ctx context.Context, store domain.CacheStore, docs []domain.ReferenceDocument, embeddings [][]float64) error {
	embBlob, err := EncodeMatrix(embeddings)
	if err != nil {
		return err
	}
	docBlob, err := EncodeDocuments(docs)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, KeyEmbeddings, embBlob); err != nil {
		return err
	}
	return store.Put(ctx, KeyDocuments, docBlob)
}

// Invalidate deletes both cache artifacts so the next Build recomputes them.
func Invalidate(ctx context.Context, store domain.CacheStore) error {
	if err := store.Delete(ctx, KeyEmbeddings); err != nil {
		return err
	}
	return store.Delete(ctx, KeyDocuments)
}

// FindSimilar returns up to topK documents ranked by cosine similarity to
// query, highest first; equal scores keep ascending ID order. Failures are
// logged and yield an empty result.
func (x *Index) FindSimilar(ctx context.Context, query string, topK int) (results []domain.SimilarityResult) {
	results = []domain.SimilarityResult{}
	if len(x.docs) == 0 || x.embedder == nil {
		return results
	}
	// A panicking embedder yields an empty result.
	defer func() {
		if r := recover(); r != nil {
			x.logger.Error("similarity query panicked", "panic", r)
			results = []domain.SimilarityResult{}
		}
	}()
	if topK <= 0 {
		topK = DefaultTopK
	}

	vecs, err := x.embedder.Encode(ctx, []string{query})
	if err != nil {
		x.logger.Warn("query embedding failed", "error", err)
		return results
	}
	if len(vecs) != 1 {
		x.logger.Warn("query embedding returned unexpected vector count", "count", len(vecs))
		return results
	}
	qv := vecs[0]
	if dim := len(x.embeddings[0]); len(qv) != dim {
		x.logger.Warn("query dimension differs from cached embeddings", "query_dim", len(qv), "index_dim", dim)
		return results
	}

	scores := make([]float64, len(x.embeddings))
	for i, row := range x.embeddings {
		scores[i] = CosineSimilarity(qv, row)
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })

	if topK > len(order) {
		topK = len(order)
	}
	for _, i := range order[:topK] {
		results = append(results, domain.SimilarityResult{ReferenceDocument: x.docs[i], Score: scores[i]})
	}
	return results
}

// LabelDistribution counts documents per label.
func (x *Index) LabelDistribution() map[domain.Label]int {
	counts := make(map[domain.Label]int)
	for _, d := range x.docs {
		counts[d.Label]++
	}
	return counts
}

// Len returns the number of documents.
func (x *Index) Len() int { return len(x.docs) }

// Source reports whether the index was loaded, built, or is empty.
func (x *Index) Source() Source { return x.source }

// Dimension returns the embedding size, or 0 for an empty index.
func (x *Index) Dimension() int {
	if len(x.embeddings) == 0 {
		return 0
	}
	return len(x.embeddings[0])
}

// Documents returns a copy of the document sequence.
func (x *Index) Documents() []domain.ReferenceDocument {
	return append([]domain.ReferenceDocument(nil), x.docs...)
}
