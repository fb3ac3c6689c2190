package domain

import "context"

// Label is the risk classification attached to a reference document.
type Label string

const (
	LabelSupportive Label = "Supportive"
	LabelIndicator  Label = "Indicator"
	LabelIdeation   Label = "Ideation"
	LabelBehavior   Label = "Behavior"
	LabelAttempt    Label = "Attempt"
)

// KnownLabels lists the closed label set in increasing severity.
var KnownLabels = []Label{LabelSupportive, LabelIndicator, LabelIdeation, LabelBehavior, LabelAttempt}

// Known reports whether l is one of the five recognised labels.
func (l Label) Known() bool {
	for _, k := range KnownLabels {
		if l == k {
			return true
		}
	}
	return false
}

// Rank returns the position of l in KnownLabels, or -1 for unknown labels.
func (l Label) Rank() int {
	for i, k := range KnownLabels {
		if l == k {
			return i
		}
	}
	return -1
}

// ReferenceDocument is one labeled historical case held by the index.
type ReferenceDocument struct {
	ID      int    `json:"id"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	Label   Label  `json:"label"`
	Preview string `json:"preview"`
}

// SimilarityResult represents a matching document with its cosine score.
type SimilarityResult struct {
	ReferenceDocument
	Score float64 `json:"similarity_score"`
}

// Embedder converts free text into fixed-length numeric vectors.
// Encode must return exactly one vector per input, in input order.
type Embedder interface {
	Name() string
	Dimension() int
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// CacheStore is durable key/value blob storage.
// Get returns ErrCacheMiss when the key is absent.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SimilaritySearcher defines the retrieval operations exposed to callers.
type SimilaritySearcher interface {
	FindSimilar(ctx context.Context, query string, topK int) []SimilarityResult
	LabelDistribution() map[Label]int
}
