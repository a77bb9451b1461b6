// Package vectorstore holds chunk vectors and answers top-K cosine queries.
package vectorstore

import (
	"context"
	"errors"
	"math"

	"nivesh-ai-backend/models"
)

const (
	DefaultTopK = 5
	MaxTopK     = 20
)

var (
	ErrEmptyID           = errors.New("vector id is empty")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Store is implemented by the in-memory store and the pgvector repository
type Store interface {
	// Upsert replaces entries with the same id and appends the rest
	Upsert(ctx context.Context, vectors []models.EmbeddingVector) error

	// Query returns up to topK chunks ordered by descending cosine similarity,
	// ties in insertion order. topK is clamped to [1, MaxTopK].
	Query(ctx context.Context, vector []float64, topK int, opts ...QueryOption) ([]models.DocumentChunk, error)
}

// QueryOptions narrows a query
type QueryOptions struct {
	StartupID string
}

// QueryOption configures a query
type QueryOption func(*QueryOptions)

// WithStartupID restricts results to chunks ingested for one startup
func WithStartupID(id string) QueryOption {
	return func(o *QueryOptions) {
		o.StartupID = id
	}
}

// ApplyQueryOptions folds opts into a QueryOptions value
func ApplyQueryOptions(opts ...QueryOption) QueryOptions {
	var o QueryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ClampTopK applies the [1, MaxTopK] range
func ClampTopK(k int) int {
	if k < 1 {
		return 1
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}

// CosineSimilarity returns a·b / (|a||b|). Mismatched lengths and zero
// vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// ChunkText reads the chunk text stored in metadata
func ChunkText(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	text, _ := metadata[models.MetaText].(string)
	return text
}
