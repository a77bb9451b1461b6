// Package embedding turns text into fixed-length unit vectors. Ingestion and
// retrieval must share one Embedder or similarity scores are meaningless.
package embedding

import (
	"context"
	"math"
)

const (
	DefaultDimension = 128
	MinDimension     = 64
	MaxDimension     = 2048
)

// Embedder maps text to an L2-normalized vector of Dimension() floats
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// HashEmbedder is the deterministic character-code embedder. It needs no
// network and always returns the same vector for the same text.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder; dim is clamped to [64, 2048]
func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{dim: ClampDimension(dim)}
}

// ClampDimension applies the supported dimension range, 0 means the default
func ClampDimension(dim int) int {
	if dim == 0 {
		return DefaultDimension
	}
	if dim < MinDimension {
		return MinDimension
	}
	if dim > MaxDimension {
		return MaxDimension
	}
	return dim
}

// Dimension returns the vector length
func (e *HashEmbedder) Dimension() int {
	return e.dim
}

// Embed accumulates (code % 100) / 100 for each character into slot i % dim
// and normalizes. Empty text gives the zero vector.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dim)
	i := 0
	for _, r := range text {
		vec[i%e.dim] += float64(int(r)%100) / 100
		i++
	}
	Normalize(vec)
	return vec, nil
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float64) {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}
}

// IsZero reports whether every component of v is zero
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Magnitude returns the L2 norm of v
func Magnitude(v []float64) float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	return math.Sqrt(sumSq)
}
