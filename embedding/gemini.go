package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// ErrDimensionMismatch is returned when the model output does not match the
// configured vector length
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// GeminiEmbedder calls a Gemini embedding model. Vectors are normalized so
// they can share an index with cosine distance.
type GeminiEmbedder struct {
	model *genai.EmbeddingModel
	dim   int
}

// NewGeminiEmbedder creates an embedder for the named model. dim must be the
// model's native output size (768 for text-embedding-004).
func NewGeminiEmbedder(client *genai.Client, modelName string, dim int) (*GeminiEmbedder, error) {
	if client == nil {
		return nil, errors.New("gemini client not set")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dim)
	}
	return &GeminiEmbedder{model: client.EmbeddingModel(modelName), dim: dim}, nil
}

// Dimension returns the vector length
func (e *GeminiEmbedder) Dimension() int {
	return e.dim
}

// Embed returns the normalized model embedding of text. Blank text yields the
// zero vector without a network call.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float64, e.dim), nil
	}

	res, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res == nil || res.Embedding == nil {
		return nil, errors.New("gemini returned no embedding")
	}
	if len(res.Embedding.Values) != e.dim {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrDimensionMismatch, e.dim, len(res.Embedding.Values))
	}

	vec := make([]float64, len(res.Embedding.Values))
	for i, v := range res.Embedding.Values {
		vec[i] = float64(v)
	}
	Normalize(vec)
	return vec, nil
}
