package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(128)
	a, err := e.Embed(context.Background(), "MRR: $71,000 per month")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "MRR: $71,000 per month")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 128)
}

func TestHashEmbedderUnitLength(t *testing.T) {
	e := NewHashEmbedder(0)
	for _, text := range []string{"a", "founder", "Raised $2.5M in Seed funding", "नमस्ते दुनिया"} {
		v, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, Magnitude(v), 1e-9, text)
	}
}

func TestHashEmbedderZeroVectors(t *testing.T) {
	e := NewHashEmbedder(64)

	v, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, v, 64)
	assert.True(t, IsZero(v))

	// 'd' is code 100, which contributes nothing
	v, err = e.Embed(context.Background(), "ddd")
	require.NoError(t, err)
	assert.True(t, IsZero(v))
}

func TestHashEmbedderKnownVector(t *testing.T) {
	e := NewHashEmbedder(64)
	// 'A' = 65 -> 0.65 in slot 0, 'B' = 66 -> 0.66 in slot 1
	v, err := e.Embed(context.Background(), "AB")
	require.NoError(t, err)

	norm := Magnitude([]float64{0.65, 0.66})
	assert.InDelta(t, 0.65/norm, v[0], 1e-12)
	assert.InDelta(t, 0.66/norm, v[1], 1e-12)
	assert.Zero(t, v[2])
}

func TestClampDimension(t *testing.T) {
	assert.Equal(t, 128, ClampDimension(0))
	assert.Equal(t, 64, ClampDimension(10))
	assert.Equal(t, 2048, ClampDimension(4096))
	assert.Equal(t, 768, ClampDimension(768))
	assert.Equal(t, 64, NewHashEmbedder(-5).Dimension())
}

func TestNewGeminiEmbedderRequiresClient(t *testing.T) {
	_, err := NewGeminiEmbedder(nil, "text-embedding-004", 768)
	assert.Error(t, err)
}
