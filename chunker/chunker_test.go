package chunker

import (
	"fmt"
	"strings"
	"testing"

	"nivesh-ai-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func sequentialIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("chunk-%d", n)
	})
}

func TestChunkEmptyInput(t *testing.T) {
	assert.Empty(t, Chunk("", nil))
	assert.Empty(t, Chunk("   \n\t ", map[string]interface{}{"a": 1}))
}

func TestChunkShortTextIsSingleChunk(t *testing.T) {
	chunks := Chunk("seed stage fintech   startup", map[string]interface{}{"startupId": "acme"})
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.Equal(t, "seed stage fintech startup", c.Text)
	assert.Equal(t, "acme", c.Metadata["startupId"])
	assert.Equal(t, 0, c.Metadata[models.MetaChunkIndex])
	assert.Equal(t, 0, c.Metadata[models.MetaChunkStart])
	assert.Equal(t, 4, c.Metadata[models.MetaChunkEnd])
	assert.NotEmpty(t, c.ID)
}

func TestChunkJustOverOneWindowWithOverlap(t *testing.T) {
	// 55 words with window 50 / overlap 10 needs two windows
	chunks := Chunk(words(55), nil, WithWindow(50), WithOverlap(10))
	require.Len(t, chunks, 2)
	assert.Equal(t, 40, chunks[1].Metadata[models.MetaChunkStart])
	assert.Equal(t, 55, chunks[1].Metadata[models.MetaChunkEnd])
}

func TestChunkWindowsAndOffsets(t *testing.T) {
	chunks := Chunk(words(1200), nil, sequentialIDs())
	require.Len(t, chunks, 3)

	wantStarts := []int{0, 450, 900}
	wantEnds := []int{500, 950, 1200}
	for i, c := range chunks {
		assert.Equal(t, i, c.Metadata[models.MetaChunkIndex])
		assert.Equal(t, wantStarts[i], c.Metadata[models.MetaChunkStart])
		assert.Equal(t, wantEnds[i], c.Metadata[models.MetaChunkEnd])
		assert.Equal(t, fmt.Sprintf("chunk-%d", i+1), c.ID)
	}

	// overlap: the second chunk starts with the last 50 words of the first
	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	assert.Equal(t, first[450:], second[:50])
}

func TestChunkOffsetsMonotonicAndCoverAllWords(t *testing.T) {
	for _, n := range []int{1, 49, 50, 51, 499, 500, 501, 2345} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			chunks := Chunk(words(n), nil, WithWindow(120), WithOverlap(30))
			require.NotEmpty(t, chunks)

			prevStart, prevEnd := -1, -1
			for _, c := range chunks {
				start := c.Metadata[models.MetaChunkStart].(int)
				end := c.Metadata[models.MetaChunkEnd].(int)
				assert.GreaterOrEqual(t, start, prevStart)
				assert.GreaterOrEqual(t, end, prevEnd)
				assert.Greater(t, end, start)
				prevStart, prevEnd = start, end
			}
			assert.Equal(t, n, prevEnd)
		})
	}
}

func TestChunkClampsParameters(t *testing.T) {
	// window below minimum is raised to 50, overlap above window-1 is lowered to 49
	chunks := Chunk(words(60), nil, WithWindow(5), WithOverlap(500))
	require.Len(t, chunks, 11)
	assert.Equal(t, 50, chunks[0].Metadata[models.MetaChunkEnd])
	assert.Equal(t, 1, chunks[1].Metadata[models.MetaChunkStart])

	chunks = Chunk(words(2500), nil, WithWindow(10000), WithOverlap(-3))
	require.Len(t, chunks, 2)
	assert.Equal(t, 2000, chunks[0].Metadata[models.MetaChunkEnd])
	assert.Equal(t, 2000, chunks[1].Metadata[models.MetaChunkStart])
}

func TestChunkDeterministic(t *testing.T) {
	text := words(777)
	a := Chunk(text, map[string]interface{}{"source": "deck.pdf"}, WithWindow(100), WithOverlap(20))
	b := Chunk(text, map[string]interface{}{"source": "deck.pdf"}, WithWindow(100), WithOverlap(20))
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Text, b[i].Text)
		assert.Equal(t, a[i].Metadata, b[i].Metadata)
	}
}

func TestChunkDoesNotShareMetadata(t *testing.T) {
	meta := map[string]interface{}{"startupId": "acme"}
	chunks := Chunk(words(600), meta)
	require.Len(t, chunks, 2)

	chunks[0].Metadata["startupId"] = "changed"
	assert.Equal(t, "acme", chunks[1].Metadata["startupId"])
	assert.Equal(t, "acme", meta["startupId"])
	assert.NotContains(t, meta, models.MetaChunkIndex)
}
