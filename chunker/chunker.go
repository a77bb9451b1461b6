// Package chunker splits plain text into overlapping word windows.
package chunker

import (
	"strings"

	"nivesh-ai-backend/models"

	"github.com/google/uuid"
)

const (
	DefaultWindow  = 500
	DefaultOverlap = 50
	MinWindow      = 50
	MaxWindow      = 2000
)

type options struct {
	window  int
	overlap int
	idFunc  func() string
}

// Option configures Chunk
type Option func(*options)

// WithWindow sets the window size in words, clamped to [MinWindow, MaxWindow]
func WithWindow(words int) Option {
	return func(o *options) {
		o.window = words
	}
}

// WithOverlap sets the number of words shared by consecutive windows,
// clamped to [0, window-1]
func WithOverlap(words int) Option {
	return func(o *options) {
		o.overlap = words
	}
}

// WithIDFunc replaces the uuid generator used for chunk ids
func WithIDFunc(f func() string) Option {
	return func(o *options) {
		o.idFunc = f
	}
}

// Chunk splits text on whitespace into windows of words. Each chunk carries a
// copy of metadata plus chunkIndex, chunkStart and chunkEnd word offsets.
// Empty or whitespace-only text yields no chunks.
func Chunk(text string, metadata map[string]interface{}, opts ...Option) []models.DocumentChunk {
	o := options{
		window:  DefaultWindow,
		overlap: DefaultOverlap,
		idFunc:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	window := clamp(o.window, MinWindow, MaxWindow)
	overlap := clamp(o.overlap, 0, window-1)
	step := window - overlap

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []models.DocumentChunk
	for start := 0; start < len(words); start += step {
		end := start + window
		if end > len(words) {
			end = len(words)
		}

		meta := make(map[string]interface{}, len(metadata)+3)
		for k, v := range metadata {
			meta[k] = v
		}
		meta[models.MetaChunkIndex] = len(chunks)
		meta[models.MetaChunkStart] = start
		meta[models.MetaChunkEnd] = end

		chunks = append(chunks, models.DocumentChunk{
			ID:       o.idFunc(),
			Text:     strings.Join(words[start:end], " "),
			Metadata: meta,
		})

		if end == len(words) {
			break
		}
	}
	return chunks
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
