package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nivesh-ai-backend/models"
)

// MemoryStore is an unindexed in-memory store using a linear cosine scan
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.EmbeddingVector
	index   map[string]int // id -> position in entries
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// Upsert replaces entries by id, keeping their original position, and
// appends new ids in order
func (s *MemoryStore) Upsert(_ context.Context, vectors []models.EmbeddingVector) error {
	for i, v := range vectors {
		if v.ID == "" {
			return fmt.Errorf("vector %d: %w", i, ErrEmptyID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		entry := models.EmbeddingVector{
			ID:       v.ID,
			Values:   append([]float64(nil), v.Values...),
			Metadata: copyMetadata(v.Metadata),
		}
		if pos, ok := s.index[v.ID]; ok {
			s.entries[pos] = entry
			continue
		}
		s.index[v.ID] = len(s.entries)
		s.entries = append(s.entries, entry)
	}
	return nil
}

// Query scores every entry and returns the best topK
func (s *MemoryStore) Query(_ context.Context, vector []float64, topK int, opts ...QueryOption) ([]models.DocumentChunk, error) {
	topK = ClampTopK(topK)
	o := ApplyQueryOptions(opts...)

	type scored struct {
		entry *models.EmbeddingVector
		score float64
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]scored, 0, len(s.entries))
	for i := range s.entries {
		e := &s.entries[i]
		if o.StartupID != "" {
			if id, _ := e.Metadata[models.MetaStartupID].(string); id != o.StartupID {
				continue
			}
		}
		candidates = append(candidates, scored{entry: e, score: CosineSimilarity(vector, e.Values)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]models.DocumentChunk, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, models.DocumentChunk{
			ID:         c.entry.ID,
			Text:       ChunkText(c.entry.Metadata),
			Metadata:   copyMetadata(c.entry.Metadata),
			Similarity: c.score,
		})
	}
	return results, nil
}

// Len returns the number of stored vectors
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func copyMetadata(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
