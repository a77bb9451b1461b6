package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"nivesh-ai-backend/models"

	"github.com/google/uuid"
)

// MemoryDocumentStore records uploads in process memory when no database is
// configured
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]models.UploadedDocument
}

// NewMemoryDocumentStore creates an empty document store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[uuid.UUID]models.UploadedDocument)}
}

// Create stores doc, generating an id when it has none
func (s *MemoryDocumentStore) Create(ctx context.Context, doc *models.UploadedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	s.docs[doc.ID] = *doc
	return nil
}

// GetByID returns a stored document
func (s *MemoryDocumentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

// GetByFingerprint returns the oldest upload of the same bytes for a startup
func (s *MemoryDocumentStore) GetByFingerprint(ctx context.Context, startupID, fingerprint string) (*models.UploadedDocument, error) {
	docs, _ := s.ListByStartup(ctx, startupID)
	for i := len(docs) - 1; i >= 0; i-- {
		if docs[i].Fingerprint == fingerprint {
			return docs[i], nil
		}
	}
	return nil, ErrNotFound
}

// ListByStartup returns the documents of a startup, newest first
func (s *MemoryDocumentStore) ListByStartup(ctx context.Context, startupID string) ([]*models.UploadedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.UploadedDocument
	for _, doc := range s.docs {
		if doc.StartupID == startupID {
			d := doc
			out = append(out, &d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ DocumentStore = (*MemoryDocumentStore)(nil)
