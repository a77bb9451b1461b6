package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"nivesh-ai-backend/chunker"
	"nivesh-ai-backend/embedding"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyEmbedder fails every call whose text contains fail
type flakyEmbedder struct {
	inner embedding.Embedder
	fail  string
	calls atomic.Int32
}

func (e *flakyEmbedder) Dimension() int { return e.inner.Dimension() }

func (e *flakyEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.calls.Add(1)
	if e.fail != "" && strings.Contains(text, e.fail) {
		return nil, errors.New("embedding quota exceeded")
	}
	return e.inner.Embed(ctx, text)
}

// shortEmbedder returns vectors of the wrong length
type shortEmbedder struct{}

func (shortEmbedder) Dimension() int { return 64 }

func (shortEmbedder) Embed(context.Context, string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

func TestIngestStoresChunksWithMetadata(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := NewIngestionService(
		IngestWithEmbedder(embedding.NewHashEmbedder(64)),
		IngestWithStore(store),
	)

	res, err := svc.Ingest(context.Background(), IngestRequest{
		StartupID: "ledgerloop",
		Files: []models.ProcessedFile{
			{Text: "LedgerLoop automates invoice reconciliation.", SavedFile: "startups/ledgerloop/deck.pdf", FileType: models.FileTypePDF},
			{Text: "   ", FileType: models.FileTypeTXT},
		},
		Metadata: map[string]interface{}{"sector": "fintech", models.MetaStartupID: "spoofed"},
	})
	require.NoError(t, err)
	assert.Equal(t, &IngestResult{Chunks: 1, Stored: 1, Dropped: 0}, res)
	require.Equal(t, 1, store.Len())

	hits, err := store.Query(context.Background(), make([]float64, 64), 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	md := hits[0].Metadata
	assert.Equal(t, "ledgerloop", md[models.MetaStartupID])
	assert.Equal(t, "startups/ledgerloop/deck.pdf", md[models.MetaSource])
	assert.Equal(t, "pdf", md[models.MetaFileType])
	assert.Equal(t, "fintech", md["sector"])
	assert.Equal(t, "LedgerLoop automates invoice reconciliation.", hits[0].Text)
}

func TestIngestDropsFailedChunks(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	embedder := &flakyEmbedder{inner: embedding.NewHashEmbedder(64), fail: "poison"}
	svc := NewIngestionService(
		IngestWithEmbedder(embedder),
		IngestWithStore(store),
		IngestWithChunkOptions(chunker.WithWindow(chunker.MinWindow), chunker.WithOverlap(0)),
		IngestWithConcurrency(2),
	)

	words := make([]string, 120)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	words[60] = "poison"
	text := strings.Join(words, " ")
	res, err := svc.Ingest(context.Background(), IngestRequest{
		StartupID: "acme",
		Files:     []models.ProcessedFile{ContentFile(text, SourceUpload)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 2, store.Len())
	assert.EqualValues(t, 3, embedder.calls.Load())
}

func TestIngestRejectsWrongDimension(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := NewIngestionService(IngestWithEmbedder(shortEmbedder{}), IngestWithStore(store))

	res, err := svc.Ingest(context.Background(), IngestRequest{
		StartupID: "acme",
		Files:     []models.ProcessedFile{{Text: "hello", FileType: models.FileTypeTXT}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	assert.Zero(t, store.Len())
}

func TestIngestRequiresStartupID(t *testing.T) {
	svc := NewIngestionService(
		IngestWithEmbedder(embedding.NewHashEmbedder(64)),
		IngestWithStore(vectorstore.NewMemoryStore()),
	)
	_, err := svc.Ingest(context.Background(), IngestRequest{StartupID: " "})
	assert.ErrorIs(t, err, ErrStartupIDRequired)
}

func TestIngestEmptyFiles(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := NewIngestionService(IngestWithEmbedder(embedding.NewHashEmbedder(64)), IngestWithStore(store))

	res, err := svc.Ingest(context.Background(), IngestRequest{StartupID: "acme"})
	require.NoError(t, err)
	assert.Zero(t, res.Chunks)
	assert.Zero(t, store.Len())
}

func TestContentFileFlattensStructuredContent(t *testing.T) {
	f := ContentFile(map[string]interface{}{"headline": "Seed round closed"}, SourceUpload)
	assert.Equal(t, models.FileTypeTXT, f.FileType)
	assert.Equal(t, SourceUpload, f.SavedFile)
	assert.Contains(t, f.Text, "Seed round closed")
}

func TestRetrieveFiltersAndScopes(t *testing.T) {
	r := seededRetriever(t, map[string]string{
		"ledgerloop": "LedgerLoop reconciles invoices",
		"farmsense":  "FarmSense sells soil sensors",
	})

	all := r.Retrieve(context.Background(), "invoices", 0)
	assert.Len(t, all, 2)

	scoped := r.Retrieve(context.Background(), "invoices", 10, vectorstore.WithStartupID("farmsense"))
	require.Len(t, scoped, 1)
	assert.Equal(t, "farmsense-1", scoped[0].ID)
}

func TestRetrieveEmptyQueryAndNilRetriever(t *testing.T) {
	r := seededRetriever(t, map[string]string{"acme": "text"})
	assert.Empty(t, r.Retrieve(context.Background(), "   ", 5))

	var nilRetriever *Retriever
	assert.NotNil(t, nilRetriever.Retrieve(context.Background(), "q", 5))
	assert.Empty(t, nilRetriever.Retrieve(context.Background(), "q", 5))
}

func TestRetrieveSkipsChunksWithoutText(t *testing.T) {
	embedder := embedding.NewHashEmbedder(64)
	store := vectorstore.NewMemoryStore()
	values, err := embedder.Embed(context.Background(), "x")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(context.Background(), []models.EmbeddingVector{
		{ID: "a", Values: values, Metadata: map[string]interface{}{models.MetaText: "kept"}},
		{ID: "b", Values: values, Metadata: map[string]interface{}{}},
	}))

	got := NewRetriever(embedder, store).Retrieve(context.Background(), "x", 5)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}
