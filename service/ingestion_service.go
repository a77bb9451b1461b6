package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"nivesh-ai-backend/chunker"
	"nivesh-ai-backend/docparse"
	"nivesh-ai-backend/embedding"
	"nivesh-ai-backend/metrics"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/vectorstore"

	"golang.org/x/sync/errgroup"
)

// SourceUpload is the chunk source of content that was never saved as a file
const SourceUpload = "upload"

const defaultEmbedConcurrency = 8

var ErrStartupIDRequired = errors.New("startup id is required")

// IngestionService chunks, embeds and stores document text for retrieval
type IngestionService struct {
	embedder    embedding.Embedder
	store       vectorstore.Store
	chunkOpts   []chunker.Option
	concurrency int
}

// IngestionOption is a functional option for IngestionService
type IngestionOption func(*IngestionService)

// IngestWithEmbedder sets the embedder. Retrieval must use the same one.
func IngestWithEmbedder(e embedding.Embedder) IngestionOption {
	return func(s *IngestionService) {
		s.embedder = e
	}
}

// IngestWithStore sets the vector store
func IngestWithStore(store vectorstore.Store) IngestionOption {
	return func(s *IngestionService) {
		s.store = store
	}
}

// IngestWithChunkOptions sets the chunk window and overlap
func IngestWithChunkOptions(opts ...chunker.Option) IngestionOption {
	return func(s *IngestionService) {
		s.chunkOpts = opts
	}
}

// IngestWithConcurrency bounds parallel embedding calls
func IngestWithConcurrency(n int) IngestionOption {
	return func(s *IngestionService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(opts ...IngestionOption) *IngestionService {
	s := &IngestionService{concurrency: defaultEmbedConcurrency}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestRequest carries the files of one startup
type IngestRequest struct {
	StartupID string
	Files     []models.ProcessedFile
	Metadata  map[string]interface{} // Copied onto every chunk
}

// IngestResult counts what happened to the chunks of one call
type IngestResult struct {
	Chunks  int
	Stored  int
	Dropped int
}

// ContentFile flattens structured content into a file for Ingest
func ContentFile(content interface{}, source string) models.ProcessedFile {
	return models.ProcessedFile{
		Text:      docparse.Flatten(content),
		SavedFile: source,
		FileType:  models.FileTypeTXT,
	}
}

// Ingest chunks every non-empty file, embeds the chunks in parallel and
// upserts all valid vectors in one batch. A chunk whose embedding fails is
// dropped, never the whole call.
func (s *IngestionService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if s.embedder == nil {
		return nil, errors.New("embedder not set")
	}
	if s.store == nil {
		return nil, errors.New("vector store not set")
	}
	if strings.TrimSpace(req.StartupID) == "" {
		return nil, ErrStartupIDRequired
	}

	var chunks []models.DocumentChunk
	for _, f := range req.Files {
		text := docparse.Truncate(strings.TrimSpace(f.Text), docparse.MaxTextLength)
		if text == "" {
			continue
		}
		chunks = append(chunks, chunker.Chunk(text, chunkMetadata(req, f), s.chunkOpts...)...)
	}

	result := &IngestResult{Chunks: len(chunks)}
	if len(chunks) == 0 {
		log.Printf("[INGEST] No text to ingest for %s", req.StartupID)
		return result, nil
	}

	vectors := make([]*models.EmbeddingVector, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			values, err := s.embedder.Embed(gctx, chunk.Text)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("Warning: [INGEST] Failed to embed chunk %s: %v", chunk.ID, err)
				return nil
			}
			if err := s.validVector(values); err != nil {
				log.Printf("Warning: [INGEST] Dropping chunk %s: %v", chunk.ID, err)
				return nil
			}
			metadata := make(map[string]interface{}, len(chunk.Metadata)+1)
			for k, v := range chunk.Metadata {
				metadata[k] = v
			}
			metadata[models.MetaText] = chunk.Text
			vectors[i] = &models.EmbeddingVector{ID: chunk.ID, Values: values, Metadata: metadata}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	batch := make([]models.EmbeddingVector, 0, len(vectors))
	for _, v := range vectors {
		if v != nil {
			batch = append(batch, *v)
		}
	}
	result.Stored = len(batch)
	result.Dropped = len(chunks) - len(batch)
	metrics.EmbeddingsDropped.Add(float64(result.Dropped))

	if len(batch) > 0 {
		if err := s.store.Upsert(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to store vectors: %w", err)
		}
		metrics.ChunksIngested.Add(float64(len(batch)))
	}

	log.Printf("[INGEST] Stored %d of %d chunks for %s", result.Stored, result.Chunks, req.StartupID)
	return result, nil
}

// chunkMetadata applies caller metadata first so startupId and source
// always describe the real origin
func chunkMetadata(req IngestRequest, f models.ProcessedFile) map[string]interface{} {
	metadata := make(map[string]interface{}, len(req.Metadata)+3)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	source := f.SavedFile
	if source == "" {
		source = SourceUpload
	}
	metadata[models.MetaStartupID] = req.StartupID
	metadata[models.MetaSource] = source
	if f.FileType != "" {
		metadata[models.MetaFileType] = string(f.FileType)
	}
	return metadata
}

func (s *IngestionService) validVector(values []float64) error {
	if len(values) == 0 {
		return errors.New("empty embedding")
	}
	if dim := s.embedder.Dimension(); dim > 0 && len(values) != dim {
		return fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(values), dim)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("embedding contains NaN or Inf")
		}
	}
	return nil
}
