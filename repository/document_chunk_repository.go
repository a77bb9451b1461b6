package repository

import (
	"context"
	"fmt"
	"strings"

	"nivesh-ai-backend/embedding"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/vectorstore"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentChunkRepository stores chunk vectors in a pgvector column. Chunks
// with a zero vector keep a NULL embedding and always score 0.
type DocumentChunkRepository struct {
	db  *pgxpool.Pool
	dim int
}

// NewDocumentChunkRepository creates a chunk repository for vectors of dim floats
func NewDocumentChunkRepository(db *pgxpool.Pool, dim int) *DocumentChunkRepository {
	return &DocumentChunkRepository{db: db, dim: dim}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(embedding))
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Upsert writes all vectors in one batch. Existing ids keep their insertion
// sequence so tie order is unchanged.
func (r *DocumentChunkRepository) Upsert(ctx context.Context, vectors []models.EmbeddingVector) error {
	if len(vectors) == 0 {
		return nil
	}
	for i, v := range vectors {
		if v.ID == "" {
			return fmt.Errorf("vector %d: %w", i, vectorstore.ErrEmptyID)
		}
		if len(v.Values) != r.dim {
			return fmt.Errorf("vector %s has %d dimensions, want %d: %w", v.ID, len(v.Values), r.dim, vectorstore.ErrDimensionMismatch)
		}
	}

	query := `
		INSERT INTO document_chunks (id, startup_id, chunk_text, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (id) DO UPDATE SET
			startup_id = EXCLUDED.startup_id,
			chunk_text = EXCLUDED.chunk_text,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()`

	batch := &pgx.Batch{}
	for _, v := range vectors {
		startupID, _ := v.Metadata[models.MetaStartupID].(string)
		var vec *string
		if !embedding.IsZero(v.Values) {
			s := formatVector(v.Values)
			vec = &s
		}
		metadata := v.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		batch.Queue(query, v.ID, startupID, vectorstore.ChunkText(v.Metadata), metadata, vec)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for range vectors {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert document chunk: %w", err)
		}
	}
	return nil
}

// Query orders by cosine similarity, then insertion sequence
func (r *DocumentChunkRepository) Query(ctx context.Context, vector []float64, topK int, opts ...vectorstore.QueryOption) ([]models.DocumentChunk, error) {
	topK = vectorstore.ClampTopK(topK)
	o := vectorstore.ApplyQueryOptions(opts...)

	if len(vector) != r.dim {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w", len(vector), r.dim, vectorstore.ErrDimensionMismatch)
	}

	similarity := "0::float8"
	args := []interface{}{}
	if !embedding.IsZero(vector) {
		args = append(args, formatVector(vector))
		similarity = fmt.Sprintf("CASE WHEN embedding IS NULL THEN 0 ELSE 1 - (embedding <=> $%d::vector) END", len(args))
	}

	filter := "TRUE"
	if o.StartupID != "" {
		args = append(args, o.StartupID)
		filter = fmt.Sprintf("startup_id = $%d", len(args))
	}
	args = append(args, topK)

	query := fmt.Sprintf(`
		SELECT id, chunk_text, metadata, %s AS similarity
		FROM document_chunks
		WHERE %s
		ORDER BY similarity DESC, seq ASC
		LIMIT $%d`, similarity, filter, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}
	defer rows.Close()

	chunks := []models.DocumentChunk{}
	for rows.Next() {
		var chunk models.DocumentChunk
		if err := rows.Scan(&chunk.ID, &chunk.Text, &chunk.Metadata, &chunk.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan document chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document chunks: %w", err)
	}
	return chunks, nil
}

// CountByStartup returns how many chunks are stored for a startup
func (r *DocumentChunkRepository) CountByStartup(ctx context.Context, startupID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks WHERE startup_id = $1`, startupID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count document chunks: %w", err)
	}
	return n, nil
}

var _ vectorstore.Store = (*DocumentChunkRepository)(nil)
