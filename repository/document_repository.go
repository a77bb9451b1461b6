package repository

import (
	"context"
	"errors"
	"fmt"

	"nivesh-ai-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentStore records uploaded documents
type DocumentStore interface {
	Create(ctx context.Context, doc *models.UploadedDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedDocument, error)
	GetByFingerprint(ctx context.Context, startupID, fingerprint string) (*models.UploadedDocument, error)
	ListByStartup(ctx context.Context, startupID string) ([]*models.UploadedDocument, error)
}

// DocumentRepository handles database operations for uploaded documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, startup_id, field, filename, mime_type, file_type, size, storage_path, fingerprint, created_at`

func scanDocument(row pgx.Row) (*models.UploadedDocument, error) {
	doc := &models.UploadedDocument{}
	err := row.Scan(
		&doc.ID,
		&doc.StartupID,
		&doc.Field,
		&doc.Filename,
		&doc.MimeType,
		&doc.FileType,
		&doc.Size,
		&doc.StoragePath,
		&doc.Fingerprint,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Create creates a new document record. A zero ID is generated.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.UploadedDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	query := `
		INSERT INTO uploaded_documents (
			id, startup_id, field, filename, mime_type, file_type, size, storage_path, fingerprint
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.StartupID,
		doc.Field,
		doc.Filename,
		doc.MimeType,
		doc.FileType,
		doc.Size,
		doc.StoragePath,
		doc.Fingerprint,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create uploaded document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM uploaded_documents WHERE id = $1`
	return scanDocument(r.db.QueryRow(ctx, query, id))
}

// GetByFingerprint finds an earlier upload of the same bytes for a startup
func (r *DocumentRepository) GetByFingerprint(ctx context.Context, startupID, fingerprint string) (*models.UploadedDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM uploaded_documents
		WHERE startup_id = $1 AND fingerprint = $2
		ORDER BY created_at ASC
		LIMIT 1`
	return scanDocument(r.db.QueryRow(ctx, query, startupID, fingerprint))
}

// ListByStartup retrieves all documents of a startup, newest first
func (r *DocumentRepository) ListByStartup(ctx context.Context, startupID string) ([]*models.UploadedDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM uploaded_documents
		WHERE startup_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.UploadedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan uploaded document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

var _ DocumentStore = (*DocumentRepository)(nil)
