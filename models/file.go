package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadedDocument represents a stored upload belonging to a startup
type UploadedDocument struct {
	ID          uuid.UUID `json:"id"`
	StartupID   string    `json:"startup_id"`
	Field       string    `json:"field"` // pitchDeck, transcript, email, cv
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	FileType    FileType  `json:"file_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	Fingerprint string    `json:"fingerprint"` // blake2b-256 of the raw bytes
	CreatedAt   time.Time `json:"created_at"`
}
