package models

// Metadata keys attached to every stored chunk
const (
	MetaText       = "text"
	MetaStartupID  = "startupId"
	MetaSource     = "source"
	MetaChunkIndex = "chunkIndex"
	MetaChunkStart = "chunkStart"
	MetaChunkEnd   = "chunkEnd"
	MetaFileType   = "fileType"
	MetaDocument   = "documentFingerprint"
)

// DocumentChunk represents a bounded slice of a document's text, the unit of
// embedding and retrieval
type DocumentChunk struct {
	ID         string                 `json:"id"`
	Text       string                 `json:"text"`
	Metadata   map[string]interface{} `json:"metadata"`
	Similarity float64                `json:"similarity,omitempty"` // Cosine similarity to the query
}

// EmbeddingVector ties a chunk id to its vector and metadata
type EmbeddingVector struct {
	ID       string                 `json:"id"`
	Values   []float64              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// FileType is the coarse kind of an uploaded artifact
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeTXT     FileType = "txt"
	FileTypePPTX    FileType = "pptx"
	FileTypeHTML    FileType = "html"
	FileTypeAudio   FileType = "audio"
	FileTypeUnknown FileType = "unknown"
)

// IsDeck reports whether the file type can carry a pitch deck
func (f FileType) IsDeck() bool {
	return f == FileTypePDF || f == FileTypePPTX
}

// ProcessedFile is the output of document acquisition: plain text plus where
// the raw bytes ended up
type ProcessedFile struct {
	Text      string   `json:"text"`
	SavedFile string   `json:"savedFile,omitempty"`
	FileType  FileType `json:"fileType"`
	Field     string   `json:"field,omitempty"` // Upload field (pitchDeck, transcript, email, cv)
	Filename  string   `json:"filename,omitempty"`
}

// Upload fields of the analyze form
const (
	FieldPitchDeck  = "pitchDeck"
	FieldTranscript = "transcript"
	FieldEmail      = "email"
	FieldCV         = "cv"
)

// UploadFields lists the accepted upload fields in form order
var UploadFields = []string{FieldPitchDeck, FieldTranscript, FieldEmail, FieldCV}
