package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vector store backends
const (
	VectorStoreMemory   = "memory"
	VectorStorePgvector = "pgvector"
)

// Embedding providers
const (
	EmbeddingHash   = "hash"
	EmbeddingGemini = "gemini"
)

// Oracle providers
const (
	OracleGroq   = "groq"
	OracleGemini = "gemini"
)

// Config holds every runtime setting of the backend
type Config struct {
	Port        string
	DataDir     string
	DatabaseURL string // Empty means JSON files and in-memory stores

	VectorStore       string
	EmbeddingProvider string
	EmbeddingDim      int

	OracleProvider     string
	GroqAPIURL         string
	GroqAPIKey         string
	GroqModel          string
	GroqMaxTokens      int
	GeminiAPIKey       string
	GeminiModel        string
	GeminiEmbedModel   string
	OracleTimeout      time.Duration
	OracleRateLimit    float64 // Requests per second, 0 disables limiting
	EnableGroqAnalysis bool

	ChunkSize      int
	ChunkOverlap   int
	MaxUploadBytes int64
	PdfToTextPath  string
}

// LoadEnv loads a .env file from the working directory, then from the project
// root when running from cmd/<tool>/
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		VectorStore:        strings.ToLower(getEnv("VECTOR_STORE", VectorStoreMemory)),
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", EmbeddingHash)),
		OracleProvider:     strings.ToLower(getEnv("ORACLE_PROVIDER", OracleGroq)),
		GroqAPIURL:         os.Getenv("GROQ_API_URL"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiEmbedModel:   getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		EnableGroqAnalysis: getEnv("ENABLE_GROQ_ANALYSIS", "false") == "true",
		PdfToTextPath:      getEnv("PDFTOTEXT_PATH", "pdftotext"),
	}

	var err error
	if cfg.EmbeddingDim, err = getInt("EMBEDDING_DIM", 128); err != nil {
		return nil, err
	}
	if cfg.GroqMaxTokens, err = getInt("GROQ_MAX_TOKENS", 2000); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getInt("CHUNK_SIZE", 500); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getInt("CHUNK_OVERLAP", 50); err != nil {
		return nil, err
	}
	maxUpload, err := getInt("MAX_UPLOAD_BYTES", 20*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	timeout := getEnv("ORACLE_TIMEOUT", "60s")
	if cfg.OracleTimeout, err = time.ParseDuration(timeout); err != nil {
		return nil, fmt.Errorf("invalid ORACLE_TIMEOUT %q: %w", timeout, err)
	}
	rps := getEnv("ORACLE_RATE_LIMIT", "2")
	if cfg.OracleRateLimit, err = strconv.ParseFloat(rps, 64); err != nil {
		return nil, fmt.Errorf("invalid ORACLE_RATE_LIMIT %q: %w", rps, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.VectorStore {
	case VectorStoreMemory, VectorStorePgvector:
	default:
		return fmt.Errorf("unknown VECTOR_STORE: %s", c.VectorStore)
	}
	if c.VectorStore == VectorStorePgvector && c.DatabaseURL == "" {
		return fmt.Errorf("VECTOR_STORE=pgvector requires DATABASE_URL")
	}
	switch c.EmbeddingProvider {
	case EmbeddingHash, EmbeddingGemini:
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER: %s", c.EmbeddingProvider)
	}
	switch c.OracleProvider {
	case OracleGroq, OracleGemini:
	default:
		return fmt.Errorf("unknown ORACLE_PROVIDER: %s", c.OracleProvider)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	return nil
}

// OracleMaxTokens caps the analysis token budget at 2000
func (c *Config) OracleMaxTokens() int {
	if c.GroqMaxTokens <= 0 || c.GroqMaxTokens > 2000 {
		return 2000
	}
	return c.GroqMaxTokens
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
