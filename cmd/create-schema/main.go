package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"nivesh-ai-backend/app"
	"nivesh-ai-backend/config"
	"nivesh-ai-backend/embedding"
)

func main() {
	reset := flag.Bool("reset", false, "drop existing tables first (development only)")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := app.InitPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	dim := embedding.ClampDimension(cfg.EmbeddingDim)

	if *reset {
		for _, table := range []string{"document_chunks", "startup_signals", "uploaded_documents", "analysis_jobs"} {
			if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
				log.Fatalf("Failed to drop %s: %v", table, err)
			}
			log.Printf("✓ Dropped existing %s table (if any)", table)
		}
	}

	tables := []struct {
		name string
		sql  string
	}{
		{
			name: "document_chunks",
			sql: fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS document_chunks (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL,
    startup_id TEXT NOT NULL DEFAULT '',
    chunk_text TEXT NOT NULL,
    metadata JSONB DEFAULT '{}'::jsonb,

    -- NULL for zero vectors, which have no direction
    embedding vector(%d),

    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);`, dim),
		},
		{
			name: "startup_signals",
			sql: `
CREATE TABLE IF NOT EXISTS startup_signals (
    kind VARCHAR(64) NOT NULL,
    startup_id TEXT NOT NULL,
    payload JSONB NOT NULL,
    updated_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (kind, startup_id)
);`,
		},
		{
			name: "uploaded_documents",
			sql: `
CREATE TABLE IF NOT EXISTS uploaded_documents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    startup_id TEXT NOT NULL,
    field VARCHAR(32) NOT NULL DEFAULT '',
    filename TEXT NOT NULL,
    mime_type VARCHAR(255) NOT NULL DEFAULT '',
    file_type VARCHAR(16) NOT NULL,
    size BIGINT NOT NULL,
    storage_path TEXT NOT NULL,
    fingerprint CHAR(64) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    CONSTRAINT uploaded_documents_fingerprint_unique UNIQUE (startup_id, fingerprint)
);`,
		},
		{
			name: "analysis_jobs",
			sql: `
CREATE TABLE IF NOT EXISTS analysis_jobs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    startup_id TEXT NOT NULL,
    query TEXT NOT NULL,
    status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'in_progress', 'completed', 'failed')),
    current_step TEXT,
    steps JSONB NOT NULL DEFAULT '[]'::jsonb,
    result JSONB,
    error_message TEXT,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    completed_at TIMESTAMP
);`,
		},
	}

	for _, t := range tables {
		if _, err := pool.Exec(ctx, t.sql); err != nil {
			log.Fatalf("Failed to create %s table: %v", t.name, err)
		}
		log.Printf("✓ Created %s table", t.name)
	}

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Vector similarity search (HNSW)",
			sql: `CREATE INDEX IF NOT EXISTS idx_chunks_embedding_hnsw ON document_chunks
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
		},
		{
			name: "Chunks by startup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_chunks_startup_id ON document_chunks(startup_id);",
		},
		{
			name: "Chunk metadata JSONB filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_chunks_metadata_gin ON document_chunks USING gin (metadata);",
		},
		{
			name: "Signals by kind",
			sql:  "CREATE INDEX IF NOT EXISTS idx_signals_kind ON startup_signals(kind);",
		},
		{
			name: "Uploads by startup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_uploads_startup_id ON uploaded_documents(startup_id, created_at);",
		},
		{
			name: "Jobs by startup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_jobs_startup_id ON analysis_jobs(startup_id);",
		},
	}

	created := 0
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
			continue
		}
		created++
		log.Printf("✓ Created index: %s", idx.name)
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Tables: document_chunks, startup_signals, uploaded_documents, analysis_jobs")
	fmt.Printf("   Embedding dimension: %d\n", dim)
	fmt.Printf("   Indexes: %d indexes created\n", created)
}
