// Package app builds the backend's components from configuration. Every
// binary under cmd/ starts here.
package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"nivesh-ai-backend/chunker"
	"nivesh-ai-backend/config"
	"nivesh-ai-backend/docparse"
	"nivesh-ai-backend/embedding"
	"nivesh-ai-backend/oracle"
	"nivesh-ai-backend/repository"
	"nivesh-ai-backend/service"
	"nivesh-ai-backend/storage"
	"nivesh-ai-backend/vectorstore"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"
)

// App holds the wired components
type App struct {
	Config    *config.Config
	DB        *pgxpool.Pool // nil without DATABASE_URL
	Gemini    *genai.Client // nil without GEMINI_API_KEY
	Embedder  embedding.Embedder
	Vectors   vectorstore.Store
	Oracle    oracle.Oracle
	Ingestion *service.IngestionService
	Startups  *service.StartupService
}

// New connects to the configured backends and wires the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.DatabaseURL != "" {
		db, err := InitPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		a.DB = db
	}

	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
		}
		a.Gemini = client
		log.Println("Gemini client initialized")
	} else if cfg.OracleProvider == config.OracleGemini || cfg.EmbeddingProvider == config.EmbeddingGemini {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	if err := a.initEmbedder(); err != nil {
		a.Close()
		return nil, err
	}
	a.initVectors()
	a.initOracle()

	a.Ingestion = service.NewIngestionService(
		service.IngestWithEmbedder(a.Embedder),
		service.IngestWithStore(a.Vectors),
		service.IngestWithChunkOptions(chunker.WithWindow(cfg.ChunkSize), chunker.WithOverlap(cfg.ChunkOverlap)),
	)

	fileStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Println("Storage initialized")

	opts := []service.StartupServiceOption{
		service.StartupWithIngestion(a.Ingestion),
		service.StartupWithAnalysis(service.NewAnalysisService(
			service.AnalysisWithOracle(a.Oracle),
			service.AnalysisWithRetriever(service.NewRetriever(a.Embedder, a.Vectors)),
			service.AnalysisWithMaxTokens(cfg.OracleMaxTokens()),
		)),
		service.StartupWithProductTech(service.NewProductTechService(
			service.ProductTechWithOracle(a.Oracle),
			service.ProductTechWithPolish(cfg.EnableGroqAnalysis),
		)),
		service.StartupWithTeam(service.NewTeamService(a.Oracle)),
		service.StartupWithStorage(fileStorage),
		service.StartupWithParser(docparse.NewParser(docparse.WithPdfToText(cfg.PdfToTextPath))),
	}

	if a.DB != nil {
		opts = append(opts,
			service.StartupWithSignalStore(repository.NewSignalRepository(a.DB)),
			service.StartupWithJobStore(repository.NewAnalysisJobRepository(a.DB)),
			service.StartupWithDocumentStore(repository.NewDocumentRepository(a.DB)),
		)
	} else {
		signals, err := repository.NewJSONFileStore(filepath.Join(cfg.DataDir, "signals"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize signal store: %w", err)
		}
		opts = append(opts,
			service.StartupWithSignalStore(signals),
			service.StartupWithJobStore(repository.NewMemoryJobStore()),
			service.StartupWithDocumentStore(repository.NewMemoryDocumentStore()),
		)
		log.Printf("No DATABASE_URL, storing signals under %s", cfg.DataDir)
	}

	a.Startups = service.NewStartupService(opts...)
	return a, nil
}

// Close releases the database pool and Gemini client
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Gemini != nil {
		a.Gemini.Close()
	}
}

func (a *App) initEmbedder() error {
	switch a.Config.EmbeddingProvider {
	case config.EmbeddingGemini:
		e, err := embedding.NewGeminiEmbedder(a.Gemini, a.Config.GeminiEmbedModel, a.Config.EmbeddingDim)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini embedder: %w", err)
		}
		a.Embedder = e
	default:
		a.Embedder = embedding.NewHashEmbedder(a.Config.EmbeddingDim)
	}
	log.Printf("Embedder: %s (%d dimensions)", a.Config.EmbeddingProvider, a.Embedder.Dimension())
	return nil
}

func (a *App) initVectors() {
	if a.Config.VectorStore == config.VectorStorePgvector && a.DB != nil {
		a.Vectors = repository.NewDocumentChunkRepository(a.DB, a.Embedder.Dimension())
		log.Println("Vector store: pgvector")
		return
	}
	a.Vectors = vectorstore.NewMemoryStore()
	log.Println("Vector store: memory")
}

func (a *App) initOracle() {
	switch a.Config.OracleProvider {
	case config.OracleGemini:
		a.Oracle = oracle.NewGeminiOracle(a.Gemini, a.Config.GeminiModel)
	default:
		a.Oracle = oracle.NewGroqOracle(a.Config.GroqAPIURL, a.Config.GroqAPIKey, a.Config.GroqModel,
			oracle.WithTimeout(a.Config.OracleTimeout),
			oracle.WithRateLimit(a.Config.OracleRateLimit),
		)
	}
	if !oracle.Ready(a.Oracle) {
		log.Printf("Warning: %s oracle credentials not configured, analyses will use fallback text", a.Oracle.Name())
	}
}

// InitPostgres opens a pool, checks it and enables pgvector
func InitPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
		log.Println("This may be normal if extension is already installed or requires superuser privileges")
	} else {
		log.Println("pgvector extension enabled")
	}

	log.Println("Postgres connection established with pgvector support")
	return pool, nil
}
