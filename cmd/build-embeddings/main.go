package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"nivesh-ai-backend/app"
	"nivesh-ai-backend/config"
	"nivesh-ai-backend/docparse"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/repository"
	"nivesh-ai-backend/service"
)

func main() {
	dir := flag.String("dir", "./documents", "directory of startup documents")
	startupID := flag.String("startup", "", "startup id the documents belong to (required)")
	delay := flag.Duration("delay", 0, "pause between files, for rate-limited embedding providers")
	force := flag.Bool("force", false, "ingest even if the startup already has chunks")
	flag.Parse()

	if *startupID == "" {
		log.Fatal("-startup is required")
	}

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Check if already processed
	if chunks, ok := a.Vectors.(*repository.DocumentChunkRepository); ok && !*force {
		count, err := chunks.CountByStartup(ctx, *startupID)
		if err != nil {
			log.Printf("⚠️  Error checking existing chunks: %v", err)
		} else if count > 0 {
			log.Printf("⏭️  Skipping %s (already processed: %d chunks, use -force to add more)", *startupID, count)
			return
		}
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read directory: %v", err)
	}

	parser := docparse.NewParser(docparse.WithPdfToText(cfg.PdfToTextPath))
	stored := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		filePath := filepath.Join(*dir, filename)
		log.Printf("\n📄 Processing: %s", filename)

		data, err := os.ReadFile(filePath)
		if err != nil {
			log.Printf("❌ Error reading %s: %v", filename, err)
			continue
		}

		fileType := docparse.DetectFileType("", filename)
		if fileType == models.FileTypeUnknown || fileType == models.FileTypeAudio {
			log.Printf("   ⚠️  Warning: No text to extract, skipping %s", filename)
			continue
		}
		log.Printf("   Type: %s", fileType)

		text, err := parser.Parse(ctx, data, fileType, filename)
		if err != nil {
			log.Printf("   ❌ Error reading document: %v", err)
			continue
		}

		result, err := a.Ingestion.Ingest(ctx, service.IngestRequest{
			StartupID: *startupID,
			Files:     []models.ProcessedFile{{Text: text, SavedFile: filePath, FileType: fileType, Filename: filename}},
			Metadata:  map[string]interface{}{models.MetaDocument: docparse.Fingerprint(data)},
		})
		if err != nil {
			log.Printf("   ❌ Error ingesting document: %v", err)
			continue
		}
		stored += result.Stored
		log.Printf("   ✅ Successfully processed %s (%d of %d chunks, %d dropped)", filename, result.Stored, result.Chunks, result.Dropped)

		if *delay > 0 {
			time.Sleep(*delay)
		}
	}

	log.Printf("\n✅ Embedding build complete! %d chunks stored for %s", stored, *startupID)
}
