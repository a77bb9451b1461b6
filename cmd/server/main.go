package main

import (
	"context"
	"log"

	"nivesh-ai-backend/app"
	"nivesh-ai-backend/config"
	"nivesh-ai-backend/handlers"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	r := handlers.NewRouter(a.Startups, cfg.MaxUploadBytes)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
