package service

import (
	"context"
	"log"
	"strings"

	"nivesh-ai-backend/docparse"
	"nivesh-ai-backend/embedding"
	"nivesh-ai-backend/metrics"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/vectorstore"
)

// MaxQueryLength caps queries before embedding and prompting
const MaxQueryLength = 1000

// Retriever finds the stored chunks closest to a query. Retrieval is
// advisory: every failure gives an empty result.
type Retriever struct {
	embedder embedding.Embedder
	store    vectorstore.Store
}

// NewRetriever creates a retriever. embedder must be the one used at ingestion.
func NewRetriever(embedder embedding.Embedder, store vectorstore.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns up to topK chunks with a non-empty id and text. topK 0
// means vectorstore.DefaultTopK.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, opts ...vectorstore.QueryOption) []models.DocumentChunk {
	out := []models.DocumentChunk{}
	if r == nil || r.embedder == nil || r.store == nil {
		return out
	}

	query = docparse.Truncate(strings.TrimSpace(query), MaxQueryLength)
	if query == "" {
		return out
	}
	if topK == 0 {
		topK = vectorstore.DefaultTopK
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("Warning: [RAG] Failed to embed query: %v", err)
		return out
	}

	chunks, err := r.store.Query(ctx, vec, vectorstore.ClampTopK(topK), opts...)
	if err != nil {
		log.Printf("Warning: [RAG] Vector store query failed: %v", err)
		return out
	}

	for _, c := range chunks {
		if c.ID == "" || strings.TrimSpace(c.Text) == "" {
			continue
		}
		out = append(out, c)
	}
	metrics.RetrievedChunks.Observe(float64(len(out)))
	log.Printf("[RAG] Retrieved %d chunks", len(out))
	return out
}
