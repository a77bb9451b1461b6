package oracle

import (
	"context"
	"errors"
	"strings"

	"nivesh-ai-backend/metrics"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

const (
	geminiProvider     = "gemini"
	DefaultGeminiModel = "gemini-1.5-flash"
)

// GeminiOracle completes prompts with a Gemini generative model
type GeminiOracle struct {
	client *genai.Client
	model  string
}

// NewGeminiOracle creates a Gemini oracle. A nil client leaves the oracle
// unconfigured.
func NewGeminiOracle(client *genai.Client, model string) *GeminiOracle {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiOracle{client: client, model: model}
}

// Name returns the provider name
func (o *GeminiOracle) Name() string {
	return geminiProvider
}

// Configured reports whether a client was supplied
func (o *GeminiOracle) Configured() bool {
	return o.client != nil
}

// Complete generates one response and concatenates its text parts
func (o *GeminiOracle) Complete(ctx context.Context, req Request) (string, error) {
	if o.client == nil {
		metrics.ObserveOracle(geminiProvider, metrics.OutcomeUnavailable)
		return "", ErrNotConfigured
	}

	model := o.client.GenerativeModel(o.model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		metrics.ObserveOracle(geminiProvider, metrics.OutcomeError)
		te := &TransportError{Provider: geminiProvider, Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			te.StatusCode = apiErr.Code
		}
		return "", te
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		metrics.ObserveOracle(geminiProvider, metrics.OutcomeError)
		return "", ErrEmptyResponse
	}
	metrics.ObserveOracle(geminiProvider, metrics.OutcomeSuccess)
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}

var _ Oracle = (*GeminiOracle)(nil)
