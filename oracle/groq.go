package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"nivesh-ai-backend/metrics"

	"golang.org/x/time/rate"
)

const (
	groqProvider          = "groq"
	DefaultGroqModel      = "llama-3.1-70b-versatile"
	defaultTimeout        = 60 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	maxErrorBody          = 500
)

// GroqOracle calls an OpenAI-compatible chat completions endpoint. The URL is
// the full endpoint, not a base.
type GroqOracle struct {
	apiURL         string
	apiKey         string
	model          string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
}

// GroqOption is a functional option for GroqOracle
type GroqOption func(*GroqOracle)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) GroqOption {
	return func(o *GroqOracle) {
		o.client = c
	}
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(d time.Duration) GroqOption {
	return func(o *GroqOracle) {
		if d > 0 {
			o.client = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit throttles requests to rps per second. 0 disables limiting.
func WithRateLimit(rps float64) GroqOption {
	return func(o *GroqOracle) {
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			o.limiter = nil
		}
	}
}

// WithRetry sets the attempt count and first backoff, doubling after each try
func WithRetry(maxRetries int, initialBackoff time.Duration) GroqOption {
	return func(o *GroqOracle) {
		if maxRetries > 0 {
			o.maxRetries = maxRetries
		}
		if initialBackoff >= 0 {
			o.initialBackoff = initialBackoff
		}
	}
}

// NewGroqOracle creates a Groq client. Empty model means the default.
func NewGroqOracle(apiURL, apiKey, model string, opts ...GroqOption) *GroqOracle {
	if model == "" {
		model = DefaultGroqModel
	}
	o := &GroqOracle{
		apiURL:         strings.TrimSpace(apiURL),
		apiKey:         strings.TrimSpace(apiKey),
		model:          model,
		client:         &http.Client{Timeout: defaultTimeout},
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the provider name
func (o *GroqOracle) Name() string {
	return groqProvider
}

// Configured reports whether both the endpoint and key are set
func (o *GroqOracle) Configured() bool {
	return o.apiURL != "" && o.apiKey != ""
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete sends one chat completion. Network failures and 5xx responses are
// retried with exponential backoff; 400 and 401 fail at once.
func (o *GroqOracle) Complete(ctx context.Context, req Request) (string, error) {
	if !o.Configured() {
		metrics.ObserveOracle(groqProvider, metrics.OutcomeUnavailable)
		return "", ErrNotConfigured
	}

	text, err := o.complete(ctx, req)
	if err != nil {
		metrics.ObserveOracle(groqProvider, metrics.OutcomeError)
		return "", err
	}
	metrics.ObserveOracle(groqProvider, metrics.OutcomeSuccess)
	return text, nil
}

func (o *GroqOracle) complete(ctx context.Context, req Request) (string, error) {
	format := "text"
	if req.JSON {
		format = "json_object"
	}
	var messages []groqMessage
	if req.System != "" {
		messages = append(messages, groqMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, groqMessage{Role: "user", Content: req.Prompt})

	jsonData, err := json.Marshal(groqRequest{
		Model:          o.model,
		Messages:       messages,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: map[string]string{"type": format},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := o.initialBackoff
	var lastErr error
	for attempt := 0; attempt < o.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &TransportError{Provider: groqProvider, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return "", &TransportError{Provider: groqProvider, Err: err}
			}
		}

		body, status, err := o.post(ctx, jsonData)
		if err != nil {
			log.Printf("[ORACLE] Warning: groq attempt %d/%d failed: %v", attempt+1, o.maxRetries, err)
			lastErr = &TransportError{Provider: groqProvider, Err: err}
			continue
		}

		if status == http.StatusOK {
			return parseGroqResponse(body)
		}

		apiErr := &TransportError{
			Provider:   groqProvider,
			StatusCode: status,
			Err:        fmt.Errorf("API error: %s", truncate(string(body), maxErrorBody)),
		}
		// Don't retry on client errors
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return "", apiErr
		}
		log.Printf("[ORACLE] Warning: groq attempt %d/%d returned status %d", attempt+1, o.maxRetries, status)
		lastErr = apiErr
	}
	return "", lastErr
}

func (o *GroqOracle) post(ctx context.Context, jsonData []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func parseGroqResponse(body []byte) (string, error) {
	var resp groqResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		text = resp.Choices[0].Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Oracle = (*GroqOracle)(nil)
