// Package oracle talks to the hosted language models behind grounded
// analysis. Callers get plain text back and decide themselves what a
// malformed answer means.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured is returned without a network call when credentials
	// are missing
	ErrNotConfigured = errors.New("oracle credentials not configured")
	ErrEmptyResponse = errors.New("oracle returned empty content")
)

// Request is one completion call
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	JSON        bool // Ask for a JSON object instead of free text
}

// Oracle completes prompts
type Oracle interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Ready reports whether o can be called. Oracles that expose Configured are
// asked; others are assumed ready.
func Ready(o Oracle) bool {
	if o == nil {
		return false
	}
	if c, ok := o.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// TransportError wraps a failed exchange with a provider: network errors,
// timeouts and non-2xx responses
type TransportError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a *TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StripCodeFence removes a surrounding ``` or ```json fence from model output
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
