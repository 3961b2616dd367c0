package llm

import (
	"context"
	"iter"
)

// Provider defines the interface for interacting with LLM backends.
// Implementations handle protocol-specific details such as request formatting,
// authentication, and response parsing.
type Provider interface {
	// NewSession opens a multi-turn chat seeded with history.
	NewSession(ctx context.Context, cfg SessionConfig, history []Content) (Session, error)

	// Generate runs a single-shot request and returns the full text.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Session is one live conversation with the model.
type Session interface {
	// SendStream sends one user turn and yields text fragments in arrival
	// order. Iteration stops early when ctx is cancelled or the consumer
	// breaks; a non-nil error is always the last element.
	SendStream(ctx context.Context, parts []Part) iter.Seq2[string, error]
}

// SessionConfig is the per-mode model configuration.
type SessionConfig struct {
	Model             string
	SystemInstruction string
	Temperature       float32
	TopK              float32
}

// GenerateRequest is a single prompt for Generate.
type GenerateRequest struct {
	Model            string
	Prompt           string
	Temperature      float32
	ResponseMIMEType string
}

// Config holds common connection settings for LLM providers.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}
