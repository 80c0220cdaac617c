package ai

import (
	"context"
	"errors"
)

// SystemPrompt is sent with every completion.
const SystemPrompt = "Du er en hjelpsom assistent som svarer på norsk."

var (
	ErrAPIKeyRequired      = errors.New("API key is required")
	ErrModelRequired       = errors.New("Model is required")
	ErrUnsupportedProvider = errors.New("Unsupported provider")
)

// CompletionRequest is one prompt for one model. An empty APIKey means the
// server-side key for the provider is used.
type CompletionRequest struct {
	Provider string
	APIKey   string
	Model    string
	Prompt   string
}

// Provider returns the raw assistant text for a prompt.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
