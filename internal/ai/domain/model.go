package domain

import (
	"context"
	"errors"
)

var (
	ErrEmptyMessage        = errors.New("empty_message")
	ErrProviderUnavailable = errors.New("provider_unavailable")
	ErrInvalidConfig       = errors.New("invalid_config")
)

// Request is a single-turn generation request. SystemPrompt carries the
// assistant persona; Message is the user's question verbatim.
type Request struct {
	Model        string
	SystemPrompt string
	Message      string
	MaxTokens    int
	Temperature  float64
}

type Response struct {
	Text     string
	Model    string
	Provider string
}

// Generator produces an answer from a single upstream AI provider.
// Implementations map the public model id onto whatever the provider's
// API expects and must not retry on their own.
type Generator interface {
	Provider() string
	Generate(ctx context.Context, req Request) (Response, error)
}
