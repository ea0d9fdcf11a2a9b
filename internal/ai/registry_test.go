package ai

import (
	"context"
	"testing"

	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
	"github.com/stretchr/testify/assert"
)

type stubGenerator struct {
	provider string
}

func (s *stubGenerator) Provider() string { return s.provider }

func (s *stubGenerator) Generate(context.Context, aidomain.Request) (aidomain.Response, error) {
	return aidomain.Response{Provider: s.provider}, nil
}

func TestResolve_RoutesByModelPrefix(t *testing.T) {
	openai := &stubGenerator{provider: "openai"}
	anthropic := &stubGenerator{provider: "anthropic"}
	gemini := &stubGenerator{provider: "gemini"}
	registry := NewRegistry(openai, anthropic, gemini)

	assert.Same(t, anthropic, registry.Resolve("claude-3"))
	assert.Same(t, anthropic, registry.Resolve("Claude-3-Opus-20240229"))
	assert.Same(t, gemini, registry.Resolve("gemini-pro"))
	assert.Same(t, openai, registry.Resolve("gpt-4o-mini"))

	// Unknown ids fall through; the fallback passes them upstream as-is.
	assert.Same(t, openai, registry.Resolve("some-future-model"))
}

func TestResolve_MissingProviderFallsBack(t *testing.T) {
	openai := &stubGenerator{provider: "openai"}
	registry := NewRegistry(openai)

	assert.Same(t, openai, registry.Resolve("claude-3"))
	assert.Same(t, openai, registry.Resolve("gemini-pro"))
}
