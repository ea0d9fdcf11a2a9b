package ai

import (
	"strings"

	"github.com/lexorahq/lexora/internal/ai/domain"
)

// Registry routes a model id to the generator that serves it. Models with
// no matching prefix fall through to the fallback generator, which passes
// the requested id upstream unchanged.
type Registry struct {
	prefixes map[string]domain.Generator
	fallback domain.Generator
}

func NewRegistry(fallback domain.Generator, generators ...domain.Generator) *Registry {
	registry := &Registry{
		prefixes: map[string]domain.Generator{},
		fallback: fallback,
	}
	for _, generator := range generators {
		if generator == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(generator.Provider()))
		if provider == "" {
			continue
		}
		registry.prefixes[provider] = generator
	}
	return registry
}

// Resolve picks the generator for a model id. Routing is by prefix:
// "claude-3" goes to anthropic, "gemini-pro" to gemini, everything else
// to the fallback.
func (r *Registry) Resolve(model string) domain.Generator {
	model = strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(model, "claude"):
		if g, ok := r.prefixes["anthropic"]; ok {
			return g
		}
	case strings.HasPrefix(model, "gemini"):
		if g, ok := r.prefixes["gemini"]; ok {
			return g
		}
	}
	return r.fallback
}
