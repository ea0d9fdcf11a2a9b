package ai

import (
	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
	"github.com/lexorahq/lexora/internal/ai/adapters/anthropic"
	"github.com/lexorahq/lexora/internal/ai/adapters/gemini"
	"github.com/lexorahq/lexora/internal/ai/adapters/openai"
	"github.com/lexorahq/lexora/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("ai",
	fx.Provide(NewProviderRegistry),
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// NewProviderRegistry wires up one generator per configured provider.
// The openai adapter is mandatory since it is also the fallback for
// unrecognized model ids; anthropic and gemini are optional and simply
// absent from routing when their key is missing.
func NewProviderRegistry(p Params) (*Registry, error) {
	log := p.Log.Named("ai")

	fallback, err := openai.New(openai.Config{
		APIKey:  p.Config.OpenAIAPIKey,
		BaseURL: p.Config.OpenAIBaseURL,
	})
	if err != nil {
		return nil, err
	}

	generators := []aidomain.Generator{}
	if p.Config.AnthropicAPIKey != "" {
		adapter, err := anthropic.New(anthropic.Config{
			APIKey:  p.Config.AnthropicAPIKey,
			BaseURL: p.Config.AnthropicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		generators = append(generators, adapter)
	} else {
		log.Warn("anthropic disabled, no api key configured")
	}

	if p.Config.GeminiAPIKey != "" {
		adapter, err := gemini.New(gemini.Config{
			APIKey:  p.Config.GeminiAPIKey,
			BaseURL: p.Config.GeminiBaseURL,
		})
		if err != nil {
			return nil, err
		}
		generators = append(generators, adapter)
	} else {
		log.Warn("gemini disabled, no api key configured")
	}

	return NewRegistry(fallback, generators...), nil
}
