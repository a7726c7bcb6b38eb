// Package ai constructs embedding and image description services from
// stored configuration, selecting the provider at runtime.
package ai

import (
	"fmt"
	"os"

	describeopenai "github.com/hardwick-labs/paperbase/internal/adapters/driven/describe/openai"
	"github.com/hardwick-labs/paperbase/internal/adapters/driven/embedding/ollama"
	embedopenai "github.com/hardwick-labs/paperbase/internal/adapters/driven/embedding/openai"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

// Provider names accepted in the embedding.provider config key.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewEmbeddingService builds an embedding service from configuration.
// The provider is chosen via embedding.provider (default: openai).
//
// For the OpenAI provider a missing API key yields a nil service rather
// than an error, so that commands which never embed still run.
func NewEmbeddingService(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString("ollama.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil

	case ProviderOpenAI:
		apiKey := openAIKey(cfg)
		if apiKey == "" {
			return nil, nil
		}
		return embedopenai.NewEmbeddingService(embedopenai.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.GetString("openai.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

// NewImageDescriber builds an image description service from
// configuration. Returns nil without error when no OpenAI API key is
// available; ingestion then falls back to placeholder image names.
func NewImageDescriber(cfg driven.ConfigStore) (driven.ImageDescriber, error) {
	apiKey := openAIKey(cfg)
	if apiKey == "" {
		return nil, nil
	}
	return describeopenai.NewDescriber(describeopenai.Config{
		APIKey:            apiKey,
		BaseURL:           cfg.GetString("openai.base_url"),
		Model:             cfg.GetString("describer.model"),
		RequestsPerMinute: cfg.GetInt("describer.requests_per_minute"),
	})
}

func openAIKey(cfg driven.ConfigStore) string {
	if key := cfg.GetString("openai.api_key"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}
