package config

import (
	"fmt"
	"os"

	"github.com/entrhq/chirp/pkg/llm/openai"
)

// BuildProvider creates the text-generation provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func BuildProvider(cfg *Config, cliAPIKey, cliBaseURL string) (*openai.Provider, error) {
	finalAPIKey := cliAPIKey
	finalBaseURL := cliBaseURL

	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if cfg != nil {
		if finalAPIKey == "" {
			finalAPIKey = cfg.LLM.APIKey
		}
		if finalBaseURL == "" {
			finalBaseURL = cfg.LLM.BaseURL
		}
	}

	if finalAPIKey == "" {
		return nil, fmt.Errorf("API key is required. Set OPENAI_API_KEY environment variable, use -api-key flag, or set llm.api_key in the config file")
	}

	model := DefaultModelName
	if cfg != nil {
		model = ParseModel(cfg.Model)
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(model),
	}
	if finalBaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(finalBaseURL))
	}

	provider, err := openai.NewProvider(finalAPIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return provider, nil
}
