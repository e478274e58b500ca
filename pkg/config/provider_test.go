package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProvider(t *testing.T) {
	tests := []struct {
		name           string
		cliAPIKey      string
		cliBaseURL     string
		envAPIKey      string
		envBaseURL     string
		fileAPIKey     string
		fileBaseURL    string
		model          string
		expectError    bool
		expectedModel  string
		expectedAPIKey string
		expectedURL    string
	}{
		{
			name:           "CLI flag takes precedence over env and file",
			cliAPIKey:      "cli-key",
			cliBaseURL:     "https://cli.example.com",
			envAPIKey:      "env-key",
			envBaseURL:     "https://env.example.com",
			fileAPIKey:     "file-key",
			fileBaseURL:    "https://file.example.com",
			model:          "gpt-4o",
			expectedModel:  "gpt-4o",
			expectedAPIKey: "cli-key",
			expectedURL:    "https://cli.example.com",
		},
		{
			name:           "Environment variable used when CLI empty",
			envAPIKey:      "env-key",
			envBaseURL:     "https://env.example.com",
			fileAPIKey:     "file-key",
			fileBaseURL:    "https://file.example.com",
			model:          "gpt4",
			expectedModel:  "gpt-4o",
			expectedAPIKey: "env-key",
			expectedURL:    "https://env.example.com",
		},
		{
			name:           "Config file used when CLI and env empty",
			fileAPIKey:     "file-key",
			fileBaseURL:    "https://file.example.com",
			model:          "local-llama",
			expectedModel:  "local-llama",
			expectedAPIKey: "file-key",
			expectedURL:    "https://file.example.com",
		},
		{
			name:           "Default base URL when nothing set",
			cliAPIKey:      "cli-key",
			model:          "",
			expectedModel:  DefaultModelName,
			expectedAPIKey: "cli-key",
			expectedURL:    "https://api.openai.com/v1",
		},
		{
			name:        "Missing API key",
			model:       "gpt-4o",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", tt.envAPIKey)
			t.Setenv("OPENAI_BASE_URL", tt.envBaseURL)

			cfg := DefaultConfig()
			cfg.Model = tt.model
			cfg.LLM.APIKey = tt.fileAPIKey
			cfg.LLM.BaseURL = tt.fileBaseURL

			provider, err := BuildProvider(cfg, tt.cliAPIKey, tt.cliBaseURL)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "API key is required")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedModel, provider.GetModel())
			assert.Equal(t, tt.expectedAPIKey, provider.GetAPIKey())
			assert.Equal(t, tt.expectedURL, provider.GetBaseURL())
		})
	}
}
