package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Headless)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultModelName, cfg.Model)
	assert.Equal(t, "English", cfg.Language)
	assert.Equal(t, "https://x.com", cfg.Browser.URL)
	assert.Equal(t, 10*time.Second, cfg.Browser.WaitTimeout)
	assert.Equal(t, 2*time.Second, cfg.Browser.NavigateSettle)
	assert.Equal(t, 4*time.Second, cfg.Browser.SubmitSettle)
	assert.Equal(t, 5, cfg.Generation.MaxAttempts)
	assert.Equal(t, 260, cfg.Generation.MaxLength)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "chirp.yaml", `
headless: false
verbose: true
model: gpt-4o
language: German
cache_path: /tmp/chirp/twitter.json
llm:
  base_url: http://localhost:8080/v1
browser:
  wait_timeout: 15s
  submit_settle: 1s
  skip_install: true
generation:
  max_attempts: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.False(t, cfg.Headless)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "German", cfg.Language)
	assert.Equal(t, "/tmp/chirp/twitter.json", cfg.CachePath)
	assert.Equal(t, "http://localhost:8080/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Browser.WaitTimeout)
	assert.Equal(t, time.Second, cfg.Browser.SubmitSettle)
	assert.True(t, cfg.Browser.SkipInstall)
	assert.Equal(t, 3, cfg.Generation.MaxAttempts)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultComposerSelector, cfg.Browser.ComposerSelector)
	assert.Equal(t, 2*time.Second, cfg.Browser.NavigateSettle)
	assert.Equal(t, 260, cfg.Generation.MaxLength)
	assert.Equal(t, path, cfg.ConfigFilePath)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "chirp.toml", `
model = "gpt-4.1-mini"
language = "French"

[browser]
url = "https://x.com/home"
wait_timeout = "20s"

[generation]
max_length = 200
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
	assert.Equal(t, "French", cfg.Language)
	assert.Equal(t, "https://x.com/home", cfg.Browser.URL)
	assert.Equal(t, 20*time.Second, cfg.Browser.WaitTimeout)
	assert.Equal(t, 200, cfg.Generation.MaxLength)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.Browser.SkipInstall)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := writeFile(t, "bad.yaml", "model: [unterminated")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.Model = "" },
			wantErr: "Model",
		},
		{
			name:    "missing language",
			mutate:  func(c *Config) { c.Language = "" },
			wantErr: "Language",
		},
		{
			name:    "bad url",
			mutate:  func(c *Config) { c.Browser.URL = "not a url" },
			wantErr: "URL",
		},
		{
			name:    "zero wait timeout",
			mutate:  func(c *Config) { c.Browser.WaitTimeout = 0 },
			wantErr: "WaitTimeout",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Generation.MaxAttempts = 0 },
			wantErr: "MaxAttempts",
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.LLM.BaseURL = "::" },
			wantErr: "BaseURL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseModel(t *testing.T) {
	tests := map[string]string{
		"":              DefaultModelName,
		"gpt4":          "gpt-4o",
		"GPT-4":         "gpt-4o",
		" gpt-4o-mini ": "gpt-4o-mini",
		"gpt35":         "gpt-3.5-turbo",
		"llama3:8b":     "llama3:8b",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseModel(in), "ParseModel(%q)", in)
	}
}
