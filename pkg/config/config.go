// Package config holds the explicit run configuration passed to every
// component constructor. Values come from a YAML (or TOML) file, then from
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for a posting run
type Config struct {
	// Headless runs the browser without a visible window
	Headless bool `yaml:"headless" toml:"headless"`

	// Verbose enables debug logging and extra console output
	Verbose bool `yaml:"verbose" toml:"verbose"`

	// Model is the text-generation model name or alias (see ParseModel)
	Model string `yaml:"model" toml:"model" validate:"required"`

	// Language the generated posts are written in
	Language string `yaml:"language" toml:"language" validate:"required"`

	// CachePath is the JSON post store location (empty means ~/.chirp/twitter.json)
	CachePath string `yaml:"cache_path" toml:"cache_path"`

	LLM        LLMConfig        `yaml:"llm" toml:"llm"`
	Browser    BrowserConfig    `yaml:"browser" toml:"browser"`
	Generation GenerationConfig `yaml:"generation" toml:"generation"`

	// ConfigFilePath is the file this configuration was loaded from, if any
	ConfigFilePath string `yaml:"-" toml:"-"`
}

// LLMConfig defines the text-generation backend connection
type LLMConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url" validate:"omitempty,url"`
	APIKey  string `yaml:"api_key" toml:"api_key"`
}

// BrowserConfig defines the target site and UI automation timings
type BrowserConfig struct {
	URL              string        `yaml:"url" toml:"url" validate:"required,url"`
	ComposerSelector string        `yaml:"composer_selector" toml:"composer_selector" validate:"required"`
	SubmitSelector   string        `yaml:"submit_selector" toml:"submit_selector" validate:"required"`
	WaitTimeout      time.Duration `yaml:"wait_timeout" toml:"wait_timeout" validate:"gt=0"`
	NavigateSettle   time.Duration `yaml:"navigate_settle" toml:"navigate_settle" validate:"min=0"`
	SubmitSettle     time.Duration `yaml:"submit_settle" toml:"submit_settle" validate:"min=0"`
	ViewportWidth    int           `yaml:"viewport_width" toml:"viewport_width" validate:"gte=320"`
	ViewportHeight   int           `yaml:"viewport_height" toml:"viewport_height" validate:"gte=240"`

	// SkipInstall leaves the Playwright driver and Firefox download to the environment
	SkipInstall bool `yaml:"skip_install" toml:"skip_install"`
}

// GenerationConfig bounds the generate-and-check loop
type GenerationConfig struct {
	MaxAttempts int `yaml:"max_attempts" toml:"max_attempts" validate:"gte=1,lte=50"`
	MaxLength   int `yaml:"max_length" toml:"max_length" validate:"gte=1"`
}

// Defaults for a posting run
const (
	DefaultURL              = "https://x.com"
	DefaultComposerSelector = "div[data-testid='tweetTextarea_0']"
	DefaultSubmitSelector   = "div[data-testid='tweetButtonInline']"
	DefaultWaitTimeout      = 10 * time.Second
	DefaultNavigateSettle   = 2 * time.Second
	DefaultSubmitSettle     = 4 * time.Second
	DefaultViewportWidth    = 1280
	DefaultViewportHeight   = 720
	DefaultMaxAttempts      = 5
	DefaultMaxLength        = 260
	DefaultLanguage         = "English"
)

// DefaultConfig returns a configuration with every default filled in
func DefaultConfig() *Config {
	return &Config{
		Headless: true,
		Model:    DefaultModelName,
		Language: DefaultLanguage,
		Browser: BrowserConfig{
			URL:              DefaultURL,
			ComposerSelector: DefaultComposerSelector,
			SubmitSelector:   DefaultSubmitSelector,
			WaitTimeout:      DefaultWaitTimeout,
			NavigateSettle:   DefaultNavigateSettle,
			SubmitSettle:     DefaultSubmitSettle,
			ViewportWidth:    DefaultViewportWidth,
			ViewportHeight:   DefaultViewportHeight,
		},
		Generation: GenerationConfig{
			MaxAttempts: DefaultMaxAttempts,
			MaxLength:   DefaultMaxLength,
		},
	}
}

// Load reads a configuration file on top of DefaultConfig. Files ending in
// .toml are decoded as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.ConfigFilePath = path
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
