// Package generator produces post text from a text-generation backend.
//
// A single prompt derived from the account topic is sent per attempt, the
// reply is cleaned up, and replies that are too long are discarded and
// regenerated up to a fixed number of attempts.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/chirp/pkg/llm"
	"github.com/entrhq/chirp/pkg/llm/parser"
	"github.com/entrhq/chirp/pkg/logging"
)

const (
	DefaultMaxAttempts = 5
	DefaultMaxLength   = 260
)

var (
	// ErrEmptyCompletion means the backend returned nothing usable.
	ErrEmptyCompletion = errors.New("generator: backend returned no text")

	// ErrGenerationExhausted means every attempt produced text that was too long.
	ErrGenerationExhausted = errors.New("generator: no post within length limit")
)

// Options configures a Generator.
type Options struct {
	Topic    string
	Language string

	// MaxAttempts bounds how many completions are requested (default 5)
	MaxAttempts int

	// MaxLength is the exclusive upper bound on post length in characters (default 260)
	MaxLength int
}

// Generator turns a topic into a short post.
type Generator struct {
	provider llm.Provider
	opts     Options
	logger   *logging.Logger
}

// New creates a generator. A nil logger discards output.
func New(provider llm.Provider, opts Options, logger *logging.Logger) (*Generator, error) {
	if provider == nil {
		return nil, fmt.Errorf("generator: provider is required")
	}
	if strings.TrimSpace(opts.Topic) == "" {
		return nil, fmt.Errorf("generator: topic is required")
	}
	if opts.Language == "" {
		opts.Language = "English"
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Generator{
		provider: provider,
		opts:     opts,
		logger:   logger,
	}, nil
}

// BuildPrompt returns the single-turn prompt for topic and language.
func BuildPrompt(topic, language string) string {
	return fmt.Sprintf(
		"Generate a Twitter post about: %s in %s. "+
			"The limit is 2 sentences. "+
			"Choose a specific sub-topic of the provided topic.",
		topic, language,
	)
}

// Sanitize removes emphasis markers and quote characters.
func Sanitize(text string) string {
	text = parser.StripThinking(text)
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "\"", "")
	return strings.TrimSpace(text)
}

// Generate requests completions until one is shorter than MaxLength.
//
// Backend errors are returned immediately. An empty reply yields
// ErrEmptyCompletion. When every attempt is too long the error wraps
// ErrGenerationExhausted.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	prompt := BuildPrompt(g.opts.Topic, g.opts.Language)

	lastLength := 0
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		g.logger.Debugf("generating post (attempt %d/%d, model %s)", attempt, g.opts.MaxAttempts, g.provider.GetModel())

		reply, err := g.provider.Complete(ctx, []*llm.Message{llm.NewUserMessage(prompt)})
		if err != nil {
			if errors.Is(err, llm.ErrNoCompletion) {
				return "", fmt.Errorf("%w: %v", ErrEmptyCompletion, err)
			}
			return "", fmt.Errorf("generator: completion failed: %w", err)
		}
		if reply == nil {
			return "", ErrEmptyCompletion
		}

		text := Sanitize(reply.Content)
		if text == "" {
			return "", ErrEmptyCompletion
		}

		lastLength = utf8.RuneCountInString(text)
		g.logger.Debugf("length of post: %d", lastLength)

		if lastLength < g.opts.MaxLength {
			return text, nil
		}

		g.logger.Infof("discarding post of %d characters (limit %d)", lastLength, g.opts.MaxLength)
	}

	return "", fmt.Errorf("%w: %d attempts, last length %d", ErrGenerationExhausted, g.opts.MaxAttempts, lastLength)
}
