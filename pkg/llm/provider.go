// Package llm provides abstractions for the text-generation backend.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reply, err := provider.Complete(ctx, []*llm.Message{
//	    llm.NewUserMessage("Hello!"),
//	})
package llm

import (
	"context"
	"errors"
)

// ErrNoCompletion is returned when the backend answers without any choice.
var ErrNoCompletion = errors.New("llm: backend returned no completion")

// Provider defines the interface for text-generation backends.
//
// Calls are single request/response: the caller passes the whole
// conversation and gets back the assistant message. Providers keep no
// history between calls.
type Provider interface {
	// Complete sends messages to the backend and returns the assistant reply.
	// Returns ErrNoCompletion (possibly wrapped) when the backend produced
	// no result at all.
	Complete(ctx context.Context, messages []*Message) (*Message, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
