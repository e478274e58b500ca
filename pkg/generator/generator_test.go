package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/entrhq/chirp/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider replays canned replies in order, repeating the last one.
type mockProvider struct {
	replies  []string
	err      error
	nilReply bool
	calls    int
	prompts  []string
}

func (m *mockProvider) Complete(ctx context.Context, messages []*llm.Message) (*llm.Message, error) {
	m.calls++
	for _, msg := range messages {
		m.prompts = append(m.prompts, msg.Content)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.nilReply {
		return nil, nil
	}
	i := m.calls - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return llm.NewAssistantMessage(m.replies[i]), nil
}

func (m *mockProvider) GetModel() string   { return "mock-model" }
func (m *mockProvider) GetBaseURL() string { return "http://localhost" }

func newGenerator(t *testing.T, p llm.Provider, opts Options) *Generator {
	t.Helper()
	if opts.Topic == "" {
		opts.Topic = "space exploration"
	}
	g, err := New(p, opts, nil)
	require.NoError(t, err)
	return g
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{Topic: "x"}, nil)
	assert.Error(t, err)

	_, err = New(&mockProvider{}, Options{Topic: "  "}, nil)
	assert.Error(t, err)

	g, err := New(&mockProvider{}, Options{Topic: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAttempts, g.opts.MaxAttempts)
	assert.Equal(t, DefaultMaxLength, g.opts.MaxLength)
	assert.Equal(t, "English", g.opts.Language)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("rockets", "Spanish")
	assert.Equal(t,
		"Generate a Twitter post about: rockets in Spanish. The limit is 2 sentences. Choose a specific sub-topic of the provided topic.",
		prompt)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"This is great! *wow*"`, "This is great! wow"},
		{"**Bold** claim", "Bold claim"},
		{"  padded  ", "padded"},
		{"<thinking>draft</thinking>Final answer.", "Final answer."},
		{"no markup", "no markup"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}

func TestGenerate_ReturnsSanitizedText(t *testing.T) {
	p := &mockProvider{replies: []string{`"This is great! *wow*"`}}
	g := newGenerator(t, p, Options{Language: "English"})

	text, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "This is great! wow", text)
	assert.Equal(t, 1, p.calls)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "space exploration")
	assert.Contains(t, p.prompts[0], "in English")
}

func TestGenerate_RetriesUntilShortEnough(t *testing.T) {
	long := strings.Repeat("a", 300)
	p := &mockProvider{replies: []string{long, long, "Short and sweet."}}
	g := newGenerator(t, p, Options{MaxAttempts: 5})

	text, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Short and sweet.", text)
	assert.Equal(t, 3, p.calls)
}

func TestGenerate_BoundaryLength(t *testing.T) {
	p := &mockProvider{replies: []string{strings.Repeat("b", 260), strings.Repeat("c", 259)}}
	g := newGenerator(t, p, Options{})

	text, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, text, 259)
	assert.Equal(t, 2, p.calls)
}

func TestGenerate_CountsCharactersNotBytes(t *testing.T) {
	// 200 two-byte runes: 400 bytes but 200 characters
	p := &mockProvider{replies: []string{strings.Repeat("é", 200)}}
	g := newGenerator(t, p, Options{})

	text, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, len([]rune(text)))
}

func TestGenerate_ExhaustedAfterMaxAttempts(t *testing.T) {
	p := &mockProvider{replies: []string{strings.Repeat("x", 300)}}
	g := newGenerator(t, p, Options{MaxAttempts: 4})

	_, err := g.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationExhausted))
	assert.Contains(t, err.Error(), "4 attempts")
	assert.Contains(t, err.Error(), "last length 300")
	assert.Equal(t, 4, p.calls)
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	tests := []struct {
		name string
		p    *mockProvider
	}{
		{"blank text", &mockProvider{replies: []string{"  "}}},
		{"only markup", &mockProvider{replies: []string{`"**"`}}},
		{"nil reply", &mockProvider{nilReply: true}},
		{"no completion", &mockProvider{err: llm.ErrNoCompletion}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(t, tt.p, Options{})
			_, err := g.Generate(context.Background())
			assert.True(t, errors.Is(err, ErrEmptyCompletion), "got %v", err)
			assert.Equal(t, 1, tt.p.calls)
		})
	}
}

func TestGenerate_BackendError(t *testing.T) {
	p := &mockProvider{err: errors.New("connection refused")}
	g := newGenerator(t, p, Options{})

	_, err := g.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, errors.Is(err, ErrGenerationExhausted))
	assert.Equal(t, 1, p.calls)
}

func TestGenerate_ContextCancelled(t *testing.T) {
	p := &mockProvider{replies: []string{"hi"}}
	g := newGenerator(t, p, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, p.calls)
}
