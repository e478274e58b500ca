package browser

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned (wrapped) when an element does not reach the awaited
// state before the timeout.
var ErrTimeout = errors.New("browser: timed out waiting for element")

// Driver is the set of UI actions needed to compose and submit content.
type Driver interface {
	// Navigate loads url in the active page.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until selector matches a visible element.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// WaitClickable blocks until selector matches an element that is visible,
	// stable, enabled and able to receive pointer events.
	WaitClickable(ctx context.Context, selector string, timeout time.Duration) error

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// Type focuses the first element matching selector and types text into it
	// key by key.
	Type(ctx context.Context, selector, text string) error

	// Close releases the browser resources.
	Close() error
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// ProfileDir is the persistent profile directory (required)
	ProfileDir string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout is the default timeout for page operations
	Timeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for sessions
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
