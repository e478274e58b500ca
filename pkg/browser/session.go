package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is a live browser context on a persistent profile.
type Session struct {
	Context    playwright.BrowserContext
	Page       playwright.Page
	ProfileDir string
	Headless   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
	CurrentURL string

	onClose   func(*Session)
	closeOnce sync.Once
	closeErr  error
}

var _ Driver = (*Session)(nil)

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate loads url and waits for the DOM to be parsed.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.UpdateLastUsed()

	waitUntil := playwright.WaitUntilState("domcontentloaded")
	opts := playwright.PageGotoOptions{WaitUntil: &waitUntil}
	if ms, ok := deadlineMillis(ctx); ok {
		opts.Timeout = &ms
	}

	if _, err := s.Page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigation failed: %w", mapError(err))
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// WaitVisible blocks until selector is visible or timeout elapses.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.UpdateLastUsed()

	state := playwright.WaitForSelectorState("visible")
	ms := toMillis(clampTimeout(ctx, timeout))
	err := runWithContext(ctx, func() error {
		return s.Page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   &state,
			Timeout: &ms,
		})
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("wait for %s visible: %w", selector, mapError(err))
	}
	return nil
}

// WaitClickable blocks until selector would accept a click.
// Playwright's trial click runs the actionability checks without clicking.
func (s *Session) WaitClickable(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.UpdateLastUsed()

	ms := toMillis(clampTimeout(ctx, timeout))
	err := runWithContext(ctx, func() error {
		return s.Page.Locator(selector).First().Click(playwright.LocatorClickOptions{
			Trial:   playwright.Bool(true),
			Timeout: &ms,
		})
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("wait for %s clickable: %w", selector, mapError(err))
	}
	return nil
}

// Click clicks the first element matching selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.UpdateLastUsed()

	opts := playwright.LocatorClickOptions{}
	if ms, ok := deadlineMillis(ctx); ok {
		opts.Timeout = &ms
	}
	if err := s.Page.Locator(selector).First().Click(opts); err != nil {
		return fmt.Errorf("click failed: %w", mapError(err))
	}

	// Update current URL in case click caused navigation
	s.CurrentURL = s.Page.URL()
	return nil
}

// Type sends text to the first element matching selector one key at a time,
// so rich-text editors see real input events.
func (s *Session) Type(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.UpdateLastUsed()

	opts := playwright.LocatorPressSequentiallyOptions{}
	if ms, ok := deadlineMillis(ctx); ok {
		opts.Timeout = &ms
	}
	if err := s.Page.Locator(selector).First().PressSequentially(text, opts); err != nil {
		return fmt.Errorf("type failed: %w", mapError(err))
	}
	return nil
}

// Close closes the browser context. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.Context != nil {
			if err := s.Context.Close(); err != nil {
				s.closeErr = fmt.Errorf("failed to close browser context: %w", err)
			}
		}
		if s.onClose != nil {
			s.onClose(s)
		}
	})
	return s.closeErr
}

// runWithContext runs fn and returns early with ctx.Err() if ctx ends first.
// fn keeps running until its own Playwright timeout fires.
func runWithContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mapError translates Playwright timeouts into ErrTimeout.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// clampTimeout shortens timeout to the context deadline when that is sooner.
func clampTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		// Playwright treats 0 as "no timeout"
		timeout = time.Millisecond
	}
	return timeout
}

// deadlineMillis returns the time left on ctx in milliseconds, if it has a deadline.
func deadlineMillis(ctx context.Context) (float64, bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, false
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	return toMillis(remaining), true
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
