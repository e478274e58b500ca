package browser

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the Playwright instance and the single session launched from it.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	session     *Session
	initialized bool
	install     bool
}

// NewManager creates a manager that installs the Firefox driver on Initialize.
func NewManager() *Manager {
	return &Manager{install: true}
}

// SkipInstall disables the driver download in Initialize, for environments
// where browsers are provisioned ahead of time.
func (m *Manager) SkipInstall() *Manager {
	m.install = false
	return m
}

// Initialize installs (if needed) and starts Playwright.
// This must be called before Launch.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Keep driver output off the console
	opts := &playwright.RunOptions{
		Browsers: []string{"firefox"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if m.install {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Launch opens Firefox on the persistent profile in opts.ProfileDir.
func (m *Manager) Launch(opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}
	if m.session != nil {
		return nil, fmt.Errorf("a browser session is already running on %s", m.session.ProfileDir)
	}

	opts, err := withDefaults(opts)
	if err != nil {
		return nil, err
	}

	launchOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	bctx, err := m.playwright.Firefox.LaunchPersistentContext(opts.ProfileDir, launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch firefox on profile %s: %w", opts.ProfileDir, err)
	}

	// A persistent context usually opens with one blank page already
	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	page.SetDefaultTimeout(toMillis(opts.Timeout))

	now := time.Now()
	m.session = &Session{
		Context:    bctx,
		Page:       page,
		ProfileDir: opts.ProfileDir,
		Headless:   opts.Headless,
		CreatedAt:  now,
		LastUsedAt: now,
		CurrentURL: "about:blank",
		onClose:    m.forget,
	}
	return m.session, nil
}

// forget drops the session reference after it closed itself.
func (m *Manager) forget(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == s {
		m.session = nil
	}
}

// Shutdown closes the session and stops Playwright.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	session := m.session
	m.session = nil
	m.mu.Unlock()

	if session != nil {
		session.onClose = nil
		_ = session.Close() // continue to stop the driver regardless
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}

// withDefaults validates opts and fills in defaults.
func withDefaults(opts SessionOptions) (SessionOptions, error) {
	if opts.ProfileDir == "" {
		return opts, fmt.Errorf("profile directory is required")
	}
	info, err := os.Stat(opts.ProfileDir)
	if err != nil {
		return opts, fmt.Errorf("profile directory error: %w", err)
	}
	if !info.IsDir() {
		return opts, fmt.Errorf("profile path %s is not a directory", opts.ProfileDir)
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts, nil
}
