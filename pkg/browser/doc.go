// Package browser drives a real browser through Playwright.
//
// Callers program against the Driver capability interface (navigate,
// wait-visible, wait-clickable, click, type) so the selector strategy can be
// swapped and tests can run without a browser.
//
// # Architecture
//
//  1. Manager: owns the Playwright driver process and at most one session
//  2. Session: a Firefox persistent context bound to a profile directory,
//     implementing Driver over its active page
//
// The profile directory carries cookies and logins between runs, so a session
// started on a profile that is already signed in can post without any
// credential handling here.
//
// # Example Usage
//
//	manager := browser.NewManager()
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.Launch(browser.SessionOptions{
//	    ProfileDir: "/home/me/.mozilla/firefox/abcd.default",
//	    Headless:   true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	err = session.WaitVisible(ctx, "div[data-testid='tweetTextarea_0']", 10*time.Second)
//	if errors.Is(err, browser.ErrTimeout) {
//	    // composer never appeared
//	}
package browser
