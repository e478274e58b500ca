// Package poster publishes posts for one account through a browser and
// records every successful submission in the post store.
package poster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/chirp/pkg/browser"
	"github.com/entrhq/chirp/pkg/logging"
	"github.com/entrhq/chirp/pkg/store"
	"github.com/entrhq/chirp/pkg/ui"
)

// Default selectors and timings for the x.com web client.
const (
	DefaultURL              = "https://x.com"
	DefaultComposerSelector = "div[data-testid='tweetTextarea_0']"
	DefaultSubmitSelector   = "div[data-testid='tweetButtonInline']"
	DefaultWaitTimeout      = 10 * time.Second
	DefaultNavigateSettle   = 2 * time.Second
	DefaultSubmitSettle     = 4 * time.Second
)

// ErrNoGenerator is returned when content is requested but no generator was configured.
var ErrNoGenerator = errors.New("poster: no generator configured")

// Outcome describes how a Post call ended.
type Outcome string

const (
	OutcomePosted             Outcome = "posted"
	OutcomeComposerNotFound   Outcome = "composer_not_found"
	OutcomeSubmitNotClickable Outcome = "submit_not_clickable"
)

// Result is returned by Post.
type Result struct {
	Outcome Outcome
	Post    store.Post
}

// Posted reports whether the post was submitted and recorded.
func (r *Result) Posted() bool {
	return r != nil && r.Outcome == OutcomePosted
}

// TextGenerator produces post content.
type TextGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// Options configures the UI flow. An empty URL, selector or WaitTimeout
// takes the default above; settle delays are used as given.
type Options struct {
	URL              string
	ComposerSelector string
	SubmitSelector   string
	WaitTimeout      time.Duration
	NavigateSettle   time.Duration
	SubmitSettle     time.Duration
}

func (o Options) withDefaults() Options {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.ComposerSelector == "" {
		o.ComposerSelector = DefaultComposerSelector
	}
	if o.SubmitSelector == "" {
		o.SubmitSelector = DefaultSubmitSelector
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}
	if o.NavigateSettle < 0 {
		o.NavigateSettle = 0
	}
	if o.SubmitSettle < 0 {
		o.SubmitSettle = 0
	}
	return o
}

// Poster posts on behalf of a single account.
type Poster struct {
	account   store.Account
	driver    browser.Driver
	generator TextGenerator
	store     store.PostStore
	opts      Options
	logger    *logging.Logger
	status    *ui.Status

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a poster for account. The generator may be nil when every
// call to Post supplies its own text. Settle delays are used as given, so
// pass DefaultNavigateSettle and DefaultSubmitSettle for the usual pacing.
func New(
	account store.Account,
	driver browser.Driver,
	generator TextGenerator,
	postStore store.PostStore,
	opts Options,
	logger *logging.Logger,
	status *ui.Status,
) (*Poster, error) {
	if account.ID == "" {
		return nil, fmt.Errorf("poster: account id is required")
	}
	if driver == nil {
		return nil, fmt.Errorf("poster: browser driver is required")
	}
	if postStore == nil {
		return nil, fmt.Errorf("poster: post store is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Poster{
		account:   account,
		driver:    driver,
		generator: generator,
		store:     postStore,
		opts:      opts.withDefaults(),
		logger:    logger,
		status:    status,
		now:       time.Now,
		sleep:     sleepContext,
	}, nil
}

// Account returns the account this poster acts for.
func (p *Poster) Account() store.Account {
	return p.account
}

// GetPosts returns the account's recorded posts.
func (p *Poster) GetPosts() ([]store.Post, error) {
	return p.store.GetPosts(p.account.ID)
}

// AddPost records post for the account.
func (p *Poster) AddPost(post store.Post) error {
	return p.store.AddPost(p.account.ID, post)
}

// GeneratePost asks the generator for new content.
func (p *Poster) GeneratePost(ctx context.Context) (string, error) {
	if p.generator == nil {
		return "", ErrNoGenerator
	}
	return p.generator.Generate(ctx)
}

// Post publishes text, or generated content when text is empty.
//
// A composer or submit button that never becomes ready ends the attempt with
// a non-posted Outcome and a nil error; nothing is recorded in that case.
// Every other failure is returned as an error.
func (p *Poster) Post(ctx context.Context, text string) (*Result, error) {
	p.logger.Infof("posting for account %s", p.label())

	if err := p.driver.Navigate(ctx, p.opts.URL); err != nil {
		return nil, fmt.Errorf("poster: navigate to %s: %w", p.opts.URL, err)
	}
	if err := p.sleep(ctx, p.opts.NavigateSettle); err != nil {
		return nil, err
	}

	content := text
	if content == "" {
		p.info("Generating post...")
		generated, err := p.GeneratePost(ctx)
		if err != nil {
			return nil, fmt.Errorf("poster: generate content: %w", err)
		}
		content = generated
	}
	postedAt := p.now()
	p.info("Posting to X: %s", ui.Preview(content, 30))
	p.debug("Post content: %s", content)

	if err := p.driver.WaitVisible(ctx, p.opts.ComposerSelector, p.opts.WaitTimeout); err != nil {
		// a wait cut short by cancellation is not a missing composer
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, browser.ErrTimeout) {
			p.logger.Warnf("composer %q not visible after %s: %v", p.opts.ComposerSelector, p.opts.WaitTimeout, err)
			p.fail("Post text area not found. Couldn't post.")
			return &Result{Outcome: OutcomeComposerNotFound}, nil
		}
		return nil, fmt.Errorf("poster: wait for composer: %w", err)
	}

	if err := p.driver.Click(ctx, p.opts.ComposerSelector); err != nil {
		return nil, fmt.Errorf("poster: focus composer: %w", err)
	}
	if err := p.driver.Type(ctx, p.opts.ComposerSelector, content); err != nil {
		return nil, fmt.Errorf("poster: type content: %w", err)
	}

	if err := p.driver.WaitClickable(ctx, p.opts.SubmitSelector, p.opts.WaitTimeout); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, browser.ErrTimeout) {
			p.logger.Warnf("submit %q not clickable after %s: %v", p.opts.SubmitSelector, p.opts.WaitTimeout, err)
			p.fail("Post button not clickable. Couldn't post.")
			return &Result{Outcome: OutcomeSubmitNotClickable}, nil
		}
		return nil, fmt.Errorf("poster: wait for submit: %w", err)
	}

	if err := p.driver.Click(ctx, p.opts.SubmitSelector); err != nil {
		return nil, fmt.Errorf("poster: submit: %w", err)
	}
	p.debug("Clicked the post button")
	if err := p.sleep(ctx, p.opts.SubmitSettle); err != nil {
		return nil, err
	}

	post := store.NewPost(content, postedAt)
	if err := p.AddPost(post); err != nil {
		return nil, fmt.Errorf("poster: record post: %w", err)
	}

	p.logger.Infof("posted %d characters for account %s", len([]rune(content)), p.label())
	if p.status != nil {
		p.status.Success("Posted: %s", ui.Preview(content, 60))
	}
	return &Result{Outcome: OutcomePosted, Post: post}, nil
}

func (p *Poster) label() string {
	if p.account.Nickname != "" {
		return p.account.Nickname
	}
	return p.account.ID
}

func (p *Poster) info(format string, args ...any) {
	if p.status != nil {
		p.status.Info(format, args...)
	}
}

func (p *Poster) debug(format string, args ...any) {
	p.logger.Debugf(format, args...)
	if p.status != nil {
		p.status.Debug(format, args...)
	}
}

func (p *Poster) fail(msg string) {
	if p.status != nil {
		p.status.Error("%s", msg)
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
