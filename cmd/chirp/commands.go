package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/gobwas/glob"

	"github.com/entrhq/chirp/pkg/config"
	"github.com/entrhq/chirp/pkg/generator"
	"github.com/entrhq/chirp/pkg/logging"
	"github.com/entrhq/chirp/pkg/poster"
	"github.com/entrhq/chirp/pkg/store"
	"github.com/entrhq/chirp/pkg/ui"
)

// ErrNotPosted is returned by the post command when the page never became ready.
var ErrNotPosted = errors.New("post was not published")

func (a *app) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: chirp %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func (a *app) openStore(cfg *config.Config) (*store.FileStore, error) {
	return store.NewFileStore(cfg.CachePath)
}

func (a *app) logger(cfg *config.Config) *logging.Logger {
	logger, err := a.newLogger(cfg.Verbose)
	if err != nil {
		// NewLogger still returns a stderr logger alongside the error
		ui.NewStatus(a.stderr, cfg.Verbose).Warn("File logging unavailable: %v", err)
	}
	if logger == nil {
		return logging.Discard()
	}
	return logger
}

// resolveAccount finds an account by id, then by nickname
func resolveAccount(s *store.FileStore, ref string) (*store.Account, error) {
	if ref == "" {
		return nil, fmt.Errorf("an account is required (-account <id|nickname>)")
	}

	account, err := s.Account(ref)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, err
	}

	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Nickname != "" && accounts[i].Nickname == ref {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, ref)
}

func (a *app) newGenerator(cfg *config.Config, cli *CLIConfig, topic string, logger *logging.Logger) (*generator.Generator, error) {
	provider, err := a.newProvider(cfg, cli.APIKey, cli.BaseURL)
	if err != nil {
		return nil, err
	}
	return generator.New(provider, generator.Options{
		Topic:       topic,
		Language:    cfg.Language,
		MaxAttempts: cfg.Generation.MaxAttempts,
		MaxLength:   cfg.Generation.MaxLength,
	}, logger.With("generator"))
}

// runPost publishes one post for an account
func (a *app) runPost(ctx context.Context, cli *CLIConfig, cfg *config.Config, args []string) error {
	fs := a.newFlagSet("post", "post -account <id|nickname> [-text <content>] [-topic <topic>]")
	accountRef := fs.String("account", "", "Account id or nickname (required)")
	text := fs.String("text", "", "Post this text instead of generating one")
	topic := fs.String("topic", "", "Override the account topic for generation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.openStore(cfg)
	if err != nil {
		return err
	}
	account, err := resolveAccount(s, *accountRef)
	if err != nil {
		return err
	}

	logger := a.logger(cfg)
	defer logger.Close()
	status := ui.NewStatus(a.stdout, cfg.Verbose)

	// The generator is only needed when no text was given
	var gen poster.TextGenerator
	if strings.TrimSpace(*text) == "" {
		postTopic := *topic
		if postTopic == "" {
			postTopic = account.Topic
		}
		if postTopic == "" {
			return fmt.Errorf("account %s has no topic; pass -topic or -text", account.ID)
		}
		g, genErr := a.newGenerator(cfg, cli, postTopic, logger)
		if genErr != nil {
			return genErr
		}
		gen = g
	}

	status.Info("Launching browser for %s", accountLabel(*account))
	driver, err := a.newDriver(cfg, *account)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer driver.Close()

	p, err := poster.New(*account, driver, gen, s, poster.Options{
		URL:              cfg.Browser.URL,
		ComposerSelector: cfg.Browser.ComposerSelector,
		SubmitSelector:   cfg.Browser.SubmitSelector,
		WaitTimeout:      cfg.Browser.WaitTimeout,
		NavigateSettle:   cfg.Browser.NavigateSettle,
		SubmitSettle:     cfg.Browser.SubmitSettle,
	}, logger.With("poster"), status)
	if err != nil {
		return err
	}

	res, err := p.Post(ctx, strings.TrimSpace(*text))
	if err != nil {
		return err
	}
	if !res.Posted() {
		return fmt.Errorf("%w: %s", ErrNotPosted, res.Outcome)
	}
	return nil
}

// runGenerate prints a generated post without publishing it
func (a *app) runGenerate(ctx context.Context, cli *CLIConfig, cfg *config.Config, args []string) error {
	fs := a.newFlagSet("generate", "generate (-topic <topic> | -account <id|nickname>) [-copy]")
	topic := fs.String("topic", "", "Topic to write about")
	accountRef := fs.String("account", "", "Use this account's topic")
	copyOut := fs.Bool("copy", false, "Copy the generated post to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *topic == "" && *accountRef != "" {
		s, err := a.openStore(cfg)
		if err != nil {
			return err
		}
		account, err := resolveAccount(s, *accountRef)
		if err != nil {
			return err
		}
		*topic = account.Topic
	}
	if *topic == "" {
		return fmt.Errorf("a topic is required (-topic or an account with a topic)")
	}

	logger := a.logger(cfg)
	defer logger.Close()

	g, err := a.newGenerator(cfg, cli, *topic, logger)
	if err != nil {
		return err
	}

	text, err := g.Generate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, text)

	if *copyOut {
		if err := a.copyText(text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		ui.NewStatus(a.stderr, cfg.Verbose).Success("Copied to clipboard")
	}
	return nil
}

// runHistory lists the posts recorded for an account
func (a *app) runHistory(cfg *config.Config, args []string) error {
	fs := a.newFlagSet("history", "history -account <id|nickname>")
	accountRef := fs.String("account", "", "Account id or nickname (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.openStore(cfg)
	if err != nil {
		return err
	}
	account, err := resolveAccount(s, *accountRef)
	if err != nil {
		return err
	}

	posts, err := s.GetPosts(account.ID)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintf(a.stdout, "No posts recorded for %s\n", accountLabel(*account))
		return nil
	}

	for _, post := range posts {
		fmt.Fprintf(a.stdout, "%s  %s\n", post.Date, post.Content)
	}
	return nil
}

// runAccounts handles the accounts subcommands
func (a *app) runAccounts(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("accounts: expected add or list")
	}
	switch args[0] {
	case "add":
		return a.runAccountsAdd(cfg, args[1:])
	case "list":
		return a.runAccountsList(cfg, args[1:])
	default:
		return fmt.Errorf("accounts: unknown subcommand %q", args[0])
	}
}

func (a *app) runAccountsAdd(cfg *config.Config, args []string) error {
	fs := a.newFlagSet("accounts add", "accounts add -profile <dir> [-nickname <name>] [-topic <topic>] [-id <id>]")
	id := fs.String("id", "", "Account id (default: a new UUID)")
	nickname := fs.String("nickname", "", "Short name used to refer to the account")
	profile := fs.String("profile", "", "Firefox profile directory that is signed in to X (required)")
	topic := fs.String("topic", "", "Topic for generated posts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *profile == "" {
		return fmt.Errorf("accounts add: -profile is required")
	}
	if *id == "" {
		*id = a.newID()
	}

	s, err := a.openStore(cfg)
	if err != nil {
		return err
	}

	if *nickname != "" {
		if _, err := resolveAccount(s, *nickname); err == nil {
			return fmt.Errorf("%w: nickname %s", store.ErrAccountExists, *nickname)
		}
	}

	account := store.Account{
		ID:          *id,
		Nickname:    *nickname,
		ProfilePath: *profile,
		Topic:       *topic,
	}
	if err := s.AddAccount(account); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, account.ID)
	return nil
}

func (a *app) runAccountsList(cfg *config.Config, args []string) error {
	fs := a.newFlagSet("accounts list", "accounts list [-match <glob>]")
	match := fs.String("match", "", "Only show accounts whose id or nickname matches this glob")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var pattern glob.Glob
	if *match != "" {
		g, err := glob.Compile(*match)
		if err != nil {
			return fmt.Errorf("invalid -match pattern: %w", err)
		}
		pattern = g
	}

	s, err := a.openStore(cfg)
	if err != nil {
		return err
	}
	accounts, err := s.Accounts()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNICKNAME\tTOPIC\tPOSTS")
	for _, acc := range accounts {
		if pattern != nil && !pattern.Match(acc.ID) && !pattern.Match(acc.Nickname) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", acc.ID, acc.Nickname, acc.Topic, len(acc.Posts))
	}
	return tw.Flush()
}

func accountLabel(account store.Account) string {
	if account.Nickname != "" {
		return account.Nickname
	}
	return account.ID
}
