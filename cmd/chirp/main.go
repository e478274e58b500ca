// Package main provides the chirp command: it generates short posts with a
// text-generation backend and publishes them to X through a real browser
// profile, keeping a per-account history of everything it posted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"

	"github.com/entrhq/chirp/pkg/browser"
	"github.com/entrhq/chirp/pkg/config"
	"github.com/entrhq/chirp/pkg/llm"
	"github.com/entrhq/chirp/pkg/logging"
	"github.com/entrhq/chirp/pkg/store"
)

const version = "0.1.0"

// CLIConfig holds the global command-line flags
type CLIConfig struct {
	ConfigFile  string
	Headless    bool
	Verbose     bool
	Model       string
	Language    string
	CachePath   string
	APIKey      string
	BaseURL     string
	ShowVersion bool

	// set records which flags were given explicitly
	set map[string]bool
}

// app wires commands to their dependencies. The factories are replaced in tests.
type app struct {
	stdout io.Writer
	stderr io.Writer

	newLogger   func(verbose bool) (*logging.Logger, error)
	newProvider func(cfg *config.Config, apiKey, baseURL string) (llm.Provider, error)
	newDriver   func(cfg *config.Config, account store.Account) (browser.Driver, error)
	newID       func() string
	copyText    func(text string) error
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		newLogger:   func(verbose bool) (*logging.Logger, error) { return logging.NewLogger("chirp", verbose) },
		newProvider: buildProvider,
		newDriver:   launchBrowser,
		newID:       uuid.NewString,
		copyText:    clipboard.WriteAll,
	}
}

func main() {
	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:]); err != nil {
		cancel()
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Printf("chirp: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses the global flags and returns the remaining arguments
func (a *app) parseFlags(args []string) (*CLIConfig, []string, error) {
	cli := &CLIConfig{set: map[string]bool{}}

	fs := flag.NewFlagSet("chirp", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML or TOML)")
	fs.BoolVar(&cli.Headless, "headless", true, "Run the browser without a window")
	fs.BoolVar(&cli.Verbose, "verbose", false, "Print debug output")
	fs.StringVar(&cli.Model, "model", config.DefaultModelName, "Text-generation model to use")
	fs.StringVar(&cli.Language, "language", config.DefaultLanguage, "Language of generated posts")
	fs.StringVar(&cli.CachePath, "cache", "", "Path to the post store (default ~/.chirp/twitter.json)")
	fs.StringVar(&cli.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	fs.StringVar(&cli.BaseURL, "base-url", "", "OpenAI API base URL (or set OPENAI_BASE_URL env var)")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "chirp - generate and publish posts to X\n\n")
		fmt.Fprintf(w, "Usage: chirp [options] <command> [command options]\n\n")
		fmt.Fprintf(w, "Commands:\n")
		fmt.Fprintf(w, "  post       Publish a post for an account\n")
		fmt.Fprintf(w, "  generate   Generate a post without publishing it\n")
		fmt.Fprintf(w, "  history    Show the posts recorded for an account\n")
		fmt.Fprintf(w, "  accounts   Manage accounts (add, list)\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(w, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  chirp accounts add -nickname rocketfan -profile ~/.mozilla/firefox/abcd.default -topic rockets\n")
		fmt.Fprintf(w, "  chirp post -account rocketfan\n")
		fmt.Fprintf(w, "  chirp -headless=false post -account rocketfan -text \"Hello from chirp\"\n")
		fmt.Fprintf(w, "  chirp generate -topic \"deep sea fish\" -copy\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) { cli.set[f.Name] = true })

	return cli, fs.Args(), nil
}

// run dispatches to the requested command
func (a *app) run(ctx context.Context, args []string) error {
	cli, rest, err := a.parseFlags(args)
	if err != nil {
		return err
	}

	if cli.ShowVersion {
		fmt.Fprintf(a.stdout, "chirp v%s\n", version)
		return nil
	}

	if len(rest) == 0 {
		return fmt.Errorf("no command given (expected post, generate, history or accounts)")
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "post":
		return a.runPost(ctx, cli, cfg, cmdArgs)
	case "generate":
		return a.runGenerate(ctx, cli, cfg, cmdArgs)
	case "history":
		return a.runHistory(cfg, cmdArgs)
	case "accounts":
		return a.runAccounts(cfg, cmdArgs)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// loadConfig reads the config file and applies explicitly given flags on top
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cli.set["headless"] {
		cfg.Headless = cli.Headless
	}
	if cli.set["verbose"] {
		cfg.Verbose = cli.Verbose
	}
	if cli.set["model"] {
		cfg.Model = cli.Model
	}
	if cli.set["language"] {
		cfg.Language = cli.Language
	}
	if cli.set["cache"] {
		cfg.CachePath = cli.CachePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func buildProvider(cfg *config.Config, apiKey, baseURL string) (llm.Provider, error) {
	provider, err := config.BuildProvider(cfg, apiKey, baseURL)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// managedSession closes the Playwright driver together with the session.
type managedSession struct {
	*browser.Session
	manager *browser.Manager
}

func (m *managedSession) Close() error {
	return m.manager.Shutdown()
}

func launchBrowser(cfg *config.Config, account store.Account) (browser.Driver, error) {
	if account.ProfilePath == "" {
		return nil, fmt.Errorf("account %s has no firefox profile configured", account.ID)
	}

	manager := browser.NewManager()
	if cfg.Browser.SkipInstall {
		manager.SkipInstall()
	}
	if err := manager.Initialize(); err != nil {
		return nil, err
	}

	session, err := manager.Launch(browser.SessionOptions{
		ProfileDir: account.ProfilePath,
		Headless:   cfg.Headless,
		Viewport: &browser.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
	})
	if err != nil {
		_ = manager.Shutdown()
		return nil, err
	}

	return &managedSession{Session: session, manager: manager}, nil
}
