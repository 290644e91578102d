package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-assistant/internal/backend"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/flows"
	"github.com/jonathan/job-assistant/internal/logging"
	"github.com/jonathan/job-assistant/internal/markdown"
	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/jonathan/job-assistant/internal/rendering"
	"github.com/jonathan/job-assistant/internal/state"
)

// cliDefaults are the built-in defaults for terminal commands. Flow logs
// would interleave with the printed results, so only warnings are shown.
func cliDefaults() config.Config {
	defaults := config.Defaults()
	defaults.Logging.Level = "warn"
	return defaults
}

// cliConfig loads configuration for terminal commands: config file values
// fill in the defaults, then the environment and global flags override.
func cliConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := cliDefaults()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg.MergeWithDefaults(cliDefaults())
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	applyGlobalFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyGlobalFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("backend-url") {
		cfg.Backend.URL = backendURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
}

// assistant runs flows for a single terminal visitor.
type assistant struct {
	runner   *flows.Runner
	session  *flows.Session
	printer  *observability.Printer
	markdown *markdown.Renderer
	logger   *zap.Logger
	db       *db.DB
}

func newAssistant(ctx context.Context, cfg *config.Config, out io.Writer) (*assistant, error) {
	logger, err := logging.New(cfg.Logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := backend.NewClient(backend.Options{
		BaseURL:           cfg.Backend.URL,
		Timeout:           cfg.Backend.Timeout.Std(),
		Retries:           cfg.Backend.Retries,
		UserAgent:         cfg.Backend.UserAgent,
		ValidateResponses: cfg.Backend.ValidateResponses,
	}, logger.Named("backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	a := &assistant{
		printer:  observability.NewPrinter(out),
		markdown: markdown.New(markdown.Options{Sanitize: cfg.Markdown.Sanitize}),
		logger:   logger,
	}

	var opts []flows.RunnerOption
	if cfg.Database.URL != "" {
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		a.db = database
		opts = append(opts, flows.WithRecorder(database))
	}

	a.runner = flows.NewRunner(flows.NewController(rendering.New(a.markdown)), logger, opts...)
	a.session = flows.NewSession("cli-"+uuid.NewString(), client)
	return a, nil
}

// Close flushes the logger and closes the flow log.
func (a *assistant) Close() {
	_ = a.logger.Sync()
	if a.db != nil {
		a.db.Close()
	}
}

func (a *assistant) state() state.State {
	return a.session.Store.Snapshot()
}

// check returns the first error notice of view as an error.
func check(view flows.View) error {
	for _, n := range view.Notices {
		if n.Kind == feedback.KindError {
			return errors.New(n.Text)
		}
	}
	return nil
}

// save writes the download produced by get into dir and returns its path.
func (a *assistant) save(dir string, get func(state.State) (flows.Download, error)) (string, error) {
	d, err := a.runner.Download(a.session, get)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, d.Filename)
	if err := os.WriteFile(path, []byte(d.Body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
