// Package cmd implements the cbudget CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/budgetapi"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/logx"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/planner"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagAPIURL   string
	flagTimeout  time.Duration
	flagBasis    string
	flagLogLevel string
	flagQuiet    bool
	flagNoSave   bool
)

var rootCmd = &cobra.Command{
	Use:           "cbudget",
	Short:         "City budget planner",
	Long:          "Generate a city budget plan from the planner backend and see how it splits across categories.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// errReported marks a failure the command already printed. It only sets
// the exit status.
var errReported = errors.New("failure already reported")

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	if errors.Is(err, errReported) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Backend base URL")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout (default 30s)")
	rootCmd.PersistentFlags().StringVar(&flagBasis, "basis", "", "Percentages are shares of: declared or sum")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoSave, "no-history", false, "Do not record successful plans")
}

// configPath is the file settings are read from and written to.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

// loadConfig reads the config file, the environment and then the
// persistent flags, in increasing precedence.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig == "" {
		cfg, err = config.Load()
	} else {
		config.LoadDotEnv(".env")
		cfg, err = config.LoadFile(flagConfig)
		if err == nil {
			err = config.ApplyEnv(&cfg)
		}
	}
	if err != nil {
		return cfg, err
	}

	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagTimeout > 0 {
		cfg.API.Timeout = config.Duration{Duration: flagTimeout}
	}
	if flagBasis != "" {
		cfg.Planner.PercentBasis = flagBasis
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagNoSave {
		cfg.Planner.SaveHistory = false
	}
	return cfg, cfg.Validate()
}

// initLogger installs the process logger. Commands that print to stdout
// log to stderr.
func initLogger(cfg config.Config) zerolog.Logger {
	logger, err := logx.Init(logx.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
		logger, _ = logx.Init(logx.Options{Output: os.Stderr})
	}
	return logger
}

// sessionSources assembles the token provider selected by cfg.Session.Source.
// The returned cleanup closes any connection opened along the way.
func sessionSources(ctx context.Context, cfg config.Config, log zerolog.Logger) (session.Provider, func(), error) {
	noop := func() {}
	files := session.NewFileStore(config.SessionPath(cfg))
	env := session.EnvProvider{Var: "CBUDGET_TOKEN"}

	redisStore := func() (session.Provider, func(), error) {
		rdb, err := session.NewRedisClient(ctx, session.RedisConfig{
			URL:         cfg.Session.RedisURL,
			DialTimeout: 3 * time.Second,
		})
		if err != nil {
			return nil, noop, err
		}
		return session.NewRedisStore(rdb, cfg.Session.Key), func() { _ = rdb.Close() }, nil
	}

	switch strings.ToLower(cfg.Session.Source) {
	case "file":
		return files, noop, nil
	case "env":
		return env, noop, nil
	case "redis":
		if cfg.Session.RedisURL == "" {
			return nil, noop, errors.New("session source is redis but no redis_url is configured")
		}
		return redisStore()
	case "", "auto":
		chain := session.Chain{env, files}
		if cfg.Session.RedisURL == "" {
			return chain, noop, nil
		}
		rs, closeFn, err := redisStore()
		if err != nil {
			log.Warn().Err(err).Msg("redis session store unavailable, skipping")
			return chain, noop, nil
		}
		return append(chain, rs), closeFn, nil
	default:
		return nil, noop, fmt.Errorf("unknown session source %q", cfg.Session.Source)
	}
}

// openHistory opens the plan history when enabled. A failure is logged and
// history is disabled for the run.
func openHistory(cfg config.Config, log zerolog.Logger) *store.History {
	if !cfg.Planner.SaveHistory {
		return nil
	}
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		log.Warn().Err(err).Str("path", config.HistoryPath()).Msg("history unavailable")
		return nil
	}
	return h
}

// app bundles what every generating command needs.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	planner *planner.Planner
	history *store.History
	files   *session.FileStore
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires the client, token source, history and planner from cfg.
func newApp(ctx context.Context, cfg config.Config, log zerolog.Logger) (*app, error) {
	sessions, closeSessions, err := sessionSources(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		log:     log,
		files:   session.NewFileStore(config.SessionPath(cfg)),
		closers: []func(){closeSessions},
	}

	client := budgetapi.NewClient(cfg.API.BaseURL,
		budgetapi.WithTimeout(cfg.API.Timeout.Duration),
		budgetapi.WithLogger(log),
	)

	opts := []planner.Option{
		planner.WithBasis(cfg.Basis()),
		planner.WithLogger(log),
	}
	if h := openHistory(cfg, log); h != nil {
		a.history = h
		a.closers = append(a.closers, func() { _ = h.Close() })
		opts = append(opts, planner.WithRecorder(h))
	}
	a.planner = planner.New(client, sessions, opts...)
	return a, nil
}

// parseSelection builds the category picks from --only and --exclude.
func parseSelection(only, exclude []string) (model.Selection, error) {
	sel := model.DefaultSelection()
	if len(only) > 0 {
		s, err := model.NewSelection(only...)
		if err != nil {
			return sel, err
		}
		sel = s
	}
	for _, name := range exclude {
		if !sel.Contains(name) {
			if _, ok := model.LookupCategory(name); !ok {
				return sel, fmt.Errorf("unknown category %q", name)
			}
			continue
		}
		if err := sel.Toggle(name); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

func maskToken(tok string) string {
	if len(tok) > 16 {
		return tok[:8] + "..." + tok[len(tok)-4:]
	}
	if len(tok) > 4 {
		return tok[:4] + "..."
	}
	return "****"
}
