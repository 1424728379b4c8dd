package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPath()
	fmt.Printf("  Config file: %s\n", path)
	if flagConfig != "" || config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("    Timeout:  %s\n", cfg.API.Timeout)
	fmt.Println()

	fmt.Println("  [Session]")
	fmt.Printf("    Source: %s\n", cfg.Session.Source)
	fmt.Printf("    File:   %s\n", config.SessionPath(cfg))
	if cfg.Session.RedisURL != "" {
		fmt.Printf("    Redis:  %s (key %s)\n", cfg.Session.RedisURL, cfg.Session.Key)
	}
	fmt.Printf("    Token:  %s\n", describeToken(cfg))
	fmt.Println()

	fmt.Println("  [Planner]")
	fmt.Printf("    Percent basis: %s\n", cfg.Basis())
	fmt.Printf("    Save history:  %v (%s)\n", cfg.Planner.SaveHistory, config.HistoryPath())
	fmt.Println()

	fmt.Println("  [Defaults]")
	if cfg.Defaults.City != "" {
		fmt.Printf("    City:   %s\n", cfg.Defaults.City)
	} else {
		fmt.Println("    City:   not set")
	}
	if cfg.Defaults.Budget > 0 {
		fmt.Printf("    Budget: %g\n", cfg.Defaults.Budget)
	} else {
		fmt.Println("    Budget: not set")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	if name := cfg.Appearance.Theme; name != "" && !theme.Known(name) {
		fmt.Printf("    Theme: %s (unknown, using %s)\n", name, theme.FlexokiDark.Name)
	} else {
		fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `cbudget setup` to reconfigure.")
	return nil
}

// describeToken reports the token the configured source would hand out,
// masked.
func describeToken(cfg config.Config) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, closeFn, err := sessionSources(ctx, cfg, initLogger(cfg))
	if err != nil {
		return "unavailable: " + err.Error()
	}
	defer closeFn()

	tok, err := provider.Token(ctx)
	switch {
	case errors.Is(err, session.ErrNoToken):
		return "not configured"
	case err != nil:
		return "unreadable: " + err.Error()
	}
	if err := session.CheckExpiry(tok, time.Now()); err != nil {
		return maskToken(tok) + " (expired)"
	}
	return maskToken(tok)
}
