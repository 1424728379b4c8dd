package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/logx"
	"github.com/theirongolddev/cbudget/internal/tui"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive planner (default)",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so log to a file.
	var out io.Writer = io.Discard
	if f, ferr := logx.OpenFile(config.LogPath()); ferr == nil {
		defer f.Close()
		out = f
	}
	log, err := logx.Init(logx.Options{Level: cfg.Log.Level, Format: "json", Output: out})
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
	}

	if err := applyTheme(cfg.Appearance.Theme); err != nil {
		log.Warn().Err(err).Msg("using default theme")
	}

	// Force TrueColor so background styling produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	a, err := newApp(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	app := tui.NewApp(tui.Options{
		Planner:    a.planner,
		History:    a.history,
		Sessions:   a.files,
		Config:     cfg,
		NeedSetup:  flagConfig == "" && !config.Exists(),
		Log:        log,
		ConfigPath: configPath(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// applyTheme activates the named theme. An unknown name falls back to the
// default theme and is reported.
func applyTheme(name string) error {
	if name != "" && !theme.Known(name) {
		theme.SetActive("")
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(theme.Names(), ", "))
	}
	theme.SetActive(name)
	return nil
}
