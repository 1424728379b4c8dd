package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues is what the setup wizard collects.
type SetupValues struct {
	apiURL string
	token  string
	theme  string
	basis  string
}

func setupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		apiURL: cfg.API.BaseURL,
		theme:  cfg.Appearance.Theme,
		basis:  cfg.Basis().String(),
	}
}

// NewSetupValues pre-fills the wizard from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	v := setupValuesFrom(cfg)
	return &v
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter a full URL such as http://localhost:5000")
	}
	return nil
}

func newSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cbudget").
				Description("Generate a city budget plan and see how it splits across categories.\n\nA few settings first."),
			huh.NewInput().
				Title("Backend URL").
				Description("Where POST /api/budget/generate is served.").
				Value(&vals.apiURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Session token").
				Description("Bearer token from the backend. Leave empty to keep the current one.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.token),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Percentages are shares of").
				Options(
					huh.NewOption("the declared budget", model.BasisDeclaredBudget.String()),
					huh.NewOption("the sum of returned amounts", model.BasisBreakdownSum.String()),
				).
				Value(&vals.basis),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewSetupForm builds the wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	return newSetupForm(vals)
}

// saveSetup applies the answers on top of base, writes the config file at
// path and stores the token, if one was entered.
func saveSetup(vals SetupValues, base config.Config, files *session.FileStore, path string) (config.Config, error) {
	cfg := base
	cfg.API.BaseURL = strings.TrimSpace(vals.apiURL)
	if vals.theme != "" {
		cfg.Appearance.Theme = vals.theme
		theme.SetActive(vals.theme)
	}
	if vals.basis != "" {
		cfg.Planner.PercentBasis = vals.basis
	}

	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.SaveTo(path, cfg); err != nil {
		return base, fmt.Errorf("saving config: %w", err)
	}

	tok := strings.TrimSpace(vals.token)
	if tok != "" && files != nil {
		info, err := files.Load()
		if err != nil && !errors.Is(err, session.ErrNoToken) {
			info = session.UserInfo{}
		}
		info.Token = tok
		if err := files.Save(info); err != nil {
			return cfg, fmt.Errorf("saving session: %w", err)
		}
	}
	return cfg, nil
}

// SaveSetupTo writes the wizard answers to path and stores the token in files.
func SaveSetupTo(vals *SetupValues, base config.Config, files *session.FileStore, path string) (config.Config, error) {
	return saveSetup(*vals, base, files, path)
}
