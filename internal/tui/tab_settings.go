package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldAPIURL = iota
	settingsFieldTimeout
	settingsFieldSessionSource
	settingsFieldBasis
	settingsFieldTheme
	settingsFieldSaveHistory
	settingsFieldCity
	settingsFieldBudget
	settingsFieldCount // sentinel
)

var sessionSources = []string{"auto", "file", "redis", "env"}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
	path    string
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

// isChoice reports whether a field cycles through fixed values on enter.
func isChoice(field int) bool {
	switch field {
	case settingsFieldSessionSource, settingsFieldBasis, settingsFieldTheme, settingsFieldSaveHistory:
		return true
	}
	return false
}

func (a App) updateSettingsKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		if isChoice(a.settings.cursor) {
			a.settingsCycle()
			return a, nil, true
		}
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	case "L":
		a.settingsLogout()
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldAPIURL:
		ti.Placeholder = "http://localhost:5000"
		ti.SetValue(a.cfg.API.BaseURL)
	case settingsFieldTimeout:
		ti.Placeholder = "30s"
		ti.SetValue(a.cfg.API.Timeout.String())
	case settingsFieldCity:
		ti.Placeholder = "(empty)"
		ti.SetValue(a.cfg.Defaults.City)
	case settingsFieldBudget:
		ti.Placeholder = "(empty)"
		if a.cfg.Defaults.Budget > 0 {
			ti.SetValue(strconv.FormatFloat(a.cfg.Defaults.Budget, 'f', -1, 64))
		}
	}

	cmd := ti.Focus()
	a.settings.input = ti
	return a, cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsApplyInput()
		a.settings.editing = false
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsApplyInput validates the edited text field and saves.
func (a *App) settingsApplyInput() {
	val := strings.TrimSpace(a.settings.input.Value())
	cfg := a.cfg

	switch a.settings.cursor {
	case settingsFieldAPIURL:
		if val == "" {
			a.settingsFail(errors.New("api url cannot be empty"))
			return
		}
		cfg.API.BaseURL = val
	case settingsFieldTimeout:
		d, err := time.ParseDuration(val)
		if err != nil || d <= 0 {
			a.settingsFail(fmt.Errorf("invalid timeout %q", val))
			return
		}
		cfg.API.Timeout = config.Duration{Duration: d}
	case settingsFieldCity:
		cfg.Defaults.City = val
	case settingsFieldBudget:
		if val == "" {
			cfg.Defaults.Budget = 0
			break
		}
		in := model.ParseBudgetInput("", val)
		if !model.CanSubmit(in) {
			a.settingsFail(errors.New(model.MsgInvalidBudget))
			return
		}
		cfg.Defaults.Budget = in.TotalBudget
	}
	a.settingsSave(cfg)
}

// settingsCycle advances a choice field to its next value and saves.
func (a *App) settingsCycle() {
	cfg := a.cfg
	switch a.settings.cursor {
	case settingsFieldSessionSource:
		cfg.Session.Source = nextOf(sessionSources, cfg.Session.Source)
	case settingsFieldBasis:
		next := model.BasisBreakdownSum
		if cfg.Basis() == model.BasisBreakdownSum {
			next = model.BasisDeclaredBudget
		}
		cfg.Planner.PercentBasis = next.String()
		a.planner.SetBasis(next)
	case settingsFieldTheme:
		cfg.Appearance.Theme = theme.Next(cfg.Appearance.Theme).Name
		theme.SetActive(cfg.Appearance.Theme)
	case settingsFieldSaveHistory:
		cfg.Planner.SaveHistory = !cfg.Planner.SaveHistory
	}
	a.settingsSave(cfg)
}

func (a *App) settingsSave(cfg config.Config) {
	a.cfg = cfg
	path := a.settings.path
	if path == "" {
		path = config.ConfigPath()
	}
	a.settings.saveErr = config.SaveTo(path, cfg)
	a.settings.saved = a.settings.saveErr == nil
	if a.settings.saveErr != nil {
		a.log.Warn().Err(a.settings.saveErr).Str("path", path).Msg("saving settings")
	}
}

func (a *App) settingsFail(err error) {
	a.settings.saveErr = err
	a.settings.saved = false
}

// settingsLogout removes the stored session document.
func (a *App) settingsLogout() {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Clear(); err != nil {
		a.settingsFail(err)
		return
	}
	a.lastNotice = "Signed out"
}

func nextOf(values []string, cur string) string {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// sessionStatus describes the stored token without revealing it.
func (a App) sessionStatus() string {
	if a.sessions == nil {
		return "(no session file)"
	}
	info, err := a.sessions.Load()
	switch {
	case errors.Is(err, session.ErrNoToken):
		return "signed out"
	case err != nil:
		return "unreadable: " + err.Error()
	case strings.TrimSpace(info.Token) == "":
		return "signed out"
	}
	if err := session.CheckExpiry(info.Token, time.Now()); err != nil {
		return "token expired"
	}
	who := info.Email
	if who == "" {
		who = info.Name
	}
	if who != "" {
		return "signed in as " + who
	}
	return "signed in"
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	orEmpty := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return s
	}
	budget := "(not set)"
	if cfg.Defaults.Budget > 0 {
		budget = strconv.FormatFloat(cfg.Defaults.Budget, 'f', -1, 64)
	}

	fields := []struct{ label, value string }{
		{"API URL", cfg.API.BaseURL + "  (restart)"},
		{"Timeout", cfg.API.Timeout.String() + "  (restart)"},
		{"Session source", orEmpty(cfg.Session.Source) + "  (restart)"},
		{"Percent basis", cfg.Basis().String()},
		{"Theme", cfg.Appearance.Theme},
		{"Save history", strconv.FormatBool(cfg.Planner.SaveHistory) + "  (restart)"},
		{"Default city", orEmpty(cfg.Defaults.City)},
		{"Default budget", budget},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-16s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit or cycle  [Esc] cancel  [L] sign out"))

	sessionFile := "(none)"
	if a.sessions != nil {
		sessionFile = a.sessions.Path
	}
	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Session:       ") + valueStyle.Render(a.sessionStatus()) + "\n")
	infoBody.WriteString(labelStyle.Render("Session file:  ") + valueStyle.Render(sessionFile) + "\n")
	infoBody.WriteString(labelStyle.Render("History:       ") + valueStyle.Render(config.HistoryPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
