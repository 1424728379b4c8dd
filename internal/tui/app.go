// Package tui provides the interactive Bubble Tea front end for cbudget.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/planner"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/state"
	"github.com/theirongolddev/cbudget/internal/store"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// planDoneMsg is sent when a request cycle has resolved.
type planDoneMsg struct {
	cycle   state.Cycle
	applied bool
}

// Options wires the app to its collaborators.
type Options struct {
	Planner   *planner.Planner
	History   *store.History     // nil disables the History tab
	Sessions  *session.FileStore // where the setup wizard stores a token
	Config    config.Config
	NeedSetup bool
	Log       zerolog.Logger
	// ConfigPath is where the Settings tab writes; empty means config.ConfigPath().
	ConfigPath string
}

// App is the root Bubble Tea model.
type App struct {
	planner  *planner.Planner
	history  *store.History
	sessions *session.FileStore
	cfg      config.Config
	log      zerolog.Logger

	// Snapshot of the planner state, refreshed after every transition.
	view   state.View
	cancel context.CancelFunc

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	form       formState
	selection  model.Selection
	catCursor  int
	planText   viewport.Model
	showText   bool
	hist       historyState
	settings   settingsState
	spinner    spinner.Model
	lastNotice string

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

const (
	minTerminalWidth = 70
	compactWidth     = 110
	maxContentWidth  = 160

	minContentHeight = 5
)

const (
	tabBudget = iota
	tabCategories
	tabHistory
	tabSettings
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	vp := viewport.New(60, 8)

	a := App{
		planner:   opts.Planner,
		history:   opts.History,
		sessions:  opts.Sessions,
		cfg:       opts.Config,
		log:       opts.Log,
		view:      opts.Planner.View(),
		form:      newFormState(opts.Config.Defaults),
		selection: model.DefaultSelection(),
		planText:  vp,
		showText:  true,
		spinner:   sp,
		settings:  settingsState{input: newSettingsInput(), path: opts.ConfigPath},
		needSetup: opts.NeedSetup,
	}
	a.form.focusCmd()
	if a.needSetup {
		a.setupVals = NewSetupValues(opts.Config)
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	} else if a.form.editing {
		cmds = append(cmds, textinput.Blink)
	}
	if a.history != nil {
		cmds = append(cmds, loadHistoryCmd(a.history))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.resizePlanText()
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case planDoneMsg:
		if a.cancel != nil {
			a.cancel()
			a.cancel = nil
		}
		a.view = a.planner.View()
		a.syncPlanText()
		if !msg.applied {
			return a, nil
		}
		if a.view.Phase == state.Success && a.history != nil && a.cfg.Planner.SaveHistory {
			return a, loadHistoryCmd(a.history)
		}
		return a, nil

	case historyLoadedMsg:
		return a.applyHistory(msg), nil

	case historyDetailMsg:
		return a.applyHistoryDetail(msg), nil

	case spinner.TickMsg:
		if a.view.Phase != state.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.form.editing {
		return a.updateFormInput(msg)
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if a.activeTab == tabBudget && a.form.editing {
		return a.updateFormInput(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// esc cancels an in-flight request from any tab.
	if key == "esc" && a.cancelInFlight() {
		return a, nil
	}

	// Generate works from the Budget and Categories tabs.
	if key == "g" && (a.activeTab == tabBudget || a.activeTab == tabCategories) {
		return a.generate()
	}

	switch a.activeTab {
	case tabBudget:
		if m, cmd, ok := a.updateBudgetKeys(msg); ok {
			return m, cmd
		}
	case tabCategories:
		if m, cmd, ok := a.updateCategoryKeys(key); ok {
			return m, cmd
		}
	case tabHistory:
		if m, cmd, ok := a.updateHistoryKeys(key); ok {
			return m, cmd
		}
	case tabSettings:
		if m, cmd, ok := a.updateSettingsKeys(key); ok {
			return m, cmd
		}
	}

	if key == "q" {
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit
	}

	switch key {
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.activeTab == tabBudget && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown) {
		var cmd tea.Cmd
		a.planText, cmd = a.planText.Update(msg)
		return a, cmd
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		switch a.activeTab {
		case tabCategories:
			a.moveCategoryCursor(-1)
		case tabHistory:
			a.moveHistoryCursor(-1)
		}
		return a, nil

	case tea.MouseButtonWheelDown:
		switch a.activeTab {
		case tabCategories:
			a.moveCategoryCursor(1)
		case tabHistory:
			a.moveHistoryCursor(1)
		}
		return a, nil

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
				if tab != tabBudget {
					a.form.blur()
				}
				a.activeTab = tab
			}
		}
		return a, nil
	}
	return a, nil
}

// generate starts a request cycle. A trigger while a request is in flight
// is dropped; an invalid budget goes straight to Failed.
func (a App) generate() (tea.Model, tea.Cmd) {
	in := a.form.input()
	c, err := a.planner.Begin(in)
	a.view = a.planner.View()
	if err != nil {
		a.syncPlanText()
		return a, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	sel := a.selection.Clone()
	a.lastNotice = ""

	return a, tea.Batch(a.spinner.Tick, runPlanCmd(ctx, a.planner, c, in, sel))
}

// cancelInFlight aborts the running request, if any.
func (a App) cancelInFlight() bool {
	if a.view.Phase != state.Loading || a.cancel == nil {
		return false
	}
	a.cancel()
	return true
}

func runPlanCmd(ctx context.Context, p *planner.Planner, c state.Cycle, in model.BudgetInput, sel model.Selection) tea.Cmd {
	return func() tea.Msg {
		applied := p.Run(ctx, c, in, sel)
		return planDoneMsg{cycle: c, applied: applied}
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, err := saveSetup(*a.setupVals, a.cfg, a.sessions, a.settings.path)
		if err != nil {
			a.lastNotice = "Setup not saved: " + err.Error()
			a.log.Warn().Err(err).Msg("saving setup")
		} else {
			a.cfg = cfg
			a.planner.SetBasis(cfg.Basis())
			a.lastNotice = "Setup saved"
		}
		a.needSetup = false
		a.setupForm = nil
		return a, a.form.focusCmd()

	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, a.form.focusCmd()
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cbudget needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"b c h x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move / scroll"},
		}},
		{"Budget", []struct{ key, desc string }{
			{"e Enter", "Edit city and budget"},
			{"g", "Generate plan"},
			{"Esc", "Cancel request / stop editing"},
			{"p", "Show / hide plan text"},
			{"r", "Clear result"},
		}},
		{"Categories", []struct{ key, desc string }{
			{"Space", "Toggle category"},
			{"a n", "Select all / none"},
		}},
		{"History", []struct{ key, desc string }{
			{"Enter", "Open plan"},
			{"d", "Delete plan"},
			{"r", "Reload"},
		}},
		{"General", []struct{ key, desc string }{
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusHints(), a.status())

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabBudget:
		content = a.renderBudgetTab(cw)
	case tabCategories:
		content = a.renderCategoriesTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) status() components.Status {
	st := components.Status{
		Phase: a.view.Phase.String(),
		Basis: a.planner.Basis().String(),
	}
	switch a.view.Phase {
	case state.Loading:
		st.Busy = a.spinner.View()
		st.Message = "Generating..."
	case state.Failed:
		st.Message = a.view.Message
	default:
		st.Message = a.lastNotice
	}
	return st
}

func (a App) statusHints() string {
	switch {
	case a.form.editing:
		return "[tab]next field  [enter]generate  [esc]done"
	case a.settings.editing:
		return "[enter]save  [esc]cancel"
	case a.view.Phase == state.Loading:
		return "[esc]cancel  [?]help  [q]uit"
	}
	return "[g]enerate  [?]help  [q]uit"
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
