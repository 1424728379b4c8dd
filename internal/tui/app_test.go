package tui

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/budgetapi"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/planner"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/state"
)

const austinBody = `{"budgetPlan":"Rent near downtown.","budgetBreakdown":[{"category":"Housing","amount":1500},{"category":"Food","amount":500}]}`

type fakeGen struct {
	calls atomic.Int32
	body  string
	block bool
}

func (f *fakeGen) Generate(ctx context.Context, _ budgetapi.GenerateRequest, _ string) ([]byte, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []byte(f.body), nil
}

func newTestApp(t *testing.T, gen *fakeGen) App {
	t.Helper()
	p := planner.New(gen, session.Static("tok"))
	a := NewApp(Options{
		Planner:    p,
		Config:     config.DefaultConfig(),
		Log:        zerolog.Nop(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return m.(App)
}

// drain runs cmd and any batched children, feeding planDoneMsg back into the app.
func drain(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		return a
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			a = drain(t, a, c)
		}
	case planDoneMsg:
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGenerate_Success(t *testing.T) {
	gen := &fakeGen{body: austinBody}
	a := newTestApp(t, gen)
	a.form.city.SetValue("Austin")
	a.form.budget.SetValue("3000")

	m, cmd := a.generate()
	a = m.(App)
	require.NotNil(t, cmd)
	assert.Equal(t, state.Loading, a.view.Phase)

	a = drain(t, a, cmd)
	require.Equal(t, state.Success, a.view.Phase)
	items := a.view.Items()
	require.Len(t, items, 2)
	assert.InDelta(t, 50.0, items[0].PercentOfTotal, 1e-9)

	out := a.View()
	assert.Contains(t, out, "Budget Breakdown for Austin")
	assert.Contains(t, out, "1500 USD (50.00%)")
	assert.Contains(t, out, "500 USD (16.67%)")
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestGenerate_InvalidBudget(t *testing.T) {
	gen := &fakeGen{body: austinBody}
	a := newTestApp(t, gen)
	a.form.city.SetValue("Austin")
	a.form.budget.SetValue("0")

	m, cmd := a.generate()
	a = m.(App)
	assert.Nil(t, cmd)
	assert.Equal(t, state.Failed, a.view.Phase)
	assert.Equal(t, model.MsgInvalidBudget, a.view.Message)
	assert.Zero(t, gen.calls.Load())
	assert.Contains(t, a.View(), model.MsgInvalidBudget)
}

func TestGenerate_IgnoredWhileLoading(t *testing.T) {
	gen := &fakeGen{body: austinBody}
	a := newTestApp(t, gen)
	a.form.budget.SetValue("3000")

	m, first := a.generate()
	a = m.(App)
	require.NotNil(t, first)

	m, second := a.generate()
	a = m.(App)
	assert.Nil(t, second)
	assert.Equal(t, state.Loading, a.view.Phase)

	a = drain(t, a, first)
	assert.Equal(t, state.Success, a.view.Phase)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestEscCancelsInFlight(t *testing.T) {
	gen := &fakeGen{block: true}
	a := newTestApp(t, gen)
	a.form.budget.SetValue("3000")

	m, cmd := a.generate()
	a = m.(App)
	require.NotNil(t, cmd)

	m, _ = a.Update(key("esc"))
	a = m.(App)

	a = drain(t, a, cmd)
	assert.Equal(t, state.Failed, a.view.Phase)
	assert.Equal(t, model.MsgRequestFailed, a.view.Message)
	assert.Nil(t, a.view.Plan)
}

func TestCategoryToggleKeys(t *testing.T) {
	a := newTestApp(t, &fakeGen{body: austinBody})
	a.form.blur()

	m, _ := a.Update(key("c"))
	a = m.(App)
	require.Equal(t, tabCategories, a.activeTab)

	first := model.Catalog()[0].Name
	m, _ = a.Update(key(" "))
	a = m.(App)
	assert.False(t, a.selection.Contains(first))

	m, _ = a.Update(key(" "))
	a = m.(App)
	assert.True(t, a.selection.Contains(first))

	m, _ = a.Update(key("n"))
	a = m.(App)
	assert.Zero(t, a.selection.Len())
	assert.Contains(t, a.View(), "0 of 10 selected")

	m, _ = a.Update(key("a"))
	a = m.(App)
	assert.Equal(t, len(model.Catalog()), a.selection.Len())
}

func TestFormEditing_TypesIntoInputs(t *testing.T) {
	a := newTestApp(t, &fakeGen{body: austinBody})
	require.True(t, a.form.editing)

	for _, r := range "Reno" {
		m, _ := a.Update(key(string(r)))
		a = m.(App)
	}
	assert.Equal(t, "Reno", a.form.city.Value())
	assert.Equal(t, tabBudget, a.activeTab)

	m, _ := a.Update(key("esc"))
	a = m.(App)
	assert.False(t, a.form.editing)
}

func TestSettingsCycleBasis(t *testing.T) {
	a := newTestApp(t, &fakeGen{body: austinBody})
	a.form.blur()
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldBasis

	m, _ := a.Update(key("enter"))
	a = m.(App)
	assert.Equal(t, model.BasisBreakdownSum, a.planner.Basis())
	assert.NoError(t, a.settings.saveErr)

	saved, err := config.LoadFile(a.settings.path)
	require.NoError(t, err)
	assert.Equal(t, "sum", saved.Planner.PercentBasis)
}

func TestSettingsRejectsBadTimeout(t *testing.T) {
	a := newTestApp(t, &fakeGen{body: austinBody})
	a.form.blur()
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldTimeout

	m, _ := a.Update(key("enter"))
	a = m.(App)
	require.True(t, a.settings.editing)
	a.settings.input.SetValue("soon")

	m, _ = a.Update(key("enter"))
	a = m.(App)
	assert.Error(t, a.settings.saveErr)
	assert.Equal(t, config.DefaultConfig().API.Timeout, a.cfg.API.Timeout)
}

func TestHelpOverlay(t *testing.T) {
	a := newTestApp(t, &fakeGen{body: austinBody})
	a.form.blur()

	m, _ := a.Update(key("?"))
	a = m.(App)
	assert.True(t, strings.Contains(a.View(), "Keyboard Shortcuts"))

	m, _ = a.Update(key("x"))
	a = m.(App)
	assert.False(t, a.showHelp)
	assert.Equal(t, tabBudget, a.activeTab)
}
