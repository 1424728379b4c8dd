package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/state"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldCity = iota
	fieldBudget
	fieldCount
)

// formState holds the city and budget inputs.
type formState struct {
	city    textinput.Model
	budget  textinput.Model
	focus   int
	editing bool
}

func newFormState(d config.DefaultsConfig) formState {
	city := textinput.New()
	city.Placeholder = "Austin"
	city.CharLimit = 120
	city.Width = 30
	city.Prompt = ""
	city.SetValue(d.City)

	budget := textinput.New()
	budget.Placeholder = "3000"
	budget.CharLimit = 20
	budget.Width = 30
	budget.Prompt = ""
	if d.Budget > 0 {
		budget.SetValue(strconv.FormatFloat(d.Budget, 'f', -1, 64))
	}

	f := formState{city: city, budget: budget, editing: true}
	if d.City != "" {
		f.focus = fieldBudget
	}
	return f
}

// focusCmd focuses the current field and returns its blink command.
func (f *formState) focusCmd() tea.Cmd {
	if !f.editing {
		return nil
	}
	f.city.Blur()
	f.budget.Blur()
	if f.focus == fieldCity {
		return f.city.Focus()
	}
	return f.budget.Focus()
}

func (f *formState) blur() {
	f.editing = false
	f.city.Blur()
	f.budget.Blur()
}

// input reads the form as typed. An unparsable budget becomes NaN.
func (f formState) input() model.BudgetInput {
	return model.ParseBudgetInput(f.city.Value(), f.budget.Value())
}

func (a App) updateFormInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			if a.cancelInFlight() {
				return a, nil
			}
			a.form.blur()
			return a, nil
		case "tab", "down", "shift+tab", "up":
			a.form.focus = (a.form.focus + 1) % fieldCount
			return a, a.form.focusCmd()
		case "enter":
			if a.form.focus == fieldCity {
				a.form.focus = fieldBudget
				return a, a.form.focusCmd()
			}
			a.form.blur()
			return a.generate()
		}
	}

	var cmd tea.Cmd
	if a.form.focus == fieldCity {
		a.form.city, cmd = a.form.city.Update(msg)
	} else {
		a.form.budget, cmd = a.form.budget.Update(msg)
	}
	return a, cmd
}

// updateBudgetKeys handles the Budget tab outside of editing.
func (a App) updateBudgetKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "e", "i", "enter":
		a.form.editing = true
		return a, a.form.focusCmd(), true
	case "p":
		a.showText = !a.showText
		a.resizePlanText()
		return a, nil, true
	case "r":
		if err := a.planner.Reset(); err == nil {
			a.view = a.planner.View()
			a.syncPlanText()
		}
		return a, nil, true
	case "j", "k", "down", "up", "pgdown", "pgup", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		a.planText, cmd = a.planText.Update(msg)
		return a, cmd, true
	}
	return a, nil, false
}

// shownPlan is the plan to render: the current result, or while loading,
// the previous one.
func (a App) shownPlan() *model.Plan {
	if a.view.Plan != nil {
		return a.view.Plan
	}
	if a.view.Phase == state.Loading {
		return a.view.Previous
	}
	return nil
}

func (a *App) syncPlanText() {
	p := a.shownPlan()
	if p == nil {
		a.planText.SetContent("")
		return
	}
	text := strings.TrimSpace(p.Text)
	if text == "" {
		text = "(no plan text)"
	}
	a.planText.SetContent(lipgloss.NewStyle().Width(a.planText.Width).Render(text))
	a.planText.GotoTop()
}

func (a *App) resizePlanText() {
	w := components.CardInnerWidth(a.contentWidth())
	h := a.height / 4
	if h < 4 {
		h = 4
	}
	a.planText.Width = w
	a.planText.Height = h
	a.syncPlanText()
}

func (a App) renderBudgetTab(cw int) string {
	var b strings.Builder
	b.WriteString(a.renderForm(cw))
	b.WriteString("\n")

	switch a.view.Phase {
	case state.Idle:
		b.WriteString(components.ContentCard("Result",
			mutedText("Enter a city and a budget, pick categories, then press g."), cw))
	case state.Failed:
		b.WriteString(renderFailure(a.view.Message, cw))
	case state.Loading:
		t := theme.Active
		loading := a.spinner.View() + lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(" Generating...")
		if a.view.Previous != nil {
			loading += "\n" + mutedText("Showing the previous plan until the new one arrives.")
		}
		b.WriteString(components.ContentCard("Result", loading, cw))
		if a.view.Previous != nil {
			b.WriteString("\n")
			b.WriteString(a.renderPlan(*a.view.Previous, cw, a.planText.View()))
		}
	case state.Success:
		if a.view.Plan != nil {
			b.WriteString(a.renderPlan(*a.view.Plan, cw, a.planText.View()))
		}
	}
	return b.String()
}

func (a App) renderForm(cw int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	focusStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	field := func(idx int, label string, in textinput.Model) string {
		ls := labelStyle
		marker := "  "
		if a.form.editing && a.form.focus == idx {
			ls = focusStyle
			marker = "▸ "
		}
		view := in.View()
		if !a.form.editing {
			view = valueStyle.Render(in.Value())
			if in.Value() == "" {
				view = dimStyle.Render(in.Placeholder)
			}
		}
		return ls.Render(fmt.Sprintf("%s%-8s", marker, label)) + view
	}

	in := a.form.input()
	var action string
	switch {
	case a.view.Phase == state.Loading:
		action = dimStyle.Render("  [g] Generating...")
	case !model.CanSubmit(in):
		action = dimStyle.Render("  [g] Generate  ") + labelStyle.Render("enter a budget above zero")
	default:
		action = focusStyle.Render("  [g] Generate")
	}

	body := strings.Join([]string{
		field(fieldCity, "City", a.form.city),
		field(fieldBudget, "Budget", a.form.budget),
		labelStyle.Render(fmt.Sprintf("  %-8s", "Picks")) +
			valueStyle.Render(fmt.Sprintf("%d of %d categories", a.selection.Len(), len(model.Catalog()))),
		action,
	}, "\n")

	if a.form.editing {
		return components.FocusCard("Plan request", body, cw)
	}
	return components.ContentCard("Plan request", body, cw)
}

// renderPlan draws a result. text is the already laid out plan prose.
func (a App) renderPlan(p model.Plan, cw int, text string) string {
	t := theme.Active
	alloc := p.Allocation

	unalloc := alloc.Unallocated()
	unallocMetric := components.Metric{Label: "Unallocated", Value: cli.FormatMoney(unalloc), Color: t.Green}
	if unalloc < 0 {
		unallocMetric = components.Metric{Label: "Over budget", Value: cli.FormatMoney(-unalloc), Color: t.Red}
	}

	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Budget", Value: cli.FormatMoney(alloc.TotalBudget), Note: model.BudgetInput{City: p.City}.DisplayCity()},
		{Label: "Allocated", Value: cli.FormatMoney(alloc.SumOfAmounts), Note: fmt.Sprintf("%d categories", len(alloc.Items))},
		unallocMetric,
		largestMetric(alloc),
	}, cw)

	slices := pipeline.ChartSeries(alloc)
	var charts string
	if a.isCompactLayout() {
		charts = components.ContentCard("Allocation", components.AllocationBars(alloc.Items, components.CardInnerWidth(cw)), cw) +
			"\n" + components.ContentCard(cli.ChartTitle(p.City), components.PieWithLegend(slices, 5, components.CardInnerWidth(cw)), cw)
	} else {
		widths := components.LayoutRow(cw, 2)
		charts = components.CardRow([]string{
			components.ContentCard("Allocation", components.AllocationBars(alloc.Items, components.CardInnerWidth(widths[0])), widths[0]),
			components.ContentCard(cli.ChartTitle(p.City), components.PieWithLegend(slices, 6, components.CardInnerWidth(widths[1])), widths[1]),
		})
	}

	out := metrics + "\n" + charts
	if a.showText {
		out += "\n" + components.ContentCard("Plan  [p] hide", text, cw)
	} else {
		out += "\n" + components.ContentCard("Plan  [p] show", mutedText("hidden"), cw)
	}
	return out
}

// largestMetric shows the biggest share, colored by its size.
func largestMetric(alloc model.Allocation) components.Metric {
	m := components.Metric{Label: "Largest", Value: "-", Note: "of " + alloc.Basis.String()}
	if len(alloc.Items) == 0 {
		return m
	}
	top := alloc.Items[0]
	for _, it := range alloc.Items[1:] {
		if it.PercentOfTotal > top.PercentOfTotal {
			top = it
		}
	}
	m.Value = fmt.Sprintf("%.1f%%", top.PercentOfTotal)
	m.Note = top.Name + ", of " + alloc.Basis.String()
	m.Color = components.ColorForShare(top.PercentOfTotal)
	return m
}

func renderFailure(msg string, cw int) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	return components.ContentCard("Result", style.Render(msg), cw)
}

func mutedText(s string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(s)
}
