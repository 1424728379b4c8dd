package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/store"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const historyLimit = 50

// historyState tracks the History tab.
type historyState struct {
	items  []store.Summary
	cursor int
	detail *store.Record
	err    error
}

// historyLoadedMsg carries a fresh listing.
type historyLoadedMsg struct {
	items []store.Summary
	err   error
}

// historyDetailMsg carries one opened plan.
type historyDetailMsg struct {
	rec store.Record
	err error
}

func loadHistoryCmd(h *store.History) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		items, err := h.ListPlans(ctx, historyLimit)
		return historyLoadedMsg{items: items, err: err}
	}
}

func openPlanCmd(h *store.History, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rec, err := h.GetPlan(ctx, id)
		return historyDetailMsg{rec: rec, err: err}
	}
}

func deletePlanCmd(h *store.History, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.DeletePlan(ctx, id); err != nil {
			return historyLoadedMsg{err: err}
		}
		items, err := h.ListPlans(ctx, historyLimit)
		return historyLoadedMsg{items: items, err: err}
	}
}

func (a App) applyHistory(msg historyLoadedMsg) App {
	a.hist.err = msg.err
	if msg.err != nil {
		a.log.Warn().Err(msg.err).Msg("loading history")
		return a
	}
	a.hist.items = msg.items
	if a.hist.cursor >= len(a.hist.items) {
		a.hist.cursor = len(a.hist.items) - 1
	}
	if a.hist.cursor < 0 {
		a.hist.cursor = 0
	}
	if a.hist.detail != nil && !containsPlan(a.hist.items, a.hist.detail.ID) {
		a.hist.detail = nil
	}
	return a
}

func (a App) applyHistoryDetail(msg historyDetailMsg) App {
	a.hist.err = msg.err
	if msg.err != nil {
		return a
	}
	rec := msg.rec
	a.hist.detail = &rec
	return a
}

func containsPlan(items []store.Summary, id string) bool {
	for _, s := range items {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (a *App) moveHistoryCursor(delta int) {
	a.hist.cursor += delta
	if a.hist.cursor >= len(a.hist.items) {
		a.hist.cursor = len(a.hist.items) - 1
	}
	if a.hist.cursor < 0 {
		a.hist.cursor = 0
	}
}

func (a App) updateHistoryKeys(key string) (tea.Model, tea.Cmd, bool) {
	if a.history == nil {
		return a, nil, false
	}
	switch key {
	case "j", "down":
		a.moveHistoryCursor(1)
	case "k", "up":
		a.moveHistoryCursor(-1)
	case "enter":
		if len(a.hist.items) == 0 {
			return a, nil, true
		}
		return a, openPlanCmd(a.history, a.hist.items[a.hist.cursor].ID), true
	case "esc":
		a.hist.detail = nil
	case "d":
		if len(a.hist.items) == 0 {
			return a, nil, true
		}
		return a, deletePlanCmd(a.history, a.hist.items[a.hist.cursor].ID), true
	case "r":
		return a, loadHistoryCmd(a.history), true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderHistoryTab(cw, h int) string {
	if a.history == nil {
		return components.ContentCard("History", mutedText("History is disabled."), cw)
	}
	t := theme.Active

	var b strings.Builder
	if a.hist.err != nil {
		b.WriteString(renderFailure(a.hist.err.Error(), cw))
		b.WriteString("\n")
	}

	if len(a.hist.items) == 0 {
		b.WriteString(components.ContentCard("History", mutedText("No saved plans yet."), cw))
		return b.String()
	}

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	cursorStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	listH := h / 3
	if listH < 3 {
		listH = 3
	}
	offset := 0
	if a.hist.cursor >= listH {
		offset = a.hist.cursor - listH + 1
	}

	innerW := components.CardInnerWidth(cw)
	var rows []string
	for i := offset; i < len(a.hist.items) && i < offset+listH; i++ {
		s := a.hist.items[i]
		line := fmt.Sprintf("%-8s  %-16s  %-20s  %14s  %2d items",
			shortID(s.ID),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncStr(s.City, 20),
			cli.FormatMoney(s.TotalBudget),
			s.Items)
		line = fmt.Sprintf("%-*s", innerW, line)
		if i == a.hist.cursor {
			rows = append(rows, cursorStyle.Render(line))
		} else {
			rows = append(rows, rowStyle.Render(line))
		}
	}

	budgets := make([]float64, 0, len(a.hist.items))
	for i := len(a.hist.items) - 1; i >= 0; i-- {
		budgets = append(budgets, a.hist.items[i].TotalBudget)
	}
	trend := dimStyle.Render("budgets ") + components.Sparkline(budgets, t.Accent)

	title := fmt.Sprintf("History  %d plans", len(a.hist.items))
	b.WriteString(components.ContentCard(title, strings.Join(rows, "\n")+"\n\n"+trend, cw))

	if a.hist.detail != nil {
		b.WriteString("\n")
		text := lipgloss.NewStyle().Width(components.CardInnerWidth(cw)).Render(strings.TrimSpace(a.hist.detail.Plan.Text))
		b.WriteString(a.renderPlan(a.hist.detail.Plan, cw, text))
	} else {
		b.WriteString("\n")
		b.WriteString(mutedText("enter open · d delete · r reload"))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
