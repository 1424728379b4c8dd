package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a *App) moveCategoryCursor(delta int) {
	n := len(model.Catalog())
	a.catCursor += delta
	if a.catCursor < 0 {
		a.catCursor = 0
	}
	if a.catCursor >= n {
		a.catCursor = n - 1
	}
}

func (a App) updateCategoryKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.moveCategoryCursor(1)
	case "k", "up":
		a.moveCategoryCursor(-1)
	case " ", "space", "enter":
		cat := model.Catalog()[a.catCursor]
		if err := a.selection.Toggle(cat.Name); err != nil {
			a.log.Warn().Err(err).Msg("toggle")
		}
	case "a":
		a.selection.SelectAll()
	case "n":
		a.selection.Clear()
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderCategoriesTab(cw int) string {
	t := theme.Active

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	cursorStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	checkOn := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	checkOff := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	innerW := components.CardInnerWidth(cw)

	var b strings.Builder
	for i, c := range model.Catalog() {
		if i > 0 {
			b.WriteString("\n")
		}
		box := checkOff.Render("[ ]")
		if a.selection.Contains(c.Name) {
			box = checkOn.Render("[x]")
		}
		label := fmt.Sprintf(" %-*s", innerW-4, c.Label)
		if i == a.catCursor {
			b.WriteString(box + cursorStyle.Render(label))
		} else {
			b.WriteString(box + rowStyle.Render(label))
		}
	}

	title := fmt.Sprintf("Categories  %d of %d selected", a.selection.Len(), len(model.Catalog()))
	hint := mutedText("space toggle · a all · n none · g generate")
	if a.selection.Len() == 0 {
		hint = mutedText("No categories selected; the request will send an empty list.")
	}
	return components.ContentCard(title, b.String(), cw) + "\n" + hint
}
