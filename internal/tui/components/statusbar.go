package components

import (
	"strings"

	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the status bar shows on its right side.
type Status struct {
	Phase   string // idle, loading, success, failed
	Message string
	Basis   string
	Busy    string // spinner frame while a request is in flight
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, hints string, st Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	phaseColor := t.TextMuted
	switch st.Phase {
	case "loading":
		phaseColor = t.Yellow
	case "success":
		phaseColor = t.Green
	case "failed":
		phaseColor = t.Red
	}
	phaseStyle := lipgloss.NewStyle().Foreground(phaseColor).Background(t.Surface).Bold(true)

	left := base.Render(" " + hints)

	var right strings.Builder
	if st.Busy != "" {
		right.WriteString(st.Busy)
		right.WriteString(base.Render(" "))
	}
	if st.Message != "" {
		right.WriteString(phaseStyle.Render(st.Message))
	} else if st.Phase != "" {
		right.WriteString(phaseStyle.Render(st.Phase))
	}
	if st.Basis != "" {
		right.WriteString(dim.Render("  basis:" + st.Basis))
	}
	right.WriteString(base.Render(" "))

	r := right.String()
	padding := width - lipgloss.Width(left) - lipgloss.Width(r)
	if padding < 0 {
		padding = 0
	}

	bar := left + base.Render(strings.Repeat(" ", padding)) + r
	return lipgloss.NewStyle().Background(t.Surface).MaxWidth(width).Render(bar)
}
