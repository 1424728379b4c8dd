package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForShare picks a color by how large a slice of the budget an entry takes.
// Entries above 100% (over-allocation) are red.
func ColorForShare(percent float64) lipgloss.Color {
	t := theme.Active
	switch {
	case percent > 100:
		return t.Red
	case percent >= 40:
		return t.Orange
	case percent >= 20:
		return t.Yellow
	default:
		return t.Green
	}
}

// AllocationBar renders one breakdown entry: name, a bar filled to its
// percent, and the "<amount> USD (<pct>%)" label.
func AllocationBar(item model.DerivedItem, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active

	frac := item.PercentOfTotal / 100
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(item.Name, labelW))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(frac) +
		spaceStyle.Render(" ") +
		valueStyle.Render(cli.ProgressLabel(item.Amount, item.PercentOfTotal))
}

// AllocationBars renders every item with its wedge color, sized to width.
func AllocationBars(items []model.DerivedItem, width int) string {
	if len(items) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	for _, it := range items {
		if w := lipgloss.Width(it.Name); w > labelW {
			labelW = w
		}
	}
	if labelW > 18 {
		labelW = 18
	}

	longest := 0
	for _, it := range items {
		if w := len(cli.ProgressLabel(it.Amount, it.PercentOfTotal)); w > longest {
			longest = w
		}
	}
	barW := width - labelW - longest - 2
	if barW > 40 {
		barW = 40
	}

	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = AllocationBar(it, t.SliceColor(i), labelW, barW)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
