package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
	ColorYellow    = lipgloss.Color("#D0A215")
	ColorMagenta   = lipgloss.Color("#CE5D97")
)

// SliceColors cycle across pie wedges and legend entries.
var SliceColors = []lipgloss.Color{
	ColorAccent, ColorBlue, ColorGreen, ColorOrange, ColorPurple,
	ColorYellow, ColorMagenta, ColorRed,
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	moneyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string // optional totals row, drawn under a separator
	Widths  []int    // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderError renders a failure message for terminal output.
func RenderError(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// RenderTable renders a bordered table with headers, rows and an optional footer.
// The first column is left-aligned, the rest right-aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}
	row := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(style.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		row(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, r := range t.Rows {
		row(r, valueStyle)
	}
	if len(t.Footer) > 0 {
		rule("├", "┼", "┤")
		row(t.Footer, headerStyle)
	}
	rule("╰", "┴", "╯")

	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(cells []string) {
		for i, cell := range cells {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	grow(t.Headers)
	for _, r := range t.Rows {
		grow(r)
	}
	grow(t.Footer)
	return widths
}

// RenderShareBar renders a text bar for a 0-100 share. Shares over 100
// fill the bar and are drawn in the warning color.
func RenderShareBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(pct) || pct < 0 {
		pct = 0
	}
	style := moneyStyle
	if pct > 100 {
		pct = 100
		style = warnStyle
	}
	filled := int(math.Round(pct / 100 * float64(width)))
	if filled > width {
		filled = width
	}
	return style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// RenderAllocationBars renders one labeled bar per category.
func RenderAllocationBars(items []model.DerivedItem, barWidth int) string {
	nameW := 0
	for _, it := range items {
		if w := lipgloss.Width(it.Name); w > nameW {
			nameW = w
		}
	}

	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "  %-*s %s %s\n",
			nameW, it.Name,
			RenderShareBar(it.PercentOfTotal, barWidth),
			mutedStyle.Render(ProgressLabel(it.Amount, it.PercentOfTotal)),
		)
	}
	return b.String()
}

// RenderStackedBar draws the pie as one horizontal strip with a legend.
func RenderStackedBar(slices []pipeline.Slice, width int) string {
	if len(slices) == 0 || width <= 0 {
		return ""
	}

	var total float64
	for _, s := range slices {
		total += math.Max(s.Percent, 0)
	}

	var strip, legend strings.Builder
	used := 0
	for i, s := range slices {
		color := SliceColors[i%len(SliceColors)]
		style := lipgloss.NewStyle().Foreground(color)

		cells := 0
		if total > 0 {
			cells = int(math.Round(math.Max(s.Percent, 0) / total * float64(width)))
		}
		if i == len(slices)-1 && total > 0 {
			cells = width - used
		}
		if used+cells > width {
			cells = width - used
		}
		used += cells
		strip.WriteString(style.Render(strings.Repeat("█", cells)))

		fmt.Fprintf(&legend, "  %s %s\n", style.Render("■"), SliceLabel(s.Name, s.Percent, s.Amount))
	}
	if used < width {
		strip.WriteString(dimStyle.Render(strings.Repeat("░", width-used)))
	}

	return "  " + strip.String() + "\n" + legend.String()
}

// RenderPlan renders a full plan: title, prose, table, bars and chart.
func RenderPlan(p model.Plan, width int) string {
	barWidth := 24
	if width > 0 && width < 80 {
		barWidth = 12
	}

	var b strings.Builder
	b.WriteString(RenderTitle(ChartTitle(p.City)))
	b.WriteString("\n\n")

	if text := strings.TrimSpace(p.Text); text != "" {
		b.WriteString(headerStyle.Render("  Budget Plan"))
		b.WriteString("\n")
		for _, line := range strings.Split(text, "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	alloc := p.Allocation
	rows := make([][]string, 0, len(alloc.Items))
	for _, it := range alloc.Items {
		rows = append(rows, []string{it.Name, FormatMoney(it.Amount), FormatPercent2(it.PercentOfTotal)})
	}
	b.WriteString(RenderTable(Table{
		Title:   "Allocation",
		Headers: []string{"Category", "Amount", "Share"},
		Rows:    rows,
		Footer:  []string{"Total", FormatMoney(alloc.SumOfAmounts), shareOfBudget(alloc)},
	}))

	if alloc.TotalBudget > 0 {
		left := alloc.Unallocated()
		label := "Unallocated"
		style := mutedStyle
		if left < 0 {
			label = "Over budget by"
			left = -left
			style = warnStyle
		}
		fmt.Fprintf(&b, "  %s\n", style.Render(fmt.Sprintf("Budget %s · %s %s",
			FormatMoney(alloc.TotalBudget), label, FormatMoney(left))))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("  Progress"))
	b.WriteString("\n")
	b.WriteString(RenderAllocationBars(alloc.Items, barWidth))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("  Breakdown"))
	b.WriteString("\n")
	b.WriteString(RenderStackedBar(pipeline.ChartSeries(alloc), barWidth*2))

	return b.String()
}

func shareOfBudget(a model.Allocation) string {
	var total float64
	for _, it := range a.Items {
		total += it.PercentOfTotal
	}
	return FormatPercent2(total)
}
