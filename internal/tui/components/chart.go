package components

import (
	"math"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// Wedge boundaries as fractions of the full circle.
type wedge struct {
	end   float64
	color lipgloss.Color
}

// pieWedges turns slice percentages into cumulative wedge ends.
// When the shares add up to less than 100 the remainder is left as a gap;
// when they add up to more, they are scaled to fill the circle.
func pieWedges(slices []pipeline.Slice) []wedge {
	t := theme.Active

	total := 0.0
	for _, s := range slices {
		if s.Percent > 0 {
			total += s.Percent
		}
	}
	if total <= 0 {
		return nil
	}
	scale := 100.0
	if total > 100 {
		scale = total
	}

	wedges := make([]wedge, 0, len(slices))
	acc := 0.0
	for i, s := range slices {
		if s.Percent <= 0 {
			continue
		}
		acc += s.Percent / scale
		wedges = append(wedges, wedge{end: acc, color: t.SliceColor(i)})
	}
	return wedges
}

// PieChart draws slices as a filled circle of the given radius in rows.
// Terminal cells are about twice as tall as wide, so each row spans
// 4*radius+1 columns. Wedges start at twelve o'clock and run clockwise.
func PieChart(slices []pipeline.Slice, radius int) string {
	if radius < 2 {
		radius = 2
	}
	t := theme.Active
	wedges := pieWedges(slices)

	bg := lipgloss.NewStyle().Background(t.Surface)
	gap := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	r := float64(radius) + 0.5
	cols := 4*radius + 1

	var b strings.Builder
	for row := -radius; row <= radius; row++ {
		if row > -radius {
			b.WriteString("\n")
		}
		for col := 0; col < cols; col++ {
			dx := float64(col-2*radius) / 2
			dy := float64(row)
			if dx*dx+dy*dy > r*r {
				b.WriteString(bg.Render(" "))
				continue
			}
			frac := angleFraction(dx, dy)
			color, ok := wedgeAt(wedges, frac)
			if !ok {
				b.WriteString(gap.Render("░"))
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render("█"))
		}
	}
	return b.String()
}

// angleFraction maps a point to [0, 1): 0 at twelve o'clock, clockwise.
func angleFraction(dx, dy float64) float64 {
	a := math.Atan2(dx, -dy)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a / (2 * math.Pi)
}

func wedgeAt(wedges []wedge, frac float64) (lipgloss.Color, bool) {
	for _, w := range wedges {
		if frac < w.end {
			return w.color, true
		}
	}
	return "", false
}

// PieLegend lists each slice with its color swatch and label,
// "<name>: <pct>% (<amount> USD)".
func PieLegend(slices []pipeline.Slice, width int) string {
	t := theme.Active
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(slices))
	for i, s := range slices {
		swatch := lipgloss.NewStyle().Foreground(t.SliceColor(i)).Background(t.Surface).Render("■")
		label := truncate(cli.SliceLabel(s.Name, s.Percent, s.Amount), width-2)
		lines[i] = swatch + space.Render(" ") + text.Render(label)
	}
	return strings.Join(lines, "\n")
}

// PieWithLegend places the pie and its legend side by side.
func PieWithLegend(slices []pipeline.Slice, radius, width int) string {
	t := theme.Active
	pie := PieChart(slices, radius)
	legendW := width - lipgloss.Width(pie) - 3
	if legendW < 16 {
		return pie + "\n\n" + PieLegend(slices, width)
	}
	sep := lipgloss.NewStyle().Background(t.Surface).Render("   ")
	return lipgloss.JoinHorizontal(lipgloss.Center, pie, sep, PieLegend(slices, legendW))
}
