package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1500, "$1,500.00"},
		{412.5, "$412.50"},
		{1234567.891, "$1,234,567.89"},
		{0.005, "$0.01"},
		{-12.5, "-$12.50"},
		{math.NaN(), "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in), "%v", tt.in)
	}
}

func TestFormatPercent2_RoundsForDisplay(t *testing.T) {
	assert.Equal(t, "50.00%", FormatPercent2(50))
	assert.Equal(t, "16.67%", FormatPercent2(500.0/3000*100))
	assert.Equal(t, "0.00%", FormatPercent2(0))
	assert.Equal(t, "16.7%", FormatPercent1(500.0/3000*100))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "1500 USD (50.00%)", ProgressLabel(1500, 50))
	assert.Equal(t, "412.5 USD (13.75%)", ProgressLabel(412.5, 13.75))
	assert.Equal(t, "Food: 16.7% (500.00 USD)", SliceLabel("Food", 500.0/3000*100, 500))
	assert.Equal(t, "Budget Breakdown for Austin", ChartTitle("Austin"))
	assert.Equal(t, "Budget Breakdown for the selected city", ChartTitle("  "))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "-1,234,567", FormatNumber(-1234567))
}

func TestRenderShareBar(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	assert.Equal(t, "█████░░░░░", RenderShareBar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", RenderShareBar(0, 10))
	assert.Equal(t, "██████████", RenderShareBar(150, 10))
	assert.Equal(t, "", RenderShareBar(50, 0))
}

func TestRenderPlan_ContainsAllSections(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	v := model.NewValidatedBreakdown([]model.RawBreakdownItem{
		{Category: "Housing", Amount: 1500},
		{Category: "Food", Amount: 500},
	})
	plan := model.Plan{
		City:       "Austin",
		Text:       "Live near downtown.",
		Allocation: pipeline.Derive(v, 3000, model.BasisDeclaredBudget),
	}

	out := RenderPlan(plan, 100)
	for _, want := range []string{
		"Budget Breakdown for Austin",
		"Live near downtown.",
		"$1,500.00",
		"16.67%",
		"1500 USD (50.00%)",
		"Housing: 50.0% (1500.00 USD)",
		"Unallocated $1,000.00",
	} {
		assert.True(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
	}
}

func TestRenderStackedBar_FillsWidth(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderStackedBar([]pipeline.Slice{
		{Name: "A", Percent: 33.3, Amount: 1},
		{Name: "B", Percent: 33.3, Amount: 1},
		{Name: "C", Percent: 33.4, Amount: 1},
	}, 20)
	first := strings.Split(out, "\n")[0]
	assert.Equal(t, 20, strings.Count(first, "█"))
}
