package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

func TestAngleFraction_Clockwise(t *testing.T) {
	assert.InDelta(t, 0.0, angleFraction(0, -1), 1e-9)
	assert.InDelta(t, 0.25, angleFraction(1, 0), 1e-9)
	assert.InDelta(t, 0.5, angleFraction(0, 1), 1e-9)
	assert.InDelta(t, 0.75, angleFraction(-1, 0), 1e-9)
}

func TestPieWedges(t *testing.T) {
	theme.SetActive("flexoki-dark")

	w := pieWedges([]pipeline.Slice{{Name: "Housing", Percent: 50}, {Name: "Food", Percent: 25}})
	if assert.Len(t, w, 2) {
		assert.InDelta(t, 0.5, w[0].end, 1e-9)
		assert.InDelta(t, 0.75, w[1].end, 1e-9)
	}

	over := pieWedges([]pipeline.Slice{{Name: "A", Percent: 150}, {Name: "B", Percent: 50}})
	if assert.Len(t, over, 2) {
		assert.InDelta(t, 1.0, over[1].end, 1e-9)
	}

	assert.Nil(t, pieWedges([]pipeline.Slice{{Name: "Zero", Percent: 0}}))
}

func TestPieChart_Shape(t *testing.T) {
	theme.SetActive("flexoki-dark")

	full := PieChart([]pipeline.Slice{{Name: "Housing", Percent: 100, Amount: 3000}}, 4)
	lines := strings.Split(full, "\n")
	assert.Len(t, lines, 9)
	for _, l := range lines {
		assert.Equal(t, 17, lipgloss.Width(l))
	}
	assert.Contains(t, full, "█")
	assert.NotContains(t, full, "░")

	empty := PieChart(nil, 4)
	assert.Contains(t, empty, "░")
	assert.NotContains(t, empty, "█")

	half := PieChart([]pipeline.Slice{{Name: "Housing", Percent: 50}}, 4)
	assert.Contains(t, half, "█")
	assert.Contains(t, half, "░")
}

func TestPieLegend_Labels(t *testing.T) {
	legend := PieLegend([]pipeline.Slice{
		{Name: "Housing", Percent: 50, Amount: 1500},
		{Name: "Food", Percent: 100.0 / 6, Amount: 500},
	}, 60)
	assert.Contains(t, legend, "Housing: 50.0% (1500.00 USD)")
	assert.Contains(t, legend, "Food: 16.7% (500.00 USD)")
}

func TestAllocationBars_ShowProgressLabel(t *testing.T) {
	theme.SetActive("flexoki-dark")

	out := AllocationBars(testItems(), 80)
	assert.Contains(t, out, "1500 USD (50.00%)")
	assert.Contains(t, out, "500 USD (16.67%)")
	assert.Len(t, strings.Split(out, "\n"), 2)
	assert.Empty(t, AllocationBars(nil, 80))
}

func TestColorForShare(t *testing.T) {
	th := theme.ByName("flexoki-dark")
	theme.Active = th
	assert.Equal(t, th.Green, ColorForShare(5))
	assert.Equal(t, th.Red, ColorForShare(120))
}

func testItems() []model.DerivedItem {
	return []model.DerivedItem{
		{Name: "Housing", Amount: 1500, PercentOfTotal: 50},
		{Name: "Food", Amount: 500, PercentOfTotal: 100.0 / 6},
	}
}
