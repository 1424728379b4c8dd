package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

func breakdown(items ...model.RawBreakdownItem) model.ValidatedBreakdown {
	return model.NewValidatedBreakdown(items)
}

func TestDerive_DeclaredBudget(t *testing.T) {
	v := breakdown(
		model.RawBreakdownItem{Category: "Housing", Amount: 1500},
		model.RawBreakdownItem{Category: "Food", Amount: 500},
	)

	a := Derive(v, 3000, model.BasisDeclaredBudget)
	require.Len(t, a.Items, 2)
	assert.Equal(t, "Housing", a.Items[0].Name)
	assert.Equal(t, 1500.0, a.Items[0].Amount)
	assert.InDelta(t, 50.0, a.Items[0].PercentOfTotal, 1e-9)
	assert.Equal(t, "Food", a.Items[1].Name)
	assert.InDelta(t, 16.6666666, a.Items[1].PercentOfTotal, 1e-6)
	assert.Equal(t, 2000.0, a.SumOfAmounts)
	assert.Equal(t, 1000.0, a.Unallocated())
}

func TestDerive_BreakdownSum(t *testing.T) {
	v := breakdown(
		model.RawBreakdownItem{Category: "Housing", Amount: 1500},
		model.RawBreakdownItem{Category: "Food", Amount: 500},
	)

	a := Derive(v, 3000, model.BasisBreakdownSum)
	assert.InDelta(t, 75.0, a.Items[0].PercentOfTotal, 1e-9)
	assert.InDelta(t, 25.0, a.Items[1].PercentOfTotal, 1e-9)
	assert.Equal(t, model.BasisBreakdownSum, a.Basis)
}

func TestDerive_ZeroBasisGuard(t *testing.T) {
	zeros := breakdown(
		model.RawBreakdownItem{Category: "Housing", Amount: 0},
		model.RawBreakdownItem{Category: "Food", Amount: 0},
	)
	for _, it := range Derive(zeros, 0, model.BasisBreakdownSum).Items {
		assert.Zero(t, it.PercentOfTotal)
	}

	v := breakdown(model.RawBreakdownItem{Category: "Food", Amount: 10})
	for _, total := range []float64{0, -100} {
		a := Derive(v, total, model.BasisDeclaredBudget)
		assert.Zero(t, a.Items[0].PercentOfTotal, "total %v", total)
		assert.Equal(t, 10.0, a.Items[0].Amount)
	}
}

func TestDerive_OverAllocationNotNormalized(t *testing.T) {
	v := breakdown(
		model.RawBreakdownItem{Category: "Housing", Amount: 2000},
		model.RawBreakdownItem{Category: "Food", Amount: 2000},
	)
	a := Derive(v, 3000, model.BasisDeclaredBudget)
	var total float64
	for _, it := range a.Items {
		total += it.PercentOfTotal
	}
	assert.InDelta(t, 133.333333, total, 1e-5)
	assert.Equal(t, -1000.0, a.Unallocated())
}

func TestChartSeries_PreservesOrder(t *testing.T) {
	v := breakdown(
		model.RawBreakdownItem{Category: "Savings", Amount: 300},
		model.RawBreakdownItem{Category: "Housing", Amount: 1200},
	)
	s := ChartSeries(Derive(v, 1500, model.BasisDeclaredBudget))
	require.Len(t, s, 2)
	assert.Equal(t, "Savings", s[0].Name)
	assert.InDelta(t, 20.0, s[0].Percent, 1e-9)
	assert.Equal(t, 1200.0, s[1].Amount)
}
