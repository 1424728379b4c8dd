package pipeline

import "github.com/theirongolddev/cbudget/internal/model"

// Derive computes each entry's share of the chosen basis.
// Order and amounts are kept as returned; percentages are not rounded.
// A basis of zero or less yields 0 for every entry.
func Derive(v model.ValidatedBreakdown, totalBudget float64, basis model.PercentBasis) model.Allocation {
	items := v.Items()
	sum := Sum(items)

	base := totalBudget
	if basis == model.BasisBreakdownSum {
		base = sum
	}

	derived := make([]model.DerivedItem, len(items))
	for i, it := range items {
		d := model.DerivedItem{Name: it.Category, Amount: it.Amount}
		if base > 0 {
			d.PercentOfTotal = it.Amount / base * 100
		}
		derived[i] = d
	}

	return model.Allocation{
		Items:        derived,
		SumOfAmounts: sum,
		TotalBudget:  totalBudget,
		Basis:        basis,
	}
}

// Sum adds up breakdown amounts.
func Sum(items []model.RawBreakdownItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Amount
	}
	return total
}

// Slice is one wedge of the allocation pie.
type Slice struct {
	Name    string
	Percent float64
	Amount  float64
}

// ChartSeries converts an allocation into pie wedges in display order.
func ChartSeries(a model.Allocation) []Slice {
	out := make([]Slice, len(a.Items))
	for i, it := range a.Items {
		out[i] = Slice{Name: it.Name, Percent: it.PercentOfTotal, Amount: it.Amount}
	}
	return out
}
