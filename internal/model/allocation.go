package model

import (
	"fmt"
	"strings"
)

// RawBreakdownItem is one untrusted entry of a backend breakdown.
type RawBreakdownItem struct {
	Category string  `json:"category" validate:"required"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}

// ValidatedBreakdown is a non-empty, fully checked breakdown in backend order.
// Only the pipeline validator constructs one with items.
type ValidatedBreakdown struct {
	items []RawBreakdownItem
}

// NewValidatedBreakdown wraps items that have already passed validation.
func NewValidatedBreakdown(items []RawBreakdownItem) ValidatedBreakdown {
	cp := make([]RawBreakdownItem, len(items))
	copy(cp, items)
	return ValidatedBreakdown{items: cp}
}

// Items returns a copy of the breakdown entries.
func (v ValidatedBreakdown) Items() []RawBreakdownItem {
	cp := make([]RawBreakdownItem, len(v.items))
	copy(cp, v.items)
	return cp
}

// Len returns the number of entries.
func (v ValidatedBreakdown) Len() int { return len(v.items) }

// DerivedItem is a breakdown entry with its share of the percent basis.
type DerivedItem struct {
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	PercentOfTotal float64 `json:"percentOfTotal"`
}

// PercentBasis selects the denominator for PercentOfTotal.
type PercentBasis int

const (
	// BasisDeclaredBudget divides by the budget the user entered.
	BasisDeclaredBudget PercentBasis = iota
	// BasisBreakdownSum divides by the sum of returned amounts.
	BasisBreakdownSum
)

func (b PercentBasis) String() string {
	switch b {
	case BasisBreakdownSum:
		return "sum"
	default:
		return "declared"
	}
}

// ParsePercentBasis accepts "declared" or "sum" (and a few aliases).
func ParsePercentBasis(s string) (PercentBasis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "declared", "budget":
		return BasisDeclaredBudget, nil
	case "sum", "breakdown":
		return BasisBreakdownSum, nil
	}
	return BasisDeclaredBudget, fmt.Errorf("unknown percent basis %q (want declared or sum)", s)
}

// Allocation is the derived result of one successful request cycle.
type Allocation struct {
	Items        []DerivedItem
	SumOfAmounts float64
	TotalBudget  float64
	Basis        PercentBasis
}

// Unallocated is the declared budget minus the returned amounts.
// It can be negative when the backend over-allocates.
func (a Allocation) Unallocated() float64 {
	return a.TotalBudget - a.SumOfAmounts
}

// Plan is a complete successful result: backend prose plus derived items.
type Plan struct {
	City       string
	Selected   []string
	Text       string
	Allocation Allocation
}
