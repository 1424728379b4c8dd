package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		budget float64
		want   bool
	}{
		{3000, true},
		{0.01, true},
		{0, false},
		{-5, false},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}
	for _, tt := range tests {
		got := CanSubmit(BudgetInput{City: "Austin", TotalBudget: tt.budget})
		assert.Equal(t, tt.want, got, "budget %v", tt.budget)
	}
}

func TestCheckInput(t *testing.T) {
	assert.NoError(t, CheckInput(BudgetInput{City: "Austin", TotalBudget: 3000}))
	assert.NoError(t, CheckInput(BudgetInput{TotalBudget: 3000}))
	assert.NoError(t, CheckInput(BudgetInput{City: strings.Repeat("é", MaxCityLen), TotalBudget: 1}))

	assert.ErrorIs(t, CheckInput(BudgetInput{City: "Austin"}), ErrInvalidBudget)
	assert.ErrorIs(t, CheckInput(BudgetInput{City: "Austin", TotalBudget: math.Inf(1)}), ErrInvalidBudget)
	assert.ErrorIs(t, CheckInput(BudgetInput{City: strings.Repeat("a", MaxCityLen+1), TotalBudget: 3000}), ErrCityTooLong)

	// budget is reported first when both are wrong
	assert.ErrorIs(t, CheckInput(BudgetInput{City: strings.Repeat("a", 200)}), ErrInvalidBudget)

	assert.Equal(t, MsgCityTooLong, UserMessage(Fail(KindInput, ErrCityTooLong)))
}

func TestParseBudgetInput(t *testing.T) {
	in := ParseBudgetInput("  Austin ", "$3,000")
	assert.Equal(t, "Austin", in.City)
	assert.Equal(t, 3000.0, in.TotalBudget)

	bad := ParseBudgetInput("Austin", "lots")
	assert.True(t, math.IsNaN(bad.TotalBudget))
	assert.False(t, CanSubmit(bad))

	empty := ParseBudgetInput("", "")
	assert.False(t, CanSubmit(empty))
	assert.Equal(t, "the selected city", empty.DisplayCity())
}

func TestParsePercentBasis(t *testing.T) {
	b, err := ParsePercentBasis("sum")
	assert.NoError(t, err)
	assert.Equal(t, BasisBreakdownSum, b)

	b, err = ParsePercentBasis("")
	assert.NoError(t, err)
	assert.Equal(t, BasisDeclaredBudget, b)

	_, err = ParsePercentBasis("median")
	assert.Error(t, err)
}

func TestUserMessage_DistinctPerKind(t *testing.T) {
	cause := errors.New("boom")
	msgs := map[string]bool{}
	for _, k := range []FailureKind{KindInput, KindAuth, KindNetwork, KindMalformed} {
		m := UserMessage(Fail(k, cause))
		assert.NotEmpty(t, m)
		msgs[m] = true
	}
	assert.Len(t, msgs, 4)

	assert.Equal(t, MsgInvalidBudget, UserMessage(Fail(KindInput, cause)))
	assert.Equal(t, MsgInvalidResponse, UserMessage(Fail(KindMalformed, cause)))
	assert.Equal(t, "", UserMessage(nil))
}

func TestUserMessage_NetworkVariants(t *testing.T) {
	assert.Equal(t, MsgTimedOut, UserMessage(Fail(KindNetwork, fmt.Errorf("post: %w", context.DeadlineExceeded))))
	assert.Equal(t, MsgRateLimited, UserMessage(Fail(KindNetwork, ErrRateLimited)))
	assert.Equal(t, MsgRequestFailed, UserMessage(errors.New("unclassified")))
}

func TestFailure_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := fmt.Errorf("wrapped: %w", Fail(KindAuth, cause))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindAuth, KindOf(err))
}

func TestAllocation_Unallocated(t *testing.T) {
	a := Allocation{TotalBudget: 3000, SumOfAmounts: 2000}
	assert.Equal(t, 1000.0, a.Unallocated())
}
