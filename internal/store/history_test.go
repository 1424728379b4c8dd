package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

func openTest(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func austinPlan() model.Plan {
	return model.Plan{
		City:     "Austin",
		Selected: []string{"Housing", "Food"},
		Text:     "Live near downtown.",
		Allocation: model.Allocation{
			TotalBudget:  3000,
			SumOfAmounts: 2000,
			Basis:        model.BasisBreakdownSum,
			Items: []model.DerivedItem{
				{Name: "Housing", Amount: 1500, PercentOfTotal: 75},
				{Name: "Food", Amount: 500, PercentOfTotal: 25},
			},
		},
	}
}

func TestSaveAndGetPlan(t *testing.T) {
	ctx := context.Background()
	h := openTest(t)

	id, err := h.SavePlan(ctx, austinPlan())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := h.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, austinPlan(), rec.Plan)
	assert.False(t, rec.CreatedAt.IsZero())

	byPrefix, err := h.GetPlan(ctx, id[:13])
	require.NoError(t, err)
	assert.Equal(t, id, byPrefix.ID)
}

func TestGetPlan_NotFound(t *testing.T) {
	h := openTest(t)
	_, err := h.GetPlan(context.Background(), "0000")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.GetPlan(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPlan_AmbiguousPrefix(t *testing.T) {
	ctx := context.Background()
	h := openTest(t)
	_, err := h.SavePlan(ctx, austinPlan())
	require.NoError(t, err)
	_, err = h.SavePlan(ctx, austinPlan())
	require.NoError(t, err)

	// v7 ids share the leading hex digit within a short test window.
	recs, err := h.ListPlans(ctx, 0)
	require.NoError(t, err)
	_, err = h.GetPlan(ctx, recs[0].ID[:1])
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestListPlans_NewestFirst(t *testing.T) {
	ctx := context.Background()
	h := openTest(t)

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, city := range []string{"Austin", "Boston", "Chicago"} {
		at := base.Add(time.Duration(i) * time.Hour)
		h.now = func() time.Time { return at }
		p := austinPlan()
		p.City = city
		_, err := h.SavePlan(ctx, p)
		require.NoError(t, err)
	}

	all, err := h.ListPlans(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Chicago", all[0].City)
	assert.Equal(t, "Austin", all[2].City)
	assert.Equal(t, 2, all[0].Items)
	assert.Equal(t, 3000.0, all[0].TotalBudget)

	two, err := h.ListPlans(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	n, err := h.PlanCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListPlans_SameSecondOrdering(t *testing.T) {
	ctx := context.Background()
	h := openTest(t)

	base := time.Date(2026, 1, 1, 9, 0, 5, 0, time.UTC)
	for _, c := range []struct {
		city string
		at   time.Time
	}{
		{"Late", base.Add(500 * time.Millisecond)},
		{"Middle", base.Add(250 * time.Millisecond)},
		{"Early", base},
	} {
		at := c.at
		h.now = func() time.Time { return at }
		p := austinPlan()
		p.City = c.city
		_, err := h.SavePlan(ctx, p)
		require.NoError(t, err)
	}

	all, err := h.ListPlans(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Late", all[0].City)
	assert.Equal(t, "Middle", all[1].City)
	assert.Equal(t, "Early", all[2].City)
	assert.True(t, all[2].CreatedAt.Equal(base))
}

func TestGetPlan_PrefixIsLiteral(t *testing.T) {
	ctx := context.Background()
	h := openTest(t)
	id, err := h.SavePlan(ctx, austinPlan())
	require.NoError(t, err)

	for _, q := range []string{"%", "_", id[:4] + "%", "_" + id[1:8]} {
		_, err := h.GetPlan(ctx, q)
		assert.ErrorIs(t, err, ErrNotFound, q)
	}
}

func TestDeletePlan(t *testing.T) {
	ctx := context.Background()
	h := openTest(t)
	id, err := h.SavePlan(ctx, austinPlan())
	require.NoError(t, err)

	require.NoError(t, h.DeletePlan(ctx, id))
	_, err = h.GetPlan(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, h.DeletePlan(ctx, id), ErrNotFound)
}
