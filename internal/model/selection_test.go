package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelection_AllCategories(t *testing.T) {
	s := DefaultSelection()
	require.Equal(t, len(Catalog()), s.Len())
	for _, c := range Catalog() {
		assert.True(t, s.Contains(c.Name), c.Name)
	}
}

func TestToggle_Involution(t *testing.T) {
	s := DefaultSelection()
	before := s.Clone()

	require.NoError(t, s.Toggle("Food"))
	assert.False(t, s.Contains("Food"))
	assert.Equal(t, before.Len()-1, s.Len())

	require.NoError(t, s.Toggle("Food"))
	assert.True(t, s.Equal(before))
}

func TestToggle_UnknownLeavesSelectionUnchanged(t *testing.T) {
	s, err := NewSelection("Housing", "Savings")
	require.NoError(t, err)
	before := s.Clone()

	err = s.Toggle("Yachts")
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.True(t, s.Equal(before))
}

func TestToggle_ZeroValue(t *testing.T) {
	var s Selection
	require.NoError(t, s.Toggle("Fitness"))
	assert.Equal(t, []string{"Fitness"}, s.Names())
}

func TestNames_CatalogOrder(t *testing.T) {
	s, err := NewSelection("Savings", "Housing", "Food")
	require.NoError(t, err)
	assert.Equal(t, []string{"Housing", "Food", "Savings"}, s.Names())
}

func TestNewSelection_RejectsUnknown(t *testing.T) {
	_, err := NewSelection("Housing", "Pets")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestClear_AllowsEmpty(t *testing.T) {
	s := DefaultSelection()
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Names())
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].Name = "Mutated"
	_, ok := LookupCategory("Housing")
	assert.True(t, ok)
	assert.Equal(t, "Housing", Catalog()[0].Name)
}
