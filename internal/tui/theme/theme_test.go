package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName_FallsBackToFlexoki(t *testing.T) {
	assert.Equal(t, "tokyo-night", ByName("tokyo-night").Name)
	assert.Equal(t, FlexokiDark.Name, ByName("nope").Name)
}

func TestNext_Wraps(t *testing.T) {
	assert.Equal(t, CatppuccinMocha.Name, Next(FlexokiDark.Name).Name)
	assert.Equal(t, FlexokiDark.Name, Next(Terminal.Name).Name)
	assert.Equal(t, All[0].Name, Next("unknown").Name)
}

func TestKnownAndNames(t *testing.T) {
	assert.Len(t, Names(), len(All))
	assert.True(t, Known("terminal"))
	assert.False(t, Known(""))
}

func TestSliceColor_Cycles(t *testing.T) {
	n := len(FlexokiDark.Slices())
	assert.Equal(t, FlexokiDark.SliceColor(0), FlexokiDark.SliceColor(n))
	assert.Equal(t, FlexokiDark.Accent, FlexokiDark.SliceColor(0))
}
