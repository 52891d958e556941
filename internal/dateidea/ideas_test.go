package dateidea

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomUsesSource(t *testing.T) {
	picker := NewPicker(func(n int) int { return n - 1 })

	i, idea := picker.Random()
	assert.Equal(t, Count()-1, i)
	want, ok := Idea(i)
	assert.True(t, ok)
	assert.Equal(t, want, idea)
}

func TestRandomDefaultSourceInRange(t *testing.T) {
	var picker *Picker
	for n := 0; n < 100; n++ {
		i, idea := picker.Random()
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, Count())
		assert.NotEmpty(t, idea)
	}
}

func TestIdeaBounds(t *testing.T) {
	_, ok := Idea(-1)
	assert.False(t, ok)
	_, ok = Idea(Count())
	assert.False(t, ok)
}
