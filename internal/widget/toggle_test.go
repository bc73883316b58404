package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleGroup(t *testing.T) {
	t.Run("single open", func(t *testing.T) {
		g := NewToggleGroup(3, true, nil)
		g.Toggle(0)
		g.Toggle(1)
		assert.Equal(t, 1, g.OpenCount())
		assert.True(t, g.IsOpen(1))

		g.SetOpen(2, true)
		assert.Equal(t, []bool{false, false, true}, g.State())

		g.Toggle(2)
		assert.Equal(t, 0, g.OpenCount())
	})
	t.Run("independent", func(t *testing.T) {
		g := NewToggleGroup(3, false, nil)
		g.Toggle(0)
		g.Toggle(1)
		assert.Equal(t, 2, g.OpenCount())
	})
	t.Run("out of range", func(t *testing.T) {
		g := NewToggleGroup(1, true, nil)
		g.Toggle(5)
		assert.Equal(t, 0, g.OpenCount())
	})
}

func TestDisclosureOutsideClick(t *testing.T) {
	var states []bool
	d := NewDisclosure(false, true, func(open bool) { states = append(states, open) })
	assert.False(t, d.Scope().Listening(TargetDocument, "click"))

	d.Toggle()
	assert.True(t, d.Open())
	assert.True(t, d.Scope().Listening(TargetDocument, "click"))

	d.DocumentClick(true)
	assert.True(t, d.Open())
	d.DocumentClick(false)
	assert.False(t, d.Open())
	assert.False(t, d.Scope().Listening(TargetDocument, "click"))
	assert.Equal(t, []bool{true, false}, states)
}

func TestDisclosureBanner(t *testing.T) {
	d := NewDisclosure(true, false, nil)
	d.DocumentClick(false)
	assert.True(t, d.Open())
	d.Close()
	assert.False(t, d.Open())
}
