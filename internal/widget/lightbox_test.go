package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightbox(t *testing.T) {
	var last LightboxView
	l := NewLightbox(3, func(v LightboxView) { last = v })

	l.Open(0)
	require.True(t, last.Open)
	assert.True(t, last.ScrollLocked())
	assert.True(t, l.Scope().Listening(TargetDocument, "keydown"))

	l.Prev()
	assert.Equal(t, 2, last.Index)
	assert.Equal(t, "3 / 3", last.Counter())

	l.DocumentKey(KeyArrowRight)
	assert.Equal(t, 0, last.Index)
	l.DocumentKey(KeyArrowLeft)
	assert.Equal(t, 2, last.Index)

	l.BackdropClick(false)
	assert.True(t, last.Open)
	l.BackdropClick(true)
	assert.False(t, last.Open)
	assert.False(t, l.Scope().Listening(TargetDocument, "keydown"))

	l.Open(1)
	l.DocumentKey(KeyEscape)
	assert.False(t, last.Open)
	assert.False(t, last.ScrollLocked())
}

func TestLightboxIgnoresKeysWhenClosed(t *testing.T) {
	calls := 0
	l := NewLightbox(3, func(LightboxView) { calls++ })
	l.DocumentKey(KeyArrowRight)
	assert.Equal(t, 0, calls)
}

func TestLightboxDestroy(t *testing.T) {
	l := NewLightbox(2, nil)
	l.Open(0)
	l.Destroy()
	assert.Empty(t, l.Scope().Listeners())
	assert.False(t, l.View().Open)
}
