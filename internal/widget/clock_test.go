package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	clock := NewManualClock(epoch)
	var order []string
	clock.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })
	clock.AfterFunc(10*time.Millisecond, func() {
		order = append(order, "a")
		clock.AfterFunc(5*time.Millisecond, func() { order = append(order, "a2") })
	})
	stopped := clock.AfterFunc(15*time.Millisecond, func() { order = append(order, "never") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	clock.Advance(25 * time.Millisecond)
	assert.Equal(t, []string{"a", "a2", "b"}, order)
	assert.Equal(t, epoch.Add(25*time.Millisecond), clock.Now())
}
