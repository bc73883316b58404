package blocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

func TestParseStat(t *testing.T) {
	tests := []struct {
		in     string
		prefix string
		n      int
		suffix string
	}{
		{"$1,200+", "$", 1200, "+"},
		{"800", "", 800, ""},
		{"99%", "", 99, "%"},
		{"n/a", "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			prefix, n, suffix := parseStat(counterValue, tt.in)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.suffix, suffix)
		})
	}

	_, n, suffix := parseStat(statValue, "60 NPS")
	assert.Equal(t, 60, n)
	assert.Equal(t, " NPS", suffix)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "1,234,567", groupThousands(1234567))
	assert.Equal(t, "-12,000", groupThousands(-12000))
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"75%", 75},
		{"3/4", 75},
		{"150", 100},
		{"150%", 150},
		{"1/0", 0},
		{"abc", 0},
		{"42.5", 42.5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, parsePercent(tt.in), 1e-9)
		})
	}
}

func TestCounterAnimatesOnce(t *testing.T) {
	clock := widget.NewManualClock(epoch)
	markup := `<div class="block counter">` +
		`<div><div>$1,200+</div><div>Customers</div></div>` +
		`<div><div>40</div><div>Countries</div></div>` +
		`</div>`
	res := decorate(t, markup, testEnv(clock, nil))
	require.NotNil(t, res.Instance)
	id := res.Instance.ID()

	assert.Equal(t, "0.5", dom.GetAttr(res.Node, "data-observe"))
	assert.Equal(t, "$", dom.TextContent(dom.Find(res.Node, dom.ByClass("counter-prefix"))))
	assert.Equal(t, "0", dom.TextContent(byID(res.Node, id+"-number-0")))

	act(t, res, "visible", Event{})
	assert.Greater(t, clock.Pending(), 0)

	clock.Advance(time.Second)
	dom.Apply(res.Node, res.Instance.Flush())
	mid := dom.TextContent(byID(res.Node, id+"-number-0"))
	assert.NotEqual(t, "0", mid)
	assert.NotEqual(t, "1,200", mid)

	clock.Advance(2 * time.Second)
	dom.Apply(res.Node, res.Instance.Flush())
	assert.Equal(t, "1,200", dom.TextContent(byID(res.Node, id+"-number-0")))
	assert.Equal(t, "40", dom.TextContent(byID(res.Node, id+"-number-1")))
	assert.Equal(t, 0, clock.Pending())

	assert.Empty(t, act(t, res, "visible", Event{}))
	assert.Equal(t, 0, clock.Pending())
}

func TestCounterDestroyCancelsFrames(t *testing.T) {
	clock := widget.NewManualClock(epoch)
	res := decorate(t, `<div class="block stat-block"><div><div>800+</div></div></div>`, testEnv(clock, nil))
	require.NotNil(t, res.Instance)
	act(t, res, "visible", Event{})
	require.Greater(t, clock.Pending(), 0)

	res.Instance.Destroy()
	assert.Equal(t, 0, clock.Pending())
	res.Instance.Flush()
	clock.Advance(time.Minute)
	assert.Empty(t, res.Instance.Flush())
}

func TestProgressBarRevealsOnce(t *testing.T) {
	markup := `<div class="block progress-bar">` +
		`<div><div>Design</div><div>3/4</div></div>` +
		`<div><div>Build</div><div>250</div></div>` +
		`</div>`
	res := decorate(t, markup, testEnv(nil, nil))
	require.NotNil(t, res.Instance)
	id := res.Instance.ID()

	values := dom.FindAll(res.Node, dom.ByClass("progress-value"))
	require.Len(t, values, 2)
	assert.Equal(t, "75%", dom.TextContent(values[0]))
	assert.Equal(t, "100%", dom.TextContent(values[1]))
	assert.Equal(t, "0%", dom.Style(byID(res.Node, id+"-fill-0"), "width"))

	act(t, res, "visible", Event{})
	assert.Equal(t, "75%", dom.Style(byID(res.Node, id+"-fill-0"), "width"))
	assert.Equal(t, "100%", dom.Style(byID(res.Node, id+"-fill-1"), "width"))
	assert.Empty(t, act(t, res, "visible", Event{}))
}
