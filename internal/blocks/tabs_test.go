package blocks

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

func TestTabs(t *testing.T) {
	markup := `<div class="block tabs">` +
		`<div><div>One</div><div><p>first</p></div></div>` +
		`<div><div></div><div><p>second</p></div></div>` +
		`<div><div>Three</div><div><p>third</p></div></div>` +
		`</div>`
	res := decorate(t, markup, testEnv(nil, nil))
	require.NotNil(t, res.Instance)
	id := res.Instance.ID()

	selected := func() []int {
		var out []int
		for i := 0; i < 3; i++ {
			if dom.GetAttr(byID(res.Node, id+"-tab-"+strconv.Itoa(i)), "aria-selected") == "true" {
				out = append(out, i)
			}
		}
		return out
	}

	assert.Equal(t, "Tab 2", dom.TextContent(byID(res.Node, id+"-tab-1")))
	assert.Equal(t, []int{0}, selected())
	_, hidden := dom.Attr(byID(res.Node, id+"-panel-1"), "hidden")
	assert.True(t, hidden)

	act(t, res, "select", Event{Index: 2})
	assert.Equal(t, []int{2}, selected())

	patches := act(t, res, "keydown", Event{Index: 2, Key: widget.KeyArrowRight})
	assert.Equal(t, []int{0}, selected())
	_, hidden = dom.Attr(byID(res.Node, id+"-panel-0"), "hidden")
	assert.False(t, hidden)
	var focus bool
	for _, p := range patches {
		focus = focus || (p.ID == id+"-tab-0" && p.Focus)
	}
	assert.True(t, focus)

	act(t, res, "keydown", Event{Index: 0, Key: widget.KeyEnd})
	assert.Equal(t, []int{2}, selected())
}
