package blocks

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

const headerMarkup = `<div class="block header" data-banner="Big news" data-regions="US DE" data-contact="/contact-us">` +
	`<div><div><p><a href="/">Brand</a></p></div></div>` +
	`<div><div><ul><li>Products<ul><li><a href="/a">A</a></li></ul></li><li><a href="/about">About</a></li><li>Services<ul><li><a href="/s">S</a></li></ul></li></ul></div></div>` +
	`</div>`

func TestHeaderStructure(t *testing.T) {
	res := decorate(t, headerMarkup, testEnv(nil, nil))
	require.NotNil(t, res.Instance)
	id := res.Instance.ID()

	assert.Equal(t, "Brand", dom.TextContent(dom.Find(res.Node, dom.ByClass("nav-brand"))))
	drops := dom.FindAll(res.Node, dom.ByClass("nav-drop"))
	assert.Len(t, drops, 2)
	assert.Equal(t, "0", dom.GetAttr(drops[0], "tabindex"))
	assert.NotNil(t, dom.Find(res.Node, dom.ByClass("nav-submenu")))
	assert.Equal(t, "has-announcement", dom.GetAttr(res.Node, "data-body-class"))
	assert.Equal(t, "/de", dom.GetAttr(dom.FindAll(byID(res.Node, id+"-region"), dom.ByTag("a"))[1], "href"))
	assert.Equal(t, "document:keydown nav:focusout", dom.GetAttr(res.Node, "data-listen"))
	assert.Equal(t, "true", dom.GetAttr(byID(res.Node, id+"-nav"), "aria-expanded"))
}

func TestHeaderDesktopDropdowns(t *testing.T) {
	res := decorate(t, headerMarkup, testEnv(nil, nil))
	id := res.Instance.ID()

	act(t, res, "section", Event{Index: 0})
	assert.Equal(t, "true", dom.GetAttr(byID(res.Node, id+"-section-0"), "aria-expanded"))

	act(t, res, "section-key", Event{Index: 2, Key: widget.KeyEnter})
	assert.Equal(t, "false", dom.GetAttr(byID(res.Node, id+"-section-0"), "aria-expanded"))
	assert.Equal(t, "true", dom.GetAttr(byID(res.Node, id+"-section-2"), "aria-expanded"))

	patches := act(t, res, "doc-keydown", Event{Key: widget.KeyEscape})
	assert.Equal(t, "false", dom.GetAttr(byID(res.Node, id+"-section-2"), "aria-expanded"))
	focused := false
	for _, p := range patches {
		if p.ID == id+"-section-2" && p.Focus {
			focused = true
		}
	}
	assert.True(t, focused, "escape returns focus to the section heading")
}

func TestHeaderMobileMenu(t *testing.T) {
	res := decorate(t, headerMarkup, testEnv(nil, nil))
	id := res.Instance.ID()

	act(t, res, "viewport", Event{Width: 600})
	assert.Equal(t, "false", dom.GetAttr(byID(res.Node, id+"-nav"), "aria-expanded"))
	assert.False(t, hasAttr(res.Node, "data-listen"))
	assert.Equal(t, "", dom.GetAttr(dom.FindAll(res.Node, dom.ByClass("nav-drop"))[0], "tabindex"))

	patches := act(t, res, "toggle", Event{})
	assert.Equal(t, "true", dom.GetAttr(byID(res.Node, id+"-nav"), "aria-expanded"))
	assert.Equal(t, "Close navigation", dom.GetAttr(byID(res.Node, id+"-hamburger"), "aria-label"))
	require.NotNil(t, bodyPatch(patches))
	assert.Equal(t, "hidden", bodyPatch(patches).Style["overflow-y"])
	assert.Equal(t, "document:keydown nav:focusout", dom.GetAttr(res.Node, "data-listen"))

	for i := 0; i < 3; i++ {
		assert.Equal(t, "true", dom.GetAttr(byID(res.Node, id+"-section-"+strconv.Itoa(i)), "aria-expanded"),
			"section %d is expanded in the open mobile menu", i)
	}

	act(t, res, "section", Event{Index: 0})
	assert.Equal(t, "true", dom.GetAttr(byID(res.Node, id+"-section-0"), "aria-expanded"))

	patches = act(t, res, "focusout", Event{Inside: false})
	assert.Equal(t, "false", dom.GetAttr(byID(res.Node, id+"-nav"), "aria-expanded"))
	assert.Equal(t, "", bodyPatch(patches).Style["overflow-y"])
	for i := 0; i < 3; i++ {
		assert.Equal(t, "false", dom.GetAttr(byID(res.Node, id+"-section-"+strconv.Itoa(i)), "aria-expanded"))
	}
}

func TestHeaderTools(t *testing.T) {
	res := decorate(t, headerMarkup, testEnv(nil, nil))
	id := res.Instance.ID()

	act(t, res, "tool", Event{Tool: "region"})
	assert.False(t, dom.HasClass(byID(res.Node, id+"-region"), "hidden"))
	assert.Contains(t, dom.GetAttr(res.Node, "data-listen"), "document:click")

	act(t, res, "doc-click", Event{Tool: "region"})
	assert.False(t, dom.HasClass(byID(res.Node, id+"-region"), "hidden"))
	act(t, res, "doc-click", Event{})
	assert.True(t, dom.HasClass(byID(res.Node, id+"-region"), "hidden"))
	assert.NotContains(t, dom.GetAttr(res.Node, "data-listen"), "document:click")

	act(t, res, "tool", Event{Tool: "search"})
	assert.False(t, dom.HasClass(byID(res.Node, id+"-search"), "hidden"))

	patches := act(t, res, "banner-close", Event{})
	assert.True(t, dom.HasClass(byID(res.Node, id+"-banner"), "hidden"))
	assert.Contains(t, bodyPatch(patches).RemoveClass, "has-announcement")
}

func TestHeaderDestroyReleasesListeners(t *testing.T) {
	res := decorate(t, headerMarkup, testEnv(nil, nil))
	res.Instance.Destroy()
	patches := res.Instance.Flush()
	require.Len(t, patches, 1)
	assert.Equal(t, []string{"data-listen"}, patches[0].Unset)
}

const navFragment = `<p><a href="/">Brand</a></p><ul><li>Products<ul><li><a href="/a">A</a></li></ul></li><li><a href="/about">About</a></li></ul>`

func TestHeaderLoadsNavFragment(t *testing.T) {
	f := &fakeFetcher{fragments: map[string]string{"/nav.plain.html": navFragment}}
	res := decorate(t, `<div class="block header"></div>`, testEnv(nil, f))
	id := res.Instance.ID()

	assert.Equal(t, "Brand", dom.TextContent(byID(res.Node, id+"-brand")))
	require.NotNil(t, byID(res.Node, id+"-section-0"))
	assert.True(t, dom.HasClass(byID(res.Node, id+"-section-0"), "nav-drop"))
}

func TestHeaderNavFragmentArrivesLater(t *testing.T) {
	runs := &deferredRuns{}
	f := &fakeFetcher{fragments: map[string]string{"/nav.plain.html": navFragment}}
	env := testEnv(nil, f)
	env.Async = runs.async
	res := decorate(t, `<div class="block header"></div>`, env)
	id := res.Instance.ID()
	assert.Nil(t, byID(res.Node, id+"-section-0"))

	runs.drain()
	dom.Apply(res.Node, res.Instance.Flush())
	require.NotNil(t, byID(res.Node, id+"-section-0"))
	assert.Equal(t, "Brand", dom.TextContent(byID(res.Node, id+"-brand")))
	assert.Equal(t, "0", dom.GetAttr(byID(res.Node, id+"-section-0"), "tabindex"))

	act(t, res, "section", Event{Index: 0})
	assert.Equal(t, "true", dom.GetAttr(byID(res.Node, id+"-section-0"), "aria-expanded"))
}
