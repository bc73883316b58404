package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

const galleryMarkup = `<div class="block gallery">` +
	`<div><div><img src="/1.jpg" alt="one"></div><div>First</div></div>` +
	`<div><div>no image here</div></div>` +
	`<div><div><img src="/2.jpg" alt="two"></div></div>` +
	`<div><div><img src="/3.jpg" alt="three"></div><div>Third</div></div>` +
	`</div>`

func TestGalleryLightbox(t *testing.T) {
	res := decorate(t, galleryMarkup, testEnv(nil, nil))
	require.NotNil(t, res.Instance)
	id := res.Instance.ID()

	items := dom.FindAll(res.Node, dom.ByClass("gallery-item"))
	require.Len(t, items, 3)
	assert.Equal(t, "2", dom.GetAttr(items[2], "data-index"))

	patches := act(t, res, "open", Event{Index: 0})
	assert.True(t, dom.HasClass(byID(res.Node, id+"-lightbox"), "gallery-lightbox-open"))
	assert.Equal(t, "hidden", bodyPatch(patches).Style["overflow"])
	assert.Equal(t, "document:keydown", dom.GetAttr(res.Node, "data-listen"))

	act(t, res, "prev", Event{})
	assert.Equal(t, "/3.jpg", dom.GetAttr(byID(res.Node, id+"-lightbox-img"), "src"))
	assert.Equal(t, "Third", dom.TextContent(byID(res.Node, id+"-caption")))
	assert.Equal(t, "3 / 3", dom.TextContent(byID(res.Node, id+"-counter")))

	act(t, res, "doc-keydown", Event{Key: widget.KeyArrowRight})
	assert.Equal(t, "one", dom.GetAttr(byID(res.Node, id+"-lightbox-img"), "alt"))

	act(t, res, "backdrop", Event{Self: false})
	assert.True(t, dom.HasClass(byID(res.Node, id+"-lightbox"), "gallery-lightbox-open"))

	patches = act(t, res, "backdrop", Event{Self: true})
	assert.False(t, dom.HasClass(byID(res.Node, id+"-lightbox"), "gallery-lightbox-open"))
	assert.Equal(t, "", bodyPatch(patches).Style["overflow"])
	assert.False(t, hasAttr(res.Node, "data-listen"))
}

func TestGalleryWithoutImages(t *testing.T) {
	res := decorate(t, `<div class="block gallery"><div><div>text</div></div></div>`, testEnv(nil, nil))
	assert.Nil(t, res.Instance)
	assert.NotNil(t, dom.Find(res.Node, dom.ByClass("gallery-grid")))
}
