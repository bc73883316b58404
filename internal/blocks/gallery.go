package blocks

import (
	"strconv"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

type galleryImage struct {
	content.Image
	caption string
}

type galleryBlock struct {
	base
	images []galleryImage
	w      *widget.Lightbox
}

// Gallery decorates an image grid with a lightbox. Rows without an image are
// skipped; a row's caption is its text, falling back to the image alt.
func Gallery(b *content.Block, env *Env) Result {
	root := newRoot(b)
	g := &galleryBlock{base: newBase(b)}

	grid := div("gallery-grid")
	for _, row := range b.Rows {
		var img content.Image
		found := false
		caption := ""
		for _, c := range row.Cells {
			if i, ok := c.Image(); ok && !found {
				img, found = i, true
				if c.Text() == "" {
					continue
				}
			}
			if caption == "" {
				caption = c.Text()
			}
		}
		if !found {
			continue
		}
		if caption == "" {
			caption = img.Alt
		}
		// data-index is the position among images, not the row number.
		i := len(g.images)
		g.images = append(g.images, galleryImage{Image: img, caption: caption})
		item := dom.Element("div",
			"class", "gallery-item",
			"data-index", strconv.Itoa(i),
			"data-on", "click:open",
			"role", "button",
			"tabindex", "0")
		dom.Append(item, dom.Element("img", "src", img.Src, "alt", img.Alt, "loading", "lazy"))
		dom.Append(grid, item)
	}
	dom.Append(root, grid)
	if len(g.images) == 0 {
		return Result{Node: root}
	}

	live(root)
	lightbox := dom.Element("div",
		"id", g.part("lightbox"),
		"class", "gallery-lightbox",
		"aria-hidden", "true",
		"data-on", "click:backdrop")
	dom.Append(lightbox,
		dom.Append(button("gallery-lightbox-close", "Close lightbox", "data-on", "click:close"), dom.Text("×")),
		dom.Append(button("gallery-lightbox-prev", "Previous image", "data-on", "click:prev"), dom.Text("❮")),
		dom.Append(button("gallery-lightbox-next", "Next image", "data-on", "click:next"), dom.Text("❯")),
		div("gallery-lightbox-content", dom.Element("img", "id", g.part("lightbox-img"), "src", "", "alt", "")),
		dom.Element("div", "id", g.part("caption"), "class", "gallery-lightbox-caption"),
		dom.Element("div", "id", g.part("counter"), "class", "gallery-lightbox-counter"))
	dom.Append(root, lightbox)

	g.w = widget.NewLightbox(len(g.images), g.render)
	g.track(g.w.Scope())
	return Result{Node: root, Instance: g}
}

func (g *galleryBlock) render(v widget.LightboxView) {
	g.emit(dom.On(g.part("lightbox")).
		Class("gallery-lightbox-open", v.Open).
		Bool("aria-hidden", !v.Open))
	if v.Open {
		img := g.images[v.Index]
		g.emit(
			dom.On(g.part("lightbox-img")).Attr("src", img.Src).Attr("alt", img.Alt),
			dom.On(g.part("caption")).SetText(img.caption),
			dom.On(g.part("counter")).SetText(v.Counter()))
	}
	overflow := ""
	if v.ScrollLocked() {
		overflow = "hidden"
	}
	g.emit(dom.On(dom.Body).CSS("overflow", overflow))
}

func (g *galleryBlock) Handle(action string, ev Event) error {
	switch action {
	case "open":
		g.w.Open(ev.Index)
	case "close":
		g.w.Close()
	case "next":
		g.w.Next()
	case "prev":
		g.w.Prev()
	case "backdrop":
		g.w.BackdropClick(ev.Self)
	case "doc-keydown":
		g.w.DocumentKey(ev.Key)
	default:
		return unknownAction(g.name, action)
	}
	return nil
}

func (g *galleryBlock) Destroy() {
	g.w.Destroy()
}
