package blocks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

var aspectRatio = regexp.MustCompile(`^\d+(\.\d+)?\s*/\s*\d+(\.\d+)?$`)

type slide struct {
	media    []*html.Node
	body     []*html.Node
	image    content.Image
	hasImage bool
	title    string
}

func hasMedia(c *content.Cell) bool {
	return c.Find(dom.ByTag("img", "picture", "video")) != nil
}

func isMedia(c *content.Cell) bool {
	return hasMedia(c) && c.Text() == ""
}

// readSlides reads one slide per non-empty row. The first cell is the slide
// media and the rest its content. Rows whose first cell holds no media are
// split by content instead: image-only cells become media, everything else
// content.
func readSlides(b *content.Block) []slide {
	var slides []slide
	for _, row := range b.Rows {
		var s slide
		positional := len(row.Cells) > 0 && hasMedia(row.Cells[0])
		for i, c := range row.Cells {
			if c.Empty() {
				continue
			}
			if (positional && i == 0) || (!positional && isMedia(c)) {
				s.addMedia(c)
				continue
			}
			s.body = append(s.body, c.Nodes()...)
			if s.title == "" {
				s.title = c.Heading()
			}
		}
		if len(s.media) == 0 && len(s.body) == 0 {
			continue
		}
		slides = append(slides, s)
	}
	return slides
}

func (s *slide) addMedia(c *content.Cell) {
	s.media = append(s.media, c.Nodes()...)
	if img, ok := c.Image(); ok && !s.hasImage {
		s.image, s.hasImage = img, true
	}
}

type carouselBlock struct {
	base
	hero     bool
	autoplay bool
	w        *widget.Carousel
}

// Carousel decorates a slide carousel. Each row is a slide; the autoplay
// variant adds a timer and a play/pause control. The hero variant uses the
// hero layout.
func Carousel(b *content.Block, env *Env) Result {
	return decorateCarousel(b, env, b.Has("hero"))
}

// HeroCarousel decorates a full-width carousel with thumbnail indicators and
// hover pause.
func HeroCarousel(b *content.Block, env *Env) Result {
	return decorateCarousel(b, env, true)
}

func decorateCarousel(b *content.Block, env *Env, hero bool) Result {
	root := newRoot(b)
	slides := readSlides(b)
	if len(slides) == 0 {
		return Result{Node: root}
	}

	opts := env.options()
	c := &carouselBlock{base: newBase(b), hero: hero, autoplay: b.Has("autoplay")}
	c.w = widget.NewCarousel(widget.CarouselConfig{
		Slides:         len(slides),
		Autoplay:       c.autoplay,
		Hero:           hero,
		Delay:          opts.AutoplayDelay,
		SwipeThreshold: opts.SwipeThreshold,
		Clock:          env.clock(),
		OnRender:       c.render,
	})
	c.track(c.w.Scope())

	on := []string{"keydown:keydown", "touchstart:touchstart", "touchend:touchend"}
	if hero {
		on = append(on, "mouseenter:mouseenter", "mouseleave:mouseleave")
	}
	live(root, on...)
	dom.SetAttr(root, "role", "region")
	dom.SetAttr(root, "aria-roledescription", "carousel")
	dom.SetAttr(root, "tabindex", "0")
	if c.autoplay {
		dom.SetAttr(root, "data-prevent-keys", "Space")
	}

	if hero {
		c.buildHero(root, b, slides, opts)
	} else {
		c.build(root, slides)
	}

	c.w.GoTo(0)
	c.w.Start()
	return Result{Node: root, Instance: c}
}

func (c *carouselBlock) slideNode(class string, i int, s slide) *html.Node {
	n := dom.Element("div",
		"id", c.part("slide", i),
		"class", class,
		"role", "group",
		"aria-roledescription", "slide",
		"aria-label", "Slide "+strconv.Itoa(i+1))
	if len(s.media) > 0 {
		dom.Append(n, div(class+"-media", s.media...))
	}
	if len(s.body) > 0 {
		dom.Append(n, div(class+"-content", s.body...))
	}
	return n
}

func (c *carouselBlock) build(root *html.Node, slides []slide) {
	dom.SetAttr(root, "aria-label", "Carousel")
	track := dom.Element("div", "id", c.part("track"), "class", "carousel-slides")
	for i, s := range slides {
		dom.Append(track, c.slideNode("carousel-slide", i, s))
	}
	dom.Append(root, track)

	if len(slides) > 1 {
		dom.Append(root, div("carousel-nav",
			button("carousel-btn carousel-btn-prev", "Previous slide", "data-on", "click:prev"),
			button("carousel-btn carousel-btn-next", "Next slide", "data-on", "click:next"),
		))
		indicators := dom.Element("div", "class", "carousel-indicators")
		for i := range slides {
			dom.Append(indicators, button("carousel-indicator", "Go to slide "+strconv.Itoa(i+1),
				"id", c.part("indicator", i),
				"data-index", strconv.Itoa(i),
				"data-on", "click:goto"))
		}
		dom.Append(root, indicators)
	}

	if c.autoplay {
		dom.Append(root, button("carousel-toggle", "", "id", c.part("toggle"), "data-on", "click:toggle"))
	}
}

func (c *carouselBlock) buildHero(root *html.Node, b *content.Block, slides []slide, opts Options) {
	dom.SetAttr(root, "aria-label", "Hero Carousel")
	dom.SetAttr(root, "data-layout", "")
	dom.SetStyle(root, "--carousel-delay", strconv.FormatInt(opts.AutoplayDelay.Milliseconds(), 10)+"ms")
	if ratio := strings.TrimSpace(b.Option("aspect-ratio", "")); aspectRatio.MatchString(ratio) {
		dom.SetStyle(root, "aspect-ratio", ratio)
	}

	track := dom.Element("div", "id", c.part("track"), "class", "hero-carousel-slides")
	for i, s := range slides {
		s.body = heroButtons(s.body)
		dom.Append(track, c.slideNode("hero-carousel-slide", i, s))
	}
	dom.Append(root, track)

	if len(slides) > 1 || c.autoplay {
		actions := div("hero-carousel-actions")
		if len(slides) > 1 {
			dom.Append(actions,
				button("hero-carousel-action-prev", "Previous slide", "data-on", "click:prev"),
				button("hero-carousel-action-next", "Next slide", "data-on", "click:next"))
		}
		if c.autoplay {
			dom.Append(actions, button("hero-carousel-action-toggle", "", "id", c.part("toggle"), "data-on", "click:toggle"))
		}
		dom.Append(root, actions)
	}

	container := dom.Element("div",
		"id", c.part("indicators"),
		"class", "hero-carousel-indicators-container",
		"data-layout-container", "")
	list := div("hero-carousel-indicators")
	for i, s := range slides {
		ind := button("hero-carousel-indicator", "Go to slide "+strconv.Itoa(i+1),
			"id", c.part("indicator", i),
			"data-index", strconv.Itoa(i),
			"data-on", "click:goto",
			"data-layout-item", "")
		if s.hasImage {
			thumb := dom.Element("img", "src", s.image.Src, "alt", s.image.Alt, "loading", "lazy")
			dom.Append(ind, dom.Append(dom.Element("span", "class", "hero-carousel-indicator-image"), thumb))
		}
		title := s.title
		if title == "" {
			title = "Slide " + strconv.Itoa(i+1)
		}
		dom.Append(ind, span("hero-carousel-indicator-title", title))
		dom.Append(list, ind)
	}
	dom.Append(container, list)
	dom.Append(root, container)
}

// heroButtons moves links out of their paragraphs into a button row.
func heroButtons(body []*html.Node) []*html.Node {
	holder := dom.Element("div")
	dom.Append(holder, body...)
	buttons := div("hero-carousel-buttons")
	for _, a := range dom.FindAll(holder, dom.ByTag("a")) {
		p := a.Parent
		dom.AddClass(a, "button")
		dom.Append(buttons, a)
		if p != nil && p != holder && p.Data == "p" && strings.TrimSpace(dom.TextContent(p)) == "" {
			dom.Detach(p)
		}
	}
	if buttons.FirstChild != nil {
		dom.Append(holder, buttons)
	}
	return dom.Children(holder)
}

func (c *carouselBlock) render(v widget.CarouselView) {
	prefix := "carousel"
	if c.hero {
		prefix = "hero-carousel"
	}
	c.emit(dom.On(c.part("track")).CSS("transform", v.Transform()))
	for i := 0; i < v.Count; i++ {
		active, previous := v.Indicator(i)
		c.emit(dom.On(c.part("slide", i)).
			Class(prefix+"-slide-active", active).
			Bool("aria-hidden", !active))
		ind := dom.On(c.part("indicator", i)).
			Class(prefix+"-indicator-active", active).
			Bool("aria-current", active)
		if c.hero {
			ind.Class(prefix+"-indicator-previous", previous)
		}
		c.emit(ind)
	}

	if c.autoplay {
		c.emit(dom.On(c.id).
			Class("playing", v.Playing).
			Class("paused", !v.Playing).
			Class("user-paused", v.UserPaused))
		toggle := dom.On(c.part("toggle")).Attr("aria-label", v.ToggleLabel()+" autoplay")
		if c.hero {
			toggle.Class("hero-carousel-action-pause", v.Playing).Class("hero-carousel-action-play", !v.Playing)
		} else {
			toggle.SetText(v.ToggleLabel())
		}
		c.emit(toggle)
	}

	if v.HasMarker {
		c.emit(dom.On(c.part("indicators")).CSS("--active-indicator-x-offset", fmt.Sprintf("%gpx", v.Marker)))
	}
}

func (c *carouselBlock) Handle(action string, ev Event) error {
	switch action {
	case "next":
		c.w.Next()
	case "prev":
		c.w.Prev()
	case "goto":
		c.w.GoTo(ev.Index)
	case "toggle":
		c.w.Toggle()
	case "touchstart":
		c.w.TouchStart(ev.X)
	case "touchend":
		c.w.TouchEnd(ev.X)
	case "keydown":
		c.w.KeyDown(ev.Key)
	case "mouseenter":
		c.w.MouseEnter()
	case "mouseleave":
		c.w.MouseLeave()
	case "layout":
		c.w.SetLayout(ev.Indicators, ev.Container)
	default:
		return unknownAction(c.name, action)
	}
	return nil
}

func (c *carouselBlock) Destroy() {
	c.w.Destroy()
}
