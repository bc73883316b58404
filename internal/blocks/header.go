package blocks

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/security"
	"github.com/livetemplate/blockkit/internal/widget"
)

type headerBlock struct {
	base
	env       *Env
	src       *html.Node
	destroyed bool
	sections  []bool
	nav       *widget.Nav
	search    *widget.Disclosure
	region    *widget.Disclosure
	banner    *widget.Disclosure
}

// Header decorates the site header: brand, navigation sections with desktop
// dropdowns, a mobile menu toggle, tools and an optional announcement banner.
// The navigation is read from the block's first list; when the block has
// none it is loaded from the fragment named by data-nav (default "/nav").
func Header(b *content.Block, env *Env) Result {
	h := &headerBlock{base: newBase(b), env: env}
	src := blockSource(b)
	if dom.Find(src, dom.ByTag("ul")) == nil && env != nil && env.Fetcher != nil {
		h.loadNav(b.Option("nav", "/nav") + ".plain.html")
		if h.src != nil {
			src = h.src
		}
	}

	root := newRoot(b)
	live(root)
	dom.SetAttr(root, "data-breakpoint", strconv.Itoa(env.options().Breakpoint))

	wrapper := div("header-wrapper")
	if text := b.Option("banner", ""); text != "" {
		dom.Append(wrapper, h.bannerNode(text, b.Option("banner-link", "#")))
		dom.SetAttr(root, "data-body-class", "has-announcement")
	}

	nav := dom.Element("nav",
		"id", h.part("nav"),
		"aria-expanded", "false",
		"data-on", "focusout:focusout")
	hamburger := dom.Element("button",
		"type", "button",
		"id", h.part("hamburger"),
		"aria-controls", h.part("nav"),
		"aria-label", "Open navigation",
		"data-on", "click:toggle")
	dom.Append(hamburger, dom.Element("span", "class", "nav-hamburger-icon"))
	dom.Append(nav, div("nav-hamburger", hamburger))

	brand := dom.Element("div", "id", h.part("brand"), "class", "nav-brand")
	dom.Append(brand, h.brandNodes(src)...)
	dom.Append(nav, brand)

	sections := dom.Element("div", "id", h.part("sections"), "class", "nav-sections")
	dom.Append(sections, h.sectionNodes(src)...)
	dom.Append(nav, sections)
	dom.Append(nav, h.toolsNode(b))

	dom.Append(wrapper, div("main-header", div("nav-wrapper", nav)))
	dom.Append(root, wrapper)

	h.nav = widget.NewNav(widget.NavConfig{
		Dropdowns:  h.sections,
		Breakpoint: env.options().Breakpoint,
		OnRender:   h.render,
	})
	h.search = widget.NewDisclosure(false, false, h.renderSearch)
	h.region = widget.NewDisclosure(false, true, h.renderRegion)
	h.banner = widget.NewDisclosure(true, false, h.renderBanner)
	h.track(h.nav.Scope(), h.search.Scope(), h.region.Scope(), h.banner.Scope())
	h.render(h.nav.View())
	return Result{Node: root, Instance: h}
}

// blockSource collects the block content into one container.
func blockSource(b *content.Block) *html.Node {
	src := dom.Element("div")
	for _, row := range b.Rows {
		for _, c := range row.Cells {
			dom.Append(src, c.Nodes()...)
		}
	}
	return src
}

// loadNav fetches the nav fragment. A fragment that arrives before the
// header is built becomes its source; a later one replaces the brand and
// sections of the live header.
func (h *headerBlock) loadNav(path string) {
	fetch(h.env, func(ctx context.Context, f Fetcher) (string, error) {
		return f.Fragment(ctx, path)
	}, func(body string, err error) {
		if err != nil {
			h.env.logger().Warn("nav fragment unavailable", zap.String("path", path), zap.Error(err))
			return
		}
		src := dom.Element("div")
		if err := dom.SetInnerHTML(src, body); err != nil {
			h.env.logger().Warn("nav fragment unreadable", zap.String("path", path), zap.Error(err))
			return
		}
		if h.nav == nil {
			h.src = src
			return
		}
		if h.destroyed {
			return
		}
		h.sections = nil
		h.emit(
			dom.On(h.part("brand")).SetHTML(renderNodes(h.brandNodes(src))),
			dom.On(h.part("sections")).SetHTML(renderNodes(h.sectionNodes(src))))
		h.nav.SetSections(h.sections)
	})
}

func (h *headerBlock) brandNodes(src *html.Node) []*html.Node {
	if a := dom.Find(src, dom.ByTag("a")); a != nil && dom.Closest(a, dom.ByTag("ul")) == nil {
		return []*html.Node{div("brand-link-wrapper", dom.Clone(a))}
	}
	return nil
}

func (h *headerBlock) sectionNodes(src *html.Node) []*html.Node {
	if list := dom.Find(src, dom.ByTag("ul")); list != nil {
		return []*html.Node{h.menuNode(list)}
	}
	return nil
}

func renderNodes(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(dom.Render(n))
	}
	return sb.String()
}

func (h *headerBlock) menuNode(list *html.Node) *html.Node {
	menu := dom.Clone(list)
	dom.SetAttr(menu, "class", "nav-menu")
	i := 0
	for _, li := range dom.Children(menu) {
		if li.Data != "li" {
			continue
		}
		drop := false
		for _, child := range dom.Children(li) {
			if child.Data == "ul" {
				dom.AddClass(child, "nav-submenu")
				drop = true
				break
			}
		}
		dom.SetAttr(li, "id", h.part("section", i))
		dom.SetAttr(li, "data-index", strconv.Itoa(i))
		dom.SetAttr(li, "aria-expanded", "false")
		if drop {
			dom.AddClass(li, "nav-drop")
			dom.SetAttr(li, "data-on", "click:section keydown:section-key")
			dom.SetAttr(li, "data-prevent-keys", "Enter Space")
		}
		h.sections = append(h.sections, drop)
		i++
	}
	return menu
}

func (h *headerBlock) toolsNode(b *content.Block) *html.Node {
	tools := div("nav-tools")

	toggle := button("search-toggle", "Toggle Search",
		"id", h.part("search-toggle"),
		"aria-expanded", "false",
		"data-tool", "search",
		"data-on", "click:tool")
	form := dom.Element("form", "action", b.Option("search", "/search"), "method", "get")
	dom.Append(form,
		dom.Element("input", "id", h.part("search-input"), "type", "text", "name", "q",
			"placeholder", "What can we help you find?", "aria-label", "Search"),
		dom.Element("button", "type", "submit", "aria-label", "Submit search"))
	searchForm := dom.Element("div", "id", h.part("search"), "class", "search-form hidden")
	dom.Append(tools, div("nav-search", toggle, dom.Append(searchForm, form)))

	if regions := strings.Fields(strings.ReplaceAll(b.Option("regions", ""), ",", " ")); len(regions) > 0 {
		regionToggle := button("region-toggle", "Select region",
			"id", h.part("region-toggle"),
			"aria-expanded", "false",
			"data-tool", "region",
			"data-on", "click:tool")
		dom.Append(regionToggle, span("region-current", regions[0]))
		list := dom.Element("ul")
		for i, r := range regions {
			href := "/" + strings.ToLower(r)
			if i == 0 {
				href = "/"
			}
			a := dom.Append(dom.Element("a", "href", href), dom.Text(r))
			if i == 0 {
				dom.AddClass(a, "active")
			}
			dom.Append(list, dom.Append(dom.Element("li"), a))
		}
		dropdown := dom.Element("div", "id", h.part("region"), "class", "region-dropdown hidden")
		region := dom.Element("div", "class", "nav-region", "data-tool", "region")
		dom.Append(tools, dom.Append(region, regionToggle, dom.Append(dropdown, list)))
	}

	if href, ok := security.SafeLink(b.Option("contact", "")); ok {
		contact := dom.Append(dom.Element("a", "href", href, "class", "contact-button"), dom.Text("Contact Us"))
		dom.Append(tools, div("nav-contact", contact))
	}
	return tools
}

func (h *headerBlock) bannerNode(text, link string) *html.Node {
	href, ok := security.SafeLink(link)
	if !ok {
		href = "#"
	}
	a := dom.Element("a", "href", href, "class", "announcement-link")
	dom.Append(a, span("announcement-text", text))
	banner := dom.Element("div", "id", h.part("banner"), "class", "announcement-banner")
	return dom.Append(banner, a,
		button("announcement-close", "Close the alert bar", "data-on", "click:banner-close"))
}

func (h *headerBlock) render(v widget.NavView) {
	h.emit(dom.On(h.part("nav")).Bool("aria-expanded", v.Expanded))

	ham := dom.On(h.part("hamburger")).Attr("aria-label", v.ToggleLabel())
	if v.Focus == widget.FocusToggle {
		ham.Focused()
	}
	h.emit(ham)

	for i, drop := range h.sections {
		p := dom.On(h.part("section", i)).Bool("aria-expanded", v.SectionExpanded(i))
		if drop {
			if v.DropsFocusable {
				p.Attr("tabindex", "0")
			} else {
				p.Remove("tabindex")
			}
			if v.Focus == widget.FocusSection && v.FocusIndex == i {
				p.Focused()
			}
		}
		h.emit(p)
	}

	overflow := ""
	if v.ScrollLocked {
		overflow = "hidden"
	}
	h.emit(dom.On(dom.Body).CSS("overflow-y", overflow))
}

func (h *headerBlock) renderSearch(open bool) {
	h.emit(
		dom.On(h.part("search")).Class("hidden", !open),
		dom.On(h.part("search-toggle")).Bool("aria-expanded", open))
	if open {
		h.emit(dom.On(h.part("search-input")).Focused())
	}
}

func (h *headerBlock) renderRegion(open bool) {
	h.emit(
		dom.On(h.part("region")).Class("hidden", !open),
		dom.On(h.part("region-toggle")).Bool("aria-expanded", open))
}

func (h *headerBlock) renderBanner(open bool) {
	h.emit(
		dom.On(h.part("banner")).Class("hidden", !open),
		dom.On(dom.Body).Class("has-announcement", open))
}

func (h *headerBlock) Handle(action string, ev Event) error {
	switch action {
	case "viewport":
		h.nav.SetViewport(ev.Width)
	case "toggle":
		h.nav.ToggleMenu()
	case "section":
		h.nav.ClickSection(ev.Index)
	case "section-key":
		h.nav.SectionKey(ev.Index, ev.Key)
	case "doc-keydown":
		h.nav.DocumentKey(ev.Key)
	case "focusout":
		h.nav.FocusOut(ev.Inside)
	case "tool":
		switch ev.Tool {
		case "search":
			h.search.Toggle()
		case "region":
			h.region.Toggle()
		}
	case "doc-click":
		h.region.DocumentClick(ev.Tool == "region")
	case "banner-close":
		h.banner.Close()
	default:
		return unknownAction(h.name, action)
	}
	return nil
}

func (h *headerBlock) Destroy() {
	h.destroyed = true
	h.nav.Destroy()
	h.search.Destroy()
	h.region.Destroy()
	h.banner.Destroy()
}
