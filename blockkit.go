// Package blockkit turns authored pages, markdown with block tables or plain
// block markup, into decorated HTML whose interactive blocks are driven by
// server-side widget state machines.
package blockkit

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/search"
)

// Page is a parsed document.
type Page struct {
	ID          string // Route path without extension, e.g. "guide/intro"
	Title       string
	Description string
	Image       string
	SourceFile  string // Absolute path to the source file (for error messages)
	Frontmatter *Frontmatter

	body *html.Node
}

// descriptionLimit bounds derived descriptions.
const descriptionLimit = 160

func newPage(id string, fm *Frontmatter, body *html.Node) *Page {
	if fm == nil {
		fm = &Frontmatter{}
	}
	p := &Page{
		ID:          id,
		Title:       fm.Title,
		Description: fm.Description,
		Image:       fm.Image,
		Frontmatter: fm,
		body:        body,
	}
	if p.Title == "" {
		if h1 := dom.Find(body, dom.ByTag("h1")); h1 != nil {
			p.Title = strings.TrimSpace(dom.TextContent(h1))
		}
	}
	if p.Title == "" {
		p.Title = id
	}
	if p.Description == "" {
		p.Description = firstParagraph(body)
	}
	return p
}

// firstParagraph returns the text of the first paragraph outside any block.
func firstParagraph(body *html.Node) string {
	for _, p := range dom.FindAll(body, dom.ByTag("p")) {
		if dom.Closest(p, content.IsBlock) != nil {
			continue
		}
		text := strings.Join(strings.Fields(dom.TextContent(p)), " ")
		if text == "" {
			continue
		}
		if len(text) > descriptionLimit {
			cut := strings.LastIndexByte(text[:descriptionLimit], ' ')
			if cut <= 0 {
				cut = descriptionLimit
			}
			text = text[:cut] + "…"
		}
		return text
	}
	return ""
}

// topLevelBlocks returns the block nodes of body that are not nested inside
// another block, in document order.
func topLevelBlocks(body *html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range dom.FindAll(body, content.IsBlock) {
		if dom.Closest(n.Parent, content.IsBlock) == nil {
			out = append(out, n)
		}
	}
	return out
}

// Blocks returns the page's blocks in document order. The returned blocks
// are read from the page on every call and may be decorated freely.
func (p *Page) Blocks() []*content.Block {
	var out []*content.Block
	for _, n := range topLevelBlocks(p.body) {
		out = append(out, content.FromNode(n))
	}
	return out
}

// Plain returns the undecorated page body, the fragment served at
// <path>.plain.html for modals and navigation.
func (p *Page) Plain() string {
	return dom.InnerHTML(p.body)
}

// Path returns the URL path the page is served at.
func (p *Page) Path() string {
	if p.ID == "index" {
		return "/"
	}
	if strings.HasSuffix(p.ID, "/index") {
		return "/" + strings.TrimSuffix(p.ID, "index")
	}
	return "/" + p.ID
}

// Entry returns the page's search index entry.
func (p *Page) Entry() search.Entry {
	return search.Entry{
		Path:        p.Path(),
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
	}
}

// Indexed reports whether the page belongs in the search index.
func (p *Page) Indexed() bool {
	return p.Frontmatter.Indexed()
}
