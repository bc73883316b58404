// Package content is the typed input schema of a block: the rows and cells an
// authoring pipeline produces, with accessors that fall back to empty values
// when an expected field is missing.
package content

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/dom"
)

// Block is one authored block: a name, option flags and positional rows.
type Block struct {
	ID       string
	Name     string
	Variants []string
	Data     map[string]string
	Rows     []Row
}

// Row is an ordered list of cells.
type Row struct {
	Cells []*Cell
}

// Cell wraps the HTML fragment of one positional field.
type Cell struct {
	node *html.Node
}

// Image is the first image of a cell.
type Image struct {
	Src string
	Alt string
}

// Link is an anchor found in a cell.
type Link struct {
	Href string
	Text string
}

// Has reports whether the block carries the variant flag v.
func (b *Block) Has(v string) bool {
	for _, have := range b.Variants {
		if have == v {
			return true
		}
	}
	return false
}

// Option returns the data attribute key, or def when absent.
func (b *Block) Option(key, def string) string {
	if v, ok := b.Data[key]; ok {
		return v
	}
	return def
}

// HasOption reports whether a data attribute is present, whatever its value.
func (b *Block) HasOption(key string) bool {
	_, ok := b.Data[key]
	return ok
}

// Len returns the number of rows.
func (b *Block) Len() int {
	return len(b.Rows)
}

// Text concatenates the text of every cell of the block.
func (b *Block) Text() string {
	var parts []string
	for _, r := range b.Rows {
		for _, c := range r.Cells {
			if t := c.Text(); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// Cell returns cell i of the row, or an empty cell when the row is shorter.
func (r Row) Cell(i int) *Cell {
	if i < 0 || i >= len(r.Cells) {
		return &Cell{}
	}
	return r.Cells[i]
}

// NewCell wraps n. A nil node yields an empty cell.
func NewCell(n *html.Node) *Cell {
	return &Cell{node: n}
}

// Empty reports whether the cell has no content at all.
func (c *Cell) Empty() bool {
	return c == nil || c.node == nil || (c.node.FirstChild == nil && c.node.Type == html.ElementNode)
}

// Present reports whether the cell exists in the source markup, even if empty.
func (c *Cell) Present() bool {
	return c != nil && c.node != nil
}

// Text returns the trimmed text content.
func (c *Cell) Text() string {
	if c == nil || c.node == nil {
		return ""
	}
	return strings.TrimSpace(dom.TextContent(c.node))
}

// HTML returns the inner HTML of the cell.
func (c *Cell) HTML() string {
	if c == nil || c.node == nil {
		return ""
	}
	return dom.InnerHTML(c.node)
}

// Nodes returns deep copies of the cell content, ready to be appended elsewhere.
func (c *Cell) Nodes() []*html.Node {
	if c == nil || c.node == nil {
		return nil
	}
	return dom.CloneChildren(c.node)
}

// Find returns the first descendant matching m.
func (c *Cell) Find(m dom.Matcher) *html.Node {
	if c == nil || c.node == nil {
		return nil
	}
	return dom.Find(c.node, m)
}

// Image returns the first <img> of the cell.
func (c *Cell) Image() (Image, bool) {
	img := c.Find(dom.ByTag("img"))
	if img == nil {
		return Image{}, false
	}
	return Image{Src: dom.GetAttr(img, "src"), Alt: dom.GetAttr(img, "alt")}, true
}

// Video returns the first <video> element of the cell.
func (c *Cell) Video() *html.Node {
	return c.Find(dom.ByTag("video"))
}

// Links returns every anchor of the cell.
func (c *Cell) Links() []Link {
	if c == nil || c.node == nil {
		return nil
	}
	var out []Link
	for _, a := range dom.FindAll(c.node, dom.ByTag("a")) {
		out = append(out, Link{Href: dom.GetAttr(a, "href"), Text: strings.TrimSpace(dom.TextContent(a))})
	}
	return out
}

// Heading returns the text of the first h1 or h2 of the cell.
func (c *Cell) Heading() string {
	h := c.Find(dom.ByTag("h1", "h2"))
	if h == nil {
		return ""
	}
	return strings.TrimSpace(dom.TextContent(h))
}

// Node exposes the wrapped node; nil for an empty cell.
func (c *Cell) Node() *html.Node {
	if c == nil {
		return nil
	}
	return c.node
}
