package content

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/dom"
)

// MarkerClass marks a <div> as block markup.
const MarkerClass = "block"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a display name ("Hero Carousel") into a block name ("hero-carousel").
func Slug(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

// ParseLabel reads a block label such as "Hero Carousel (autoplay, aspect-ratio=16/9)".
// Bare options become variants, key=value options become data entries.
func ParseLabel(label string) (name string, variants []string, data map[string]string) {
	data = make(map[string]string)
	label = strings.TrimSpace(label)
	open := strings.Index(label, "(")
	if open < 0 || !strings.HasSuffix(label, ")") {
		return Slug(label), nil, data
	}
	name = Slug(label[:open])
	for _, opt := range strings.Split(label[open+1:len(label)-1], ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if k, v, ok := strings.Cut(opt, "="); ok {
			data[Slug(k)] = strings.TrimSpace(v)
			continue
		}
		variants = append(variants, Slug(opt))
	}
	return name, variants, data
}

// IsBlock reports whether n is block markup.
func IsBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "div" && dom.HasClass(n, MarkerClass)
}

// FromNode reads block markup: each element child of n is a row and each
// element child of a row is a cell. A row without element children is
// treated as a single cell.
func FromNode(n *html.Node) *Block {
	b := &Block{
		ID:   dom.GetAttr(n, "data-block-id"),
		Data: make(map[string]string),
	}

	name := dom.GetAttr(n, "data-block-name")
	for _, c := range dom.Classes(n) {
		if c == MarkerClass {
			continue
		}
		if name == "" {
			name = c
			continue
		}
		if c == name {
			continue
		}
		b.Variants = append(b.Variants, c)
	}
	b.Name = name

	for _, a := range n.Attr {
		if !strings.HasPrefix(a.Key, "data-") || a.Key == "data-block-name" || a.Key == "data-block-id" {
			continue
		}
		b.Data[strings.TrimPrefix(a.Key, "data-")] = a.Val
	}

	for _, rowNode := range dom.Children(n) {
		var row Row
		cells := dom.Children(rowNode)
		if len(cells) == 0 {
			row.Cells = []*Cell{NewCell(rowNode)}
		} else {
			for _, c := range cells {
				row.Cells = append(row.Cells, NewCell(c))
			}
		}
		b.Rows = append(b.Rows, row)
	}
	return b
}

// ToNode renders a block back to block markup.
func ToNode(b *Block) *html.Node {
	n := dom.Element("div")
	dom.AddClass(n, MarkerClass, b.Name)
	dom.AddClass(n, b.Variants...)
	dom.SetAttr(n, "data-block-name", b.Name)
	if b.ID != "" {
		dom.SetAttr(n, "data-block-id", b.ID)
	}
	for _, k := range sortedDataKeys(b.Data) {
		dom.SetAttr(n, "data-"+k, b.Data[k])
	}
	for _, r := range b.Rows {
		rowNode := dom.Element("div")
		for _, c := range r.Cells {
			cellNode := dom.Element("div")
			dom.Append(cellNode, c.Nodes()...)
			dom.Append(rowNode, cellNode)
		}
		dom.Append(n, rowNode)
	}
	return n
}

func sortedDataKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
