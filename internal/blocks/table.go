package blocks

import (
	"regexp"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
)

var spanValue = regexp.MustCompile(`^[1-9]\d{0,2}$`)

// Table decorates rows into a scrollable table. The first row becomes the
// header unless the block has the no-header variant. Cells keep their
// data-colspan and data-rowspan.
func Table(b *content.Block, env *Env) Result {
	root := newRoot(b)
	table := dom.Element("table")
	thead := dom.Element("thead")
	tbody := dom.Element("tbody")
	header := !b.Has("no-header")

	for i, row := range b.Rows {
		tr := dom.Element("tr")
		tag := "td"
		if header && i == 0 {
			tag = "th"
		}
		for _, c := range row.Cells {
			cell := dom.Append(dom.Element(tag), c.Nodes()...)
			for _, attr := range []string{"colspan", "rowspan"} {
				if v := dom.GetAttr(c.Node(), "data-"+attr); spanValue.MatchString(v) {
					dom.SetAttr(cell, attr, v)
				}
			}
			dom.Append(tr, cell)
		}
		if header && i == 0 {
			dom.Append(thead, tr)
		} else {
			dom.Append(tbody, tr)
		}
	}

	if thead.FirstChild != nil {
		dom.Append(table, thead)
	}
	dom.Append(table, tbody)
	dom.Append(root, div("table-wrapper", table))
	return Result{Node: root}
}
