package blocks

import (
	"strconv"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

type tabsBlock struct {
	base
	count int
	w     *widget.Tabs
}

// Tabs decorates a tab list. The first cell of each row is the tab name
// ("Tab n" when empty), the remaining cells form its panel.
func Tabs(b *content.Block, env *Env) Result {
	root := newRoot(b)
	if len(b.Rows) == 0 {
		return Result{Node: root}
	}
	t := &tabsBlock{base: newBase(b), count: len(b.Rows)}
	live(root)

	list := dom.Element("div", "class", "tabs-list", "role", "tablist")
	panels := div("tabs-content")
	for i, row := range b.Rows {
		name := row.Cell(0).Text()
		if name == "" {
			name = "Tab " + strconv.Itoa(i+1)
		}
		tab := dom.Element("button",
			"type", "button",
			"class", "tabs-tab",
			"role", "tab",
			"id", t.part("tab", i),
			"aria-controls", t.part("panel", i),
			"data-index", strconv.Itoa(i),
			"data-on", "click:select keydown:keydown",
			"data-prevent-keys", "ArrowLeft ArrowRight Home End")
		dom.Append(list, dom.Append(tab, dom.Text(name)))

		panel := dom.Element("div",
			"class", "tabs-panel",
			"role", "tabpanel",
			"id", t.part("panel", i),
			"aria-labelledby", t.part("tab", i))
		for _, c := range row.Cells[min(1, len(row.Cells)):] {
			dom.Append(panel, c.Nodes()...)
		}
		dom.Append(panels, panel)
	}
	dom.Append(root, list, panels)

	t.w = widget.NewTabs(t.count, t.render)
	t.w.Select(0)
	return Result{Node: root, Instance: t}
}

func (t *tabsBlock) render(v widget.TabsView) {
	for i := 0; i < v.Count; i++ {
		selected := i == v.Selected
		tabindex := "-1"
		if selected {
			tabindex = "0"
		}
		tab := dom.On(t.part("tab", i)).
			Bool("aria-selected", selected).
			Attr("tabindex", tabindex).
			Class("tabs-tab-active", selected)
		if selected && v.Focus {
			tab.Focused()
		}
		t.emit(tab, dom.On(t.part("panel", i)).Flag("hidden", !selected))
	}
}

func (t *tabsBlock) Handle(action string, ev Event) error {
	switch action {
	case "select":
		t.w.Select(ev.Index)
	case "keydown":
		t.w.KeyDown(ev.Index, ev.Key)
	default:
		return unknownAction(t.name, action)
	}
	return nil
}

func (t *tabsBlock) Destroy() {}
