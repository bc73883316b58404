package blocks

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/security"
	"github.com/livetemplate/blockkit/internal/widget"
)

var errNoFetcher = errors.New("no fetcher configured")

type modalBlock struct {
	base
	w    *widget.Dialog
	body string
}

// Modal decorates a trigger button and a dialog. When the first row links to
// a page, the dialog body is that page's plain fragment, loaded on first
// open; otherwise the second row is shown inline.
func Modal(b *content.Block, env *Env) Result {
	m := &modalBlock{base: newBase(b)}
	trigger := content.NewCell(nil)
	if len(b.Rows) > 0 {
		trigger = b.Rows[0].Cell(0)
	}

	var href string
	label := trigger.Text()
	if links := trigger.Links(); len(links) > 0 {
		href, _ = security.SafeLink(links[0].Href)
		if label == "" {
			label = links[0].Text
		}
	}
	if label == "" {
		label = "Open Modal"
	}

	root := newRoot(b)
	live(root)
	dom.Append(root, dom.Append(
		dom.Element("button", "type", "button", "class", "modal-trigger", "data-on", "click:open"),
		dom.Text(label)))

	body := dom.Element("div", "id", m.part("body"), "class", "modal-body")
	var load widget.DialogLoader
	if href != "" {
		load = m.loader(env, href+".plain.html")
	} else if len(b.Rows) > 1 {
		for _, c := range b.Rows[1].Cells {
			dom.Append(body, c.Nodes()...)
		}
	}

	closeBtn := dom.Append(button("modal-close", "Close modal", "data-on", "click:close"), dom.Text("×"))
	dialog := dom.Element("dialog",
		"id", m.part("dialog"),
		"class", "modal-dialog",
		"data-on", "click:backdrop cancel:close keydown:keydown",
		"data-prevent", "cancel")
	dom.Append(dialog, div("modal-content", closeBtn, body))
	dom.Append(root, dialog)

	m.w = widget.NewDialog(load, m.render)
	m.track(m.w.Scope())
	return Result{Node: root, Instance: m}
}

func (m *modalBlock) loader(env *Env, url string) widget.DialogLoader {
	return func(done func(string, error)) {
		if env == nil || env.Fetcher == nil {
			done("", errNoFetcher)
			return
		}
		fetch(env, func(ctx context.Context, f Fetcher) (string, error) {
			return f.Fragment(ctx, url)
		}, func(body string, err error) {
			if err != nil {
				env.logger().Warn("modal content unavailable",
					zap.String("block", m.id),
					zap.String("url", url),
					zap.Error(err))
			}
			done(body, err)
		})
	}
}

func (m *modalBlock) render(v widget.DialogView) {
	m.emit(dom.On(m.part("dialog")).Flag("open", v.Open))

	body := v.Body
	if v.Failed {
		body = "<p>" + widget.LoadFailedMessage + "</p>"
	}
	if (v.Failed || v.Body != "") && body != m.body {
		m.body = body
		m.emit(dom.On(m.part("body")).SetHTML(body))
	}

	overflow := ""
	if v.ScrollLocked() {
		overflow = "hidden"
	}
	m.emit(dom.On(dom.Body).CSS("overflow", overflow))
}

func (m *modalBlock) Handle(action string, ev Event) error {
	switch action {
	case "open":
		m.w.Open()
	case "close":
		m.w.Close()
	case "backdrop":
		m.w.BackdropClick(ev.Self)
	case "keydown", "doc-keydown":
		m.w.DocumentKey(ev.Key)
	default:
		return unknownAction(m.name, action)
	}
	return nil
}

func (m *modalBlock) Destroy() {
	m.w.Destroy()
}
