package blocks

import (
	"encoding/json"
	"strconv"

	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

type accordionBlock struct {
	base
	count int
	w     *widget.ToggleGroup
}

// Accordion decorates rows into <details> items: the first cell is the
// summary, the second the content. With single-open, opening an item closes
// the others.
func Accordion(b *content.Block, env *Env) Result {
	root := newRoot(b)
	a := &accordionBlock{base: newBase(b)}
	for i, row := range b.Rows {
		summaryText := row.Cell(0).Text()
		if summaryText == "" {
			summaryText = "Accordion Item"
		}
		body := div("accordion-content", row.Cell(1).Nodes()...)
		dom.Append(root, a.item(i, "", dom.Append(dom.Element("summary"), dom.Text(summaryText)), body))
	}
	return a.bind(b, root)
}

type faqSchema struct {
	Context    string        `json:"@context"`
	Type       string        `json:"@type"`
	MainEntity []faqQuestion `json:"mainEntity"`
}

type faqQuestion struct {
	Type           string    `json:"@type"`
	Name           string    `json:"name"`
	AcceptedAnswer faqAnswer `json:"acceptedAnswer"`
}

type faqAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// FAQ decorates question/answer rows and adds FAQPage structured data.
func FAQ(b *content.Block, env *Env) Result {
	root := newRoot(b)
	a := &accordionBlock{base: newBase(b)}
	schema := faqSchema{Context: "https://schema.org", Type: "FAQPage", MainEntity: []faqQuestion{}}

	container := div("faq-container")
	for i, row := range b.Rows {
		question := row.Cell(0).Text()
		if question == "" {
			question = "Question"
		}
		summary := dom.Element("summary", "class", "faq-question")
		dom.Append(summary, span("faq-question-text", question), dom.Element("span", "class", "faq-icon"))
		answer := div("faq-answer", row.Cell(1).Nodes()...)
		dom.Append(container, a.item(i, "faq-item", summary, answer))

		schema.MainEntity = append(schema.MainEntity, faqQuestion{
			Type:           "Question",
			Name:           question,
			AcceptedAnswer: faqAnswer{Type: "Answer", Text: row.Cell(1).Text()},
		})
	}
	dom.Append(root, container)

	// encoding/json escapes <, > and &, so the payload cannot close the script.
	if data, err := json.Marshal(schema); err == nil {
		script := dom.Element("script", "type", "application/ld+json")
		dom.Append(root, dom.Append(script, dom.Text(string(data))))
	}
	return a.bind(b, root)
}

func (a *accordionBlock) item(i int, class string, summary, body *html.Node) *html.Node {
	d := dom.Element("details", "id", a.part("item", i), "data-index", strconv.Itoa(i))
	if class != "" {
		dom.AddClass(d, class)
	}
	a.count++
	return dom.Append(d, summary, body)
}

// bind attaches the single-open policy. Without it items toggle natively and
// no instance is needed.
func (a *accordionBlock) bind(b *content.Block, root *html.Node) Result {
	if !singleOpen(b) || a.count == 0 {
		return Result{Node: root}
	}
	live(root)
	for _, d := range dom.FindAll(root, dom.ByTag("details")) {
		dom.SetAttr(d, "data-on", "toggle:toggle")
	}
	a.w = widget.NewToggleGroup(a.count, true, a.render)
	return Result{Node: root, Instance: a}
}

func (a *accordionBlock) render(open []bool) {
	for i, o := range open {
		a.emit(dom.On(a.part("item", i)).Flag("open", o))
	}
}

func (a *accordionBlock) Handle(action string, ev Event) error {
	if action != "toggle" {
		return unknownAction(a.name, action)
	}
	a.w.SetOpen(ev.Index, ev.Open)
	return nil
}

func (a *accordionBlock) Destroy() {}
