package blocks

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

var (
	counterValue = regexp.MustCompile(`^([^\d]*)(\d+(?:,\d+)*)([^\d]*)$`)
	statValue    = regexp.MustCompile(`^([^\d]*)(\d+(?:,\d+)*)(.*)$`)
)

// parseStat splits "$1,200+" into prefix, number and suffix. Text that does
// not match yields 0 with no affixes.
func parseStat(re *regexp.Regexp, s string) (prefix string, n int, suffix string) {
	m := re.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", 0, ""
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return "", 0, ""
	}
	return m[1], n, m[3]
}

// groupThousands formats n with comma separators.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

type counterBlock struct {
	base
	w *widget.Counter
}

// Counter decorates animated statistics. Each row holds a value such as
// "$1,200+", an optional label and an optional icon; the numbers count up
// from zero the first time the block becomes visible.
func Counter(b *content.Block, env *Env) Result {
	return decorateCounter(b, env, "counter", counterValue, "0")
}

// StatBlock decorates statistics like "$51mn", "800+" or "60 NPS". It
// animates the same way as Counter.
func StatBlock(b *content.Block, env *Env) Result {
	return decorateCounter(b, env, "stat-block", statValue, "")
}

func decorateCounter(b *content.Block, env *Env, prefix string, re *regexp.Regexp, fallback string) Result {
	root := newRoot(b)
	c := &counterBlock{base: newBase(b)}
	container := div(prefix + "-container")
	var targets []int

	itemClass := prefix + "-stat"
	if prefix == "stat-block" {
		itemClass = prefix + "-item"
	}
	for i, row := range b.Rows {
		text := row.Cell(0).Text()
		if text == "" {
			text = fallback
		}
		pre, n, suf := parseStat(re, text)
		targets = append(targets, n)

		stat := div(itemClass)
		if icon := row.Cell(2); prefix == "counter" && icon.Present() {
			dom.Append(stat, div(prefix+"-icon", icon.Nodes()...))
		}
		value := div(prefix + "-value")
		if pre != "" {
			dom.Append(value, span(prefix+"-prefix", pre))
		}
		number := dom.Element("span", "id", c.part("number", i), "class", prefix+"-number")
		dom.Append(value, dom.Append(number, dom.Text("0")))
		if suf != "" {
			dom.Append(value, span(prefix+"-suffix", suf))
		}
		dom.Append(stat, value)
		if label := row.Cell(1); label.Present() {
			dom.Append(stat, div(prefix+"-label", label.Nodes()...))
		}
		dom.Append(container, stat)
	}
	dom.Append(root, container)
	if len(targets) == 0 {
		return Result{Node: root}
	}

	live(root)
	dom.SetAttr(root, "data-observe", "0.5")
	opts := env.options()
	c.w = widget.NewCounter(widget.CounterConfig{
		Targets:  targets,
		Duration: opts.CountDuration,
		Frame:    opts.Frame,
		Clock:    env.clock(),
		OnRender: c.render,
	})
	return Result{Node: root, Instance: c}
}

func (c *counterBlock) render(values []int) {
	for i, v := range values {
		c.emit(dom.On(c.part("number", i)).SetText(groupThousands(v)))
	}
}

func (c *counterBlock) Handle(action string, ev Event) error {
	if action != "visible" {
		return unknownAction(c.name, action)
	}
	c.w.Visible()
	return nil
}

func (c *counterBlock) Destroy() {
	c.w.Destroy()
}

// parsePercent reads "75%", "3/4" or "75". Plain numbers are capped at 100;
// anything unparsable is 0.
func parsePercent(s string) float64 {
	s = strings.TrimSpace(s)
	var p float64
	switch {
	case strings.Contains(s, "%"):
		p = leadingFloat(s)
	case strings.Contains(s, "/"):
		num, denom, _ := strings.Cut(s, "/")
		p = leadingFloat(num) / leadingFloat(denom) * 100
	default:
		p = leadingFloat(s)
		if p > 100 {
			p = 100
		}
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

var floatPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// leadingFloat parses the numeric prefix of s, NaN when there is none.
func leadingFloat(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

type progressBlock struct {
	base
	values []float64
	reveal *widget.Reveal
}

// ProgressBar decorates label/value rows into progress bars whose fills grow
// to their value when the block first becomes visible.
func ProgressBar(b *content.Block, env *Env) Result {
	root := newRoot(b)
	p := &progressBlock{base: newBase(b)}
	container := div("progress-container")
	for i, row := range b.Rows {
		label := row.Cell(0).Text()
		raw := row.Cell(1).Text()
		if raw == "" {
			raw = "0"
		}
		pct := parsePercent(raw)
		p.values = append(p.values, pct)
		dom.Append(container, p.item(i, label, pct))
	}
	dom.Append(root, container)
	if len(p.values) == 0 {
		return Result{Node: root}
	}

	live(root)
	dom.SetAttr(root, "data-observe", "0.5")
	p.reveal = widget.NewReveal(p.render)
	return Result{Node: root, Instance: p}
}

func (p *progressBlock) item(i int, label string, pct float64) *html.Node {
	value := strconv.FormatFloat(pct, 'f', -1, 64)
	row := div("progress-label-row")
	if label != "" {
		dom.Append(row, span("progress-label", label))
	}
	dom.Append(row, span("progress-value", strconv.Itoa(int(math.Round(pct)))+"%"))

	fill := dom.Element("div", "id", p.part("fill", i), "class", "progress-fill", "data-value", value)
	dom.SetStyle(fill, "width", "0%")
	track := dom.Element("div",
		"class", "progress-track",
		"role", "progressbar",
		"aria-valuenow", value,
		"aria-valuemin", "0",
		"aria-valuemax", "100")
	return div("progress-item", row, dom.Append(track, fill))
}

func (p *progressBlock) render() {
	for i, v := range p.values {
		p.emit(dom.On(p.part("fill", i)).CSS("width", strconv.FormatFloat(math.Max(v, 0), 'f', -1, 64)+"%"))
	}
}

func (p *progressBlock) Handle(action string, ev Event) error {
	if action != "visible" {
		return unknownAction(p.name, action)
	}
	p.reveal.Visible()
	return nil
}

func (p *progressBlock) Destroy() {
	p.reveal.Destroy()
}
