// Package blocks decorates authored blocks into interactive markup. Each
// decorator builds the block's DOM subtree and, for interactive blocks, binds
// a widget state machine whose render steps are emitted as DOM patches.
package blocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/search"
	"github.com/livetemplate/blockkit/internal/widget"
)

// ErrUnknownAction is returned by Handle for actions a block does not
// support.
var ErrUnknownAction = errors.New("unknown action")

func unknownAction(block, action string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownAction, block, action)
}

// Options are the widget tunables shared by every decorator.
type Options struct {
	AutoplayDelay  time.Duration
	SwipeThreshold float64
	Breakpoint     int
	CountDuration  time.Duration
	Frame          time.Duration
	SearchDebounce time.Duration
	SearchLimit    int
	SearchMinQuery int
	SearchIndex    string
	FetchTimeout   time.Duration
}

// DefaultOptions returns the default widget tunables.
func DefaultOptions() Options {
	return Options{
		AutoplayDelay:  widget.DefaultAutoplayDelay,
		SwipeThreshold: widget.DefaultSwipeThreshold,
		Breakpoint:     widget.DefaultBreakpoint,
		CountDuration:  widget.DefaultCountDuration,
		Frame:          widget.DefaultFrame,
		SearchDebounce: widget.DefaultSearchDebounce,
		SearchLimit:    search.DefaultLimit,
		SearchMinQuery: widget.DefaultMinQuery,
		SearchIndex:    search.DefaultIndexPath,
		FetchTimeout:   10 * time.Second,
	}
}

// Fetcher loads the documents blocks need at runtime.
type Fetcher interface {
	Entries(ctx context.Context, url string) ([]search.Entry, error)
	Fragment(ctx context.Context, url string) (string, error)
}

// Env carries what decorators need besides the block itself.
type Env struct {
	Options Options
	Clock   widget.Clock
	Fetcher Fetcher
	Logger  *zap.Logger
	// Async runs work off the caller's goroutine. work returns the step that
	// applies its result, which the runner executes serialized with the
	// instance's other transitions. When nil, fetches run inline.
	Async func(work func(ctx context.Context) func())
}

func (e *Env) clock() widget.Clock {
	if e == nil || e.Clock == nil {
		return widget.SystemClock()
	}
	return e.Clock
}

func (e *Env) logger() *zap.Logger {
	if e == nil || e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Env) options() Options {
	if e == nil {
		return DefaultOptions()
	}
	return e.Options
}

// fetchContext bounds a runtime fetch.
func (e *Env) fetchContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := e.options().FetchTimeout
	if timeout <= 0 {
		timeout = DefaultOptions().FetchTimeout
	}
	return context.WithTimeout(parent, timeout)
}

// fetch runs get against the env's fetcher and hands the result to apply.
// With an Async runner get runs in the background and apply runs later under
// the session lock; otherwise both run before fetch returns. The caller
// checks that a fetcher is configured.
func fetch[T any](e *Env, get func(ctx context.Context, f Fetcher) (T, error), apply func(T, error)) {
	work := func(parent context.Context) func() {
		ctx, cancel := e.fetchContext(parent)
		defer cancel()
		v, err := get(ctx, e.Fetcher)
		return func() { apply(v, err) }
	}
	if e.Async == nil {
		work(context.Background())()
		return
	}
	e.Async(work)
}

// Event is the payload of a client event. Fields not relevant to an action
// are left zero.
type Event struct {
	Index      int           `json:"index"`
	Key        string        `json:"key,omitempty"`
	X          float64       `json:"x,omitempty"`
	Width      int           `json:"width,omitempty"`
	Value      string        `json:"value,omitempty"`
	Open       bool          `json:"open,omitempty"`
	Inside     bool          `json:"inside,omitempty"`
	Self       bool          `json:"self,omitempty"`
	Tool       string        `json:"tool,omitempty"`
	Indicators []widget.Rect `json:"indicators,omitempty"`
	Container  widget.Rect   `json:"container"`
}

// Instance is a live interactive block.
type Instance interface {
	ID() string
	// Handle applies a client action. Unsupported actions return an error
	// wrapping ErrUnknownAction.
	Handle(action string, ev Event) error
	// Flush returns the patches emitted since the last call.
	Flush() []*dom.Patch
	// Destroy stops every timer and releases every listener.
	Destroy()
}

// Result is the output of a decorator. Instance is nil for static blocks.
type Result struct {
	Node     *html.Node
	Instance Instance
}

// DecorateFunc decorates one block.
type DecorateFunc func(b *content.Block, env *Env) Result

// base carries the patch queue and listener bookkeeping of an instance.
type base struct {
	id      string
	name    string
	pending []*dom.Patch
	scopes  []*widget.Scope
	listen  string
}

func newBase(b *content.Block) base {
	return base{id: b.ID, name: b.Name}
}

func (b *base) ID() string { return b.id }

// part returns the id of a sub-element.
func (b *base) part(name string, i ...int) string {
	id := b.id + "-" + name
	for _, n := range i {
		id += "-" + strconv.Itoa(n)
	}
	return id
}

func (b *base) emit(p ...*dom.Patch) {
	b.pending = append(b.pending, p...)
}

func (b *base) track(s ...*widget.Scope) {
	b.scopes = append(b.scopes, s...)
}

// listeners lists the document-level registrations of every tracked scope.
func (b *base) listeners() string {
	seen := make(map[string]bool)
	var all []string
	for _, s := range b.scopes {
		for _, l := range s.Listeners() {
			if !seen[l] {
				seen[l] = true
				all = append(all, l)
			}
		}
	}
	sort.Strings(all)
	return strings.Join(all, " ")
}

// Flush returns pending patches. When the set of registered listeners changed
// it appends a data-listen update on the block root, which tells the client
// which document events to forward.
func (b *base) Flush() []*dom.Patch {
	if l := b.listeners(); l != b.listen {
		b.listen = l
		if l == "" {
			b.emit(dom.On(b.id).Remove("data-listen"))
		} else {
			b.emit(dom.On(b.id).Attr("data-listen", l))
		}
	}
	out := b.pending
	b.pending = nil
	return out
}

// newRoot creates the decorated root element of a block.
func newRoot(b *content.Block) *html.Node {
	n := dom.Element("div", "id", b.ID, "data-block-name", b.Name)
	dom.AddClass(n, content.MarkerClass, b.Name)
	dom.AddClass(n, b.Variants...)
	return n
}

// live marks a root as driven by a server-side instance.
func live(root *html.Node, on ...string) {
	dom.SetAttr(root, "data-live", "")
	if len(on) > 0 {
		dom.SetAttr(root, "data-on", strings.Join(on, " "))
	}
}

// button creates a <button type="button">.
func button(class, label string, attrs ...string) *html.Node {
	n := dom.Element("button", append([]string{"type", "button", "class", class}, attrs...)...)
	if label != "" {
		dom.SetAttr(n, "aria-label", label)
	}
	return n
}

func div(class string, children ...*html.Node) *html.Node {
	return dom.Append(dom.Element("div", "class", class), children...)
}

func span(class, text string) *html.Node {
	return dom.Append(dom.Element("span", "class", class), dom.Text(text))
}

func singleOpen(b *content.Block) bool {
	if b.Has("single-open") {
		return true
	}
	v, ok := b.Data["single-open"]
	return ok && v != "false"
}
