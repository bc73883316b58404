package blocks

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/search"
	"github.com/livetemplate/blockkit/internal/security"
	"github.com/livetemplate/blockkit/internal/widget"
)

const noResults = `<p class="search-no-results">No results found</p>`

type searchBlock struct {
	base
	env     *Env
	index   string
	limit   int
	entries []search.Entry
	ready   bool
	loading bool
	waiting bool
	failed  bool
	w       *widget.Search
}

// Search decorates a search box over a JSON index. The block text names the
// index; it defaults to the configured index path.
func Search(b *content.Block, env *Env) Result {
	opts := env.options()
	s := &searchBlock{base: newBase(b), env: env, index: b.Text(), limit: opts.SearchLimit}
	if s.index == "" {
		s.index = opts.SearchIndex
	}

	root := newRoot(b)
	live(root)

	input := dom.Element("input",
		"type", "search",
		"class", "search-input",
		"placeholder", "Search...",
		"aria-label", "Search",
		"data-on", "input:input")
	submit := dom.Element("button", "type", "submit", "class", "search-button", "aria-label", "Submit search")
	form := dom.Element("form",
		"class", "search-form",
		"role", "search",
		"data-on", "submit:submit",
		"data-prevent", "submit")
	dom.Append(form, div("search-input-wrapper", input, submit))
	results := dom.Element("div", "id", s.part("results"), "class", "search-results", "aria-live", "polite")
	dom.Append(root, div("search-wrapper", form, results))

	s.w = widget.NewSearch(widget.SearchConfig{
		Debounce: opts.SearchDebounce,
		MinQuery: opts.SearchMinQuery,
		Clock:    env.clock(),
		Query:    s.query,
		OnRender: s.render,
	})
	return Result{Node: root, Instance: s}
}

// errIndexLoading marks a query that waits for the index. Its results are
// rendered by the refresh that follows the load.
var errIndexLoading = errors.New("search index loading")

// load fetches the index once. A failed load leaves the index empty for the
// query that triggered it and is retried on the next query.
func (s *searchBlock) load() {
	if s.loading {
		return
	}
	s.loading = true
	fetch(s.env, func(ctx context.Context, f Fetcher) ([]search.Entry, error) {
		return f.Entries(ctx, s.index)
	}, s.loaded)
}

// loaded applies the result of load.
func (s *searchBlock) loaded(entries []search.Entry, err error) {
	s.loading = false
	if err != nil {
		s.env.logger().Warn("search index unavailable",
			zap.String("block", s.id),
			zap.String("index", s.index),
			zap.Error(err))
		s.failed = true
	} else {
		s.entries, s.ready = entries, true
	}
	if !s.waiting {
		return
	}
	s.waiting = false
	if !s.w.Refresh() {
		s.failed = false
	}
}

func (s *searchBlock) query(q string) ([]widget.Hit, error) {
	if !s.ready && !s.failed && s.env != nil && s.env.Fetcher != nil {
		s.load()
		if s.loading {
			s.waiting = true
			return nil, errIndexLoading
		}
	}
	s.failed = false

	var hits []widget.Hit
	for _, e := range search.Filter(s.entries, q, s.limit) {
		hits = append(hits, widget.Hit{Title: e.DisplayTitle(), Description: e.Description, Path: e.Path})
	}
	return hits, nil
}

func (s *searchBlock) render(v widget.SearchView) {
	if errors.Is(v.Err, errIndexLoading) {
		return
	}
	results := dom.On(s.part("results"))
	switch {
	case v.Cleared || v.Query == "":
		results.SetHTML("")
	case len(v.Hits) == 0:
		results.SetHTML(noResults)
	default:
		list := dom.Element("ul", "class", "search-results-list")
		for _, h := range v.Hits {
			href, ok := security.SafeLink(h.Path)
			if !ok {
				href = "#"
			}
			link := dom.Element("a", "href", href, "class", "search-result-link")
			dom.Append(link, span("search-result-title", h.Title))
			if h.Description != "" {
				dom.Append(link, span("search-result-description", h.Description))
			}
			dom.Append(list, dom.Append(dom.Element("li", "class", "search-result-item"), link))
		}
		results.SetHTML(dom.Render(list))
	}
	s.emit(results)
}

func (s *searchBlock) Handle(action string, ev Event) error {
	switch action {
	case "input":
		s.w.Input(ev.Value)
	case "submit":
		s.w.Submit(ev.Value)
	default:
		return unknownAction(s.name, action)
	}
	return nil
}

func (s *searchBlock) Destroy() {
	s.w.Destroy()
}
