package widget

import (
	"strings"
	"time"
)

// Search defaults.
const (
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultMinQuery       = 2
)

// Hit is one search result.
type Hit struct {
	Title       string
	Description string
	Path        string
}

// SearchView is the state rendered after every query or reset.
type SearchView struct {
	Query   string
	Hits    []Hit
	Cleared bool // results hidden, query too short
	Err     error
}

// Empty reports whether a query ran and matched nothing.
func (v SearchView) Empty() bool {
	return !v.Cleared && v.Err == nil && len(v.Hits) == 0
}

// SearchConfig configures a Search.
type SearchConfig struct {
	Debounce time.Duration
	MinQuery int
	Clock    Clock
	// Query runs a search. It is called from the debounce timer or Submit.
	Query    func(q string) ([]Hit, error)
	OnRender func(SearchView)
}

// Search debounces typed queries and runs them once input settles.
type Search struct {
	cfg       SearchConfig
	scope     *Scope
	debounce  *Debouncer
	last      string
	destroyed bool
}

// NewSearch returns an idle search box.
func NewSearch(cfg SearchConfig) *Search {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultSearchDebounce
	}
	if cfg.MinQuery <= 0 {
		cfg.MinQuery = DefaultMinQuery
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	s := &Search{cfg: cfg, scope: NewScope(), debounce: NewDebouncer(cfg.Clock, cfg.Debounce)}
	s.scope.Defer(s.debounce.Cancel)
	return s
}

// Input handles the text of the search field changing. Queries shorter than
// the minimum clear the results immediately; longer ones run after the
// debounce delay.
func (s *Search) Input(q string) {
	if s.destroyed {
		return
	}
	q = strings.TrimSpace(q)
	s.debounce.Cancel()
	if len([]rune(q)) < s.cfg.MinQuery {
		s.last = ""
		s.render(SearchView{Query: q, Cleared: true})
		return
	}
	s.debounce.Trigger(func() { s.run(q) })
}

// Submit runs the query immediately.
func (s *Search) Submit(q string) {
	if s.destroyed {
		return
	}
	s.debounce.Cancel()
	q = strings.TrimSpace(q)
	if q == "" {
		s.last = ""
		s.render(SearchView{Cleared: true})
		return
	}
	s.run(q)
}

// Pending reports whether a debounced query is waiting.
func (s *Search) Pending() bool {
	return s.debounce.Pending()
}

// Refresh reruns the last query, for results that depended on data that
// arrived after it ran. It does nothing while a newer query is pending or
// after the results were cleared, and reports whether it ran.
func (s *Search) Refresh() bool {
	if s.destroyed || s.last == "" || s.debounce.Pending() {
		return false
	}
	s.run(s.last)
	return true
}

func (s *Search) run(q string) {
	s.last = q
	if s.cfg.Query == nil {
		s.render(SearchView{Query: q})
		return
	}
	hits, err := s.cfg.Query(q)
	s.render(SearchView{Query: q, Hits: hits, Err: err})
}

func (s *Search) render(v SearchView) {
	if s.cfg.OnRender != nil {
		s.cfg.OnRender(v)
	}
}

// Destroy cancels any pending query.
func (s *Search) Destroy() {
	if s.destroyed {
		return
	}
	s.scope.Close()
	s.destroyed = true
}
