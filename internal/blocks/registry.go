package blocks

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
)

// Registry maps block names to decorators.
type Registry struct {
	mu         sync.RWMutex
	decorators map[string]DecorateFunc
}

// NewRegistry returns a registry holding every built-in decorator.
func NewRegistry() *Registry {
	r := &Registry{decorators: make(map[string]DecorateFunc)}
	r.Register("carousel", Carousel)
	r.Register("hero-carousel", HeroCarousel)
	r.Register("header", Header)
	r.Register("gallery", Gallery)
	r.Register("tabs", Tabs)
	r.Register("accordion", Accordion)
	r.Register("faq", FAQ)
	r.Register("counter", Counter)
	r.Register("stat-block", StatBlock)
	r.Register("progress-bar", ProgressBar)
	r.Register("search", Search)
	r.Register("modal", Modal)
	r.Register("video", Video)
	r.Register("embed", Embed)
	r.Register("table", Table)
	return r
}

// Register adds or replaces the decorator for name.
func (r *Registry) Register(name string, fn DecorateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decorators[name] = fn
}

// Lookup returns the decorator for name.
func (r *Registry) Lookup(name string) (DecorateFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decorators[name]
	return fn, ok
}

// Names lists the registered block names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.decorators))
	for name := range r.decorators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decorate runs the decorator registered for b. Blocks without a decorator
// are returned as plain block markup. The initial render of an instance is
// applied to the returned node, so the markup matches the state the instance
// patches from.
func (r *Registry) Decorate(b *content.Block, env *Env) Result {
	fn, ok := r.Lookup(b.Name)
	if !ok {
		env.logger().Debug("no decorator for block", zap.String("block", b.Name))
		return Result{Node: content.ToNode(b)}
	}
	res := fn(b, env)
	if res.Node == nil {
		res.Node = newRoot(b)
	}
	if res.Instance != nil {
		dom.Apply(res.Node, res.Instance.Flush())
	}
	return res
}
