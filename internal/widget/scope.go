package widget

import "sort"

// Listener targets outside the widget's own subtree.
const (
	TargetDocument = "document"
	TargetWindow   = "window"
	TargetNav      = "nav"
)

// Scope records every listener and timer a widget registered outside of its
// own elements, so that Close releases all of them at once.
type Scope struct {
	listeners map[string]bool
	cleanups  []func()
	closed    bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{listeners: make(map[string]bool)}
}

func listenerKey(target, event string) string {
	return target + ":" + event
}

// Listen registers a listener. Registering the same target/event twice keeps
// one registration.
func (s *Scope) Listen(target, event string) {
	if s.closed {
		return
	}
	s.listeners[listenerKey(target, event)] = true
}

// Unlisten releases a listener.
func (s *Scope) Unlisten(target, event string) {
	delete(s.listeners, listenerKey(target, event))
}

// Listening reports whether target/event is registered.
func (s *Scope) Listening(target, event string) bool {
	return s.listeners[listenerKey(target, event)]
}

// Listeners returns the registered "target:event" keys, sorted.
func (s *Scope) Listeners() []string {
	out := make([]string, 0, len(s.listeners))
	for k := range s.listeners {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Defer registers f to run on Close. After Close, f runs immediately.
func (s *Scope) Defer(f func()) {
	if s.closed {
		f()
		return
	}
	s.cleanups = append(s.cleanups, f)
}

// Close runs the deferred cleanups in reverse order and drops every listener.
// Further calls are no-ops.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
	s.listeners = make(map[string]bool)
}

// Closed reports whether Close has run.
func (s *Scope) Closed() bool {
	return s.closed
}
