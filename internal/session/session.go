// Package session owns the live block instances of one connected page. Client
// events and timer callbacks run one at a time under the session lock, and
// the patches they produce are flushed to the session's sink after each one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

// ErrUnknownBlock is returned by Dispatch for block ids the page does not
// have, or whose block is static.
var ErrUnknownBlock = errors.New("unknown block")

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("session closed")

// Message is one server-to-client frame.
type Message struct {
	BlockID string       `json:"blockID,omitempty"`
	Action  string       `json:"action"`
	Patches []*dom.Patch `json:"patches,omitempty"`
}

// Patch and reload are the server-to-client actions.
const (
	ActionPatch  = "patch"
	ActionReload = "reload"
)

// Sink delivers messages to the client. It is called with the session lock
// held, so it must not call back into the session.
type Sink func(Message) error

// Config configures a Session.
type Config struct {
	Registry *blocks.Registry
	Env      blocks.Env
	Sink     Sink
	Logger   *zap.Logger
}

// Session is the set of live instances of one page view.
type Session struct {
	id        string
	mu        sync.Mutex
	sink      Sink
	logger    *zap.Logger
	order     []string
	instances map[string]blocks.Instance
	closed    bool

	// ctx is cancelled on Close; wg tracks background fetches.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New decorates every block of a page and keeps the interactive ones. Block
// ids must be the ones used to render the page, so instance patches address
// the elements already in the browser.
func New(page []*content.Block, cfg Config) *Session {
	if cfg.Registry == nil {
		cfg.Registry = blocks.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Session{
		id:        uuid.NewString(),
		sink:      cfg.Sink,
		instances: make(map[string]blocks.Instance),
	}
	s.logger = cfg.Logger.With(zap.String("session", s.id))
	s.ctx, s.cancel = context.WithCancel(context.Background())

	env := cfg.Env
	if env.Options == (blocks.Options{}) {
		env.Options = blocks.DefaultOptions()
	}
	env.Clock = &lockedClock{inner: clockOrSystem(env.Clock), s: s}
	env.Logger = s.logger
	env.Async = s.async

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range page {
		res := cfg.Registry.Decorate(b, &env)
		if res.Instance == nil {
			continue
		}
		id := res.Instance.ID()
		if _, dup := s.instances[id]; dup {
			s.logger.Warn("duplicate block id", zap.String("block", id))
			res.Instance.Destroy()
			continue
		}
		s.order = append(s.order, id)
		s.instances[id] = res.Instance
	}
	s.logger.Debug("session started", zap.Int("instances", len(s.order)))
	return s
}

func clockOrSystem(c widget.Clock) widget.Clock {
	if c == nil {
		return widget.SystemClock()
	}
	return c
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Blocks returns the ids of the live instances in page order.
func (s *Session) Blocks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Dispatch routes a client action to its block and flushes the resulting
// patches.
func (s *Session) Dispatch(blockID, action string, ev blocks.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	inst, ok := s.instances[blockID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlock, blockID)
	}
	err := inst.Handle(action, ev)
	s.flushLocked()
	return err
}

// flushLocked sends the pending patches of every instance, one message per
// block.
func (s *Session) flushLocked() {
	for _, id := range s.order {
		patches := s.instances[id].Flush()
		if len(patches) == 0 || s.sink == nil {
			continue
		}
		if err := s.sink(Message{BlockID: id, Action: ActionPatch, Patches: patches}); err != nil {
			s.logger.Debug("dropping patches", zap.String("block", id), zap.Error(err))
		}
	}
}

// async runs work on its own goroutine so a slow fetch never holds the
// session lock. The step work returns runs under the lock, followed by a
// flush. It is called by instances, so the lock is already held.
func (s *Session) async(work func(ctx context.Context) func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		apply := work(s.ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || apply == nil {
			return
		}
		apply()
		s.flushLocked()
	}()
}

// Close destroys every instance, cancels background fetches and waits for
// them to return. Timer callbacks that are already waiting for the lock
// become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	for _, id := range s.order {
		s.instances[id].Destroy()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Debug("session closed")
}

// Closed reports whether Close has run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// lockedClock runs timer callbacks under the session lock and flushes after
// each one.
type lockedClock struct {
	inner widget.Clock
	s     *Session
}

func (c *lockedClock) Now() time.Time { return c.inner.Now() }

func (c *lockedClock) AfterFunc(d time.Duration, f func()) widget.Timer {
	return c.inner.AfterFunc(d, func() {
		c.s.mu.Lock()
		defer c.s.mu.Unlock()
		if c.s.closed {
			return
		}
		f()
		c.s.flushLocked()
	})
}
