package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/search"
	"github.com/livetemplate/blockkit/internal/widget"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const page = `<div class="block carousel autoplay" data-block-id="carousel-1">` +
	`<div><div><p>One</p></div></div><div><div><p>Two</p></div></div><div><div><p>Three</p></div></div>` +
	`</div>` +
	`<div class="block table" data-block-id="table-1"><div><div>a</div></div></div>` +
	`<div class="block counter" data-block-id="counter-1"><div><div>100</div></div></div>`

func pageBlocks(t *testing.T) []*content.Block {
	t.Helper()
	return parseBlocks(t, page)
}

func parseBlocks(t *testing.T, markup string) []*content.Block {
	t.Helper()
	nodes, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	var out []*content.Block
	for _, n := range nodes {
		if content.IsBlock(n) {
			out = append(out, content.FromNode(n))
		}
	}
	return out
}

type recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *recorder) sink(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
	return nil
}

func (r *recorder) take() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

func newSession(t *testing.T, clock widget.Clock, opts blocks.Options) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := New(pageBlocks(t), Config{
		Env:    blocks.Env{Options: opts, Clock: clock},
		Sink:   rec.sink,
		Logger: zap.NewNop(),
	})
	t.Cleanup(s.Close)
	return s, rec
}

func hasClass(msgs []Message, id, class string) bool {
	for _, m := range msgs {
		for _, p := range m.Patches {
			if p.ID != id {
				continue
			}
			for _, c := range p.AddClass {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func TestNewKeepsInteractiveBlocks(t *testing.T) {
	s, rec := newSession(t, widget.NewManualClock(time.Now()), blocks.DefaultOptions())
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, []string{"carousel-1", "counter-1"}, s.Blocks())
	assert.Empty(t, rec.take(), "the initial render is part of the page markup")
}

func TestDispatch(t *testing.T) {
	s, rec := newSession(t, widget.NewManualClock(time.Now()), blocks.DefaultOptions())

	require.NoError(t, s.Dispatch("carousel-1", "next", blocks.Event{}))
	msgs := rec.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, "carousel-1", msgs[0].BlockID)
	assert.Equal(t, ActionPatch, msgs[0].Action)
	assert.True(t, hasClass(msgs, "carousel-1-slide-1", "carousel-slide-active"))

	err := s.Dispatch("table-1", "next", blocks.Event{})
	assert.True(t, errors.Is(err, ErrUnknownBlock))

	err = s.Dispatch("carousel-1", "explode", blocks.Event{})
	assert.True(t, errors.Is(err, blocks.ErrUnknownAction))
}

func TestTimersFlushThroughSession(t *testing.T) {
	clock := widget.NewManualClock(time.Now())
	s, rec := newSession(t, clock, blocks.DefaultOptions())

	clock.Advance(5 * time.Second)
	msgs := rec.take()
	require.Len(t, msgs, 1)
	assert.True(t, hasClass(msgs, "carousel-1-slide-1", "carousel-slide-active"))

	require.NoError(t, s.Dispatch("counter-1", "visible", blocks.Event{}))
	rec.take()
	clock.Advance(2 * time.Second)
	msgs = rec.take()
	require.NotEmpty(t, msgs)

	var final string
	for _, m := range msgs {
		for _, p := range m.Patches {
			if p.ID == "counter-1-number-0" && p.Text != nil {
				final = *p.Text
			}
		}
	}
	assert.Equal(t, "100", final)
}

func TestCloseStopsEverything(t *testing.T) {
	clock := widget.NewManualClock(time.Now())
	s, rec := newSession(t, clock, blocks.DefaultOptions())
	require.NoError(t, s.Dispatch("counter-1", "visible", blocks.Event{}))
	require.Greater(t, clock.Pending(), 1)
	rec.take()

	s.Close()
	assert.True(t, s.Closed())
	assert.Equal(t, 0, clock.Pending())
	clock.Advance(time.Minute)
	assert.Empty(t, rec.take())
	assert.True(t, errors.Is(s.Dispatch("carousel-1", "next", blocks.Event{}), ErrClosed))

	s.Close()
}

func TestSystemClockSessionLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	opts := blocks.DefaultOptions()
	opts.AutoplayDelay = 5 * time.Millisecond
	opts.Frame = time.Millisecond
	opts.CountDuration = 20 * time.Millisecond

	rec := &recorder{}
	s := New(pageBlocks(t), Config{Env: blocks.Env{Options: opts}, Sink: rec.sink})
	require.NoError(t, s.Dispatch("counter-1", "visible", blocks.Event{}))

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.msgs) > 3
	}, time.Second, 5*time.Millisecond)

	s.Close()
	rec.take()
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, rec.take(), "no patches after close")
}

func TestSinkErrorsAreNotFatal(t *testing.T) {
	s := New(pageBlocks(t), Config{
		Env:  blocks.Env{Clock: widget.NewManualClock(time.Now())},
		Sink: func(Message) error { return errors.New("gone") },
	})
	defer s.Close()
	assert.NoError(t, s.Dispatch("carousel-1", "prev", blocks.Event{}))
}

// gateFetcher holds every index fetch until release is closed or the fetch
// context ends.
type gateFetcher struct {
	started chan struct{}
	release chan struct{}
}

func newGateFetcher() *gateFetcher {
	return &gateFetcher{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (f *gateFetcher) Entries(ctx context.Context, url string) ([]search.Entry, error) {
	f.started <- struct{}{}
	select {
	case <-f.release:
		return []search.Entry{{Path: "/about", Title: "About us"}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gateFetcher) Fragment(ctx context.Context, url string) (string, error) {
	return "", errors.New("no fragments")
}

const searchPage = page + `<div class="block search" data-block-id="search-1"></div>`

func waitStarted(t *testing.T, f *gateFetcher) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not start")
	}
}

func patchedHTML(msgs []Message, id string) string {
	for _, m := range msgs {
		for _, p := range m.Patches {
			if p.ID == id && p.HTML != nil {
				return *p.HTML
			}
		}
	}
	return ""
}

func TestFetchDoesNotBlockOtherBlocks(t *testing.T) {
	f := newGateFetcher()
	rec := &recorder{}
	s := New(parseBlocks(t, searchPage), Config{
		Env:  blocks.Env{Clock: widget.NewManualClock(time.Now()), Fetcher: f},
		Sink: rec.sink,
	})
	t.Cleanup(s.Close)

	done := make(chan error, 2)
	go func() {
		done <- s.Dispatch("search-1", "submit", blocks.Event{Value: "about"})
		done <- s.Dispatch("carousel-1", "next", blocks.Event{})
	}()
	waitStarted(t, f)
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("dispatch waited for the index fetch")
		}
	}
	assert.True(t, hasClass(rec.take(), "carousel-1-slide-1", "carousel-slide-active"))

	close(f.release)
	var msgs []Message
	require.Eventually(t, func() bool {
		msgs = append(msgs, rec.take()...)
		return patchedHTML(msgs, "search-1-results") != ""
	}, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, patchedHTML(msgs, "search-1-results"), `href="/about"`)
}

func TestCloseCancelsFetches(t *testing.T) {
	f := newGateFetcher()
	rec := &recorder{}
	s := New(parseBlocks(t, searchPage), Config{
		Env:  blocks.Env{Clock: widget.NewManualClock(time.Now()), Fetcher: f},
		Sink: rec.sink,
	})
	require.NoError(t, s.Dispatch("search-1", "submit", blocks.Event{Value: "about"}))
	waitStarted(t, f)

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the fetch")
	}
	assert.Empty(t, rec.take())
}
