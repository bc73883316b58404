package widget

import (
	"math"
	"time"
)

// Counter animation defaults.
const (
	DefaultCountDuration = 2 * time.Second
	DefaultFrame         = 16 * time.Millisecond
)

// EaseOutCubic maps progress p in [0,1] to 1-(1-p)^3.
func EaseOutCubic(p float64) float64 {
	return 1 - math.Pow(1-p, 3)
}

// CounterConfig configures a Counter.
type CounterConfig struct {
	Targets  []int
	Duration time.Duration
	Frame    time.Duration
	Clock    Clock
	OnRender func(values []int)
}

type counterChain struct {
	start time.Time
	timer Timer
	gen   int
}

// Counter animates a group of numbers from 0 to their targets the first time
// the group becomes visible. Each number has at most one frame chain.
type Counter struct {
	cfg       CounterConfig
	scope     *Scope
	values    []int
	chains    []counterChain
	visible   *Once
	destroyed bool
}

// NewCounter returns counters at 0, waiting for visibility.
func NewCounter(cfg CounterConfig) *Counter {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultCountDuration
	}
	if cfg.Frame <= 0 {
		cfg.Frame = DefaultFrame
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	c := &Counter{
		cfg:    cfg,
		scope:  NewScope(),
		values: make([]int, len(cfg.Targets)),
		chains: make([]counterChain, len(cfg.Targets)),
	}
	c.visible = Observe(func() {
		for i := range c.cfg.Targets {
			c.Animate(i)
		}
	})
	c.scope.Defer(c.visible.Disconnect)
	c.scope.Defer(func() {
		for i := range c.chains {
			c.cancel(i)
		}
	})
	return c
}

// Values returns the displayed numbers.
func (c *Counter) Values() []int {
	return append([]int(nil), c.values...)
}

// Visible reports that the group intersected the viewport. Only the first
// report starts the animation.
func (c *Counter) Visible() bool {
	if c.destroyed {
		return false
	}
	return c.visible.Trigger()
}

// Animate (re)starts the animation of number i, cancelling any chain already
// running for it.
func (c *Counter) Animate(i int) {
	if c.destroyed || i < 0 || i >= len(c.values) {
		return
	}
	c.cancel(i)
	ch := &c.chains[i]
	ch.start = c.cfg.Clock.Now()
	c.frame(i, ch.gen)
}

// Running reports whether number i has a scheduled frame.
func (c *Counter) Running(i int) bool {
	return i >= 0 && i < len(c.chains) && c.chains[i].timer != nil
}

func (c *Counter) cancel(i int) {
	ch := &c.chains[i]
	ch.gen++
	if ch.timer != nil {
		ch.timer.Stop()
		ch.timer = nil
	}
}

func (c *Counter) frame(i, gen int) {
	ch := &c.chains[i]
	if gen != ch.gen {
		return
	}
	ch.timer = nil
	target := c.cfg.Targets[i]

	p := 1.0
	if c.cfg.Duration > 0 {
		p = math.Min(float64(c.cfg.Clock.Now().Sub(ch.start))/float64(c.cfg.Duration), 1)
	}
	if p < 1 {
		c.values[i] = int(math.Floor(float64(target) * EaseOutCubic(p)))
		ch.timer = c.cfg.Clock.AfterFunc(c.cfg.Frame, func() { c.frame(i, gen) })
	} else {
		c.values[i] = target
	}
	if c.cfg.OnRender != nil {
		c.cfg.OnRender(c.Values())
	}
}

// Destroy cancels every frame chain and the visibility subscription.
func (c *Counter) Destroy() {
	if c.destroyed {
		return
	}
	c.scope.Close()
	c.destroyed = true
}

// Reveal is a one-shot visibility flag for elements that animate in once,
// such as progress bars.
type Reveal struct {
	once     *Once
	revealed bool
}

// NewReveal returns an unrevealed flag. onReveal runs on the first Visible.
func NewReveal(onReveal func()) *Reveal {
	r := &Reveal{}
	r.once = Observe(func() {
		r.revealed = true
		if onReveal != nil {
			onReveal()
		}
	})
	return r
}

// Visible reports visibility and whether this call revealed the element.
func (r *Reveal) Visible() bool { return r.once.Trigger() }

// Revealed reports whether the element has been revealed.
func (r *Reveal) Revealed() bool { return r.revealed }

// Destroy drops the subscription.
func (r *Reveal) Destroy() { r.once.Disconnect() }
