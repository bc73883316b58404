package widget

import "time"

// Ticker calls fn every interval until stopped. Start always cancels the
// previous schedule first, so at most one timer is live per Ticker.
//
// Ticker is not safe for concurrent use; the owning session serializes
// callbacks with event handling.
type Ticker struct {
	clock Clock
	every time.Duration
	fn    func()
	timer Timer
	gen   int
}

// NewTicker returns a stopped ticker.
func NewTicker(clock Clock, every time.Duration, fn func()) *Ticker {
	return &Ticker{clock: clock, every: every, fn: fn}
}

// Start (re)schedules the ticker with a full interval.
func (t *Ticker) Start() {
	t.Stop()
	t.gen++
	t.schedule(t.gen)
}

// Stop cancels the pending tick, if any.
func (t *Ticker) Stop() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Running reports whether a tick is scheduled.
func (t *Ticker) Running() bool {
	return t.timer != nil
}

func (t *Ticker) schedule(gen int) {
	t.timer = t.clock.AfterFunc(t.every, func() {
		if gen != t.gen {
			return
		}
		t.timer = nil
		t.fn()
		// fn may have restarted or stopped the ticker.
		if gen == t.gen && t.timer == nil {
			t.schedule(gen)
		}
	})
}

// Debouncer runs the most recently triggered function once the delay passes
// without another trigger.
type Debouncer struct {
	clock Clock
	delay time.Duration
	timer Timer
	gen   int
}

// NewDebouncer returns an idle debouncer.
func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger cancels any pending call and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.Cancel()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		if gen != d.gen {
			return
		}
		d.timer = nil
		fn()
	})
}

// Cancel drops the pending call.
func (d *Debouncer) Cancel() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}
