package widget

import (
	"fmt"
	"math"
	"time"
)

// Carousel defaults.
const (
	DefaultAutoplayDelay  = 5000 * time.Millisecond
	DefaultSwipeThreshold = 50.0
)

// Rect is the horizontal geometry of an element as measured by the client.
type Rect struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// CarouselConfig configures a Carousel.
type CarouselConfig struct {
	Slides         int
	Autoplay       bool
	Hero           bool // hover pauses, leaving resumes unless the user paused
	Delay          time.Duration
	SwipeThreshold float64
	Clock          Clock
	OnRender       func(CarouselView)
}

// CarouselView is the state rendered after every transition.
type CarouselView struct {
	Index      int
	Count      int
	Autoplay   bool
	Playing    bool
	UserPaused bool
	Marker     float64
	HasMarker  bool
}

// Transform is the track translation for the active slide.
func (v CarouselView) Transform() string {
	return fmt.Sprintf("translateX(-%d%%)", v.Index*100)
}

// Indicator returns the state of indicator i: active for the current slide,
// previous for every indicator before it.
func (v CarouselView) Indicator(i int) (active, previous bool) {
	return i == v.Index, i < v.Index
}

// ToggleLabel is the accessible label of the play/pause control.
func (v CarouselView) ToggleLabel() string {
	if v.Playing {
		return "Pause"
	}
	return "Play"
}

// Carousel is the slide cursor with autoplay, swipe, keyboard and hover
// handling.
type Carousel struct {
	cfg        CarouselConfig
	scope      *Scope
	ticker     *Ticker
	index      int
	playing    bool
	userPaused bool
	touchX     float64
	touching   bool
	indicators []Rect
	container  Rect
	destroyed  bool
}

// NewCarousel returns a carousel on slide 0. Autoplay is not started until
// Start is called.
func NewCarousel(cfg CarouselConfig) *Carousel {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultAutoplayDelay
	}
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = DefaultSwipeThreshold
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	c := &Carousel{cfg: cfg, scope: NewScope()}
	c.ticker = NewTicker(cfg.Clock, cfg.Delay, c.Next)
	c.scope.Defer(c.ticker.Stop)
	return c
}

// Index returns the active slide.
func (c *Carousel) Index() int { return c.index }

// Playing reports whether autoplay is running.
func (c *Carousel) Playing() bool { return c.playing }

// Scope returns the carousel's resource scope.
func (c *Carousel) Scope() *Scope { return c.scope }

// View returns the current state.
func (c *Carousel) View() CarouselView {
	v := CarouselView{
		Index:      c.index,
		Count:      c.cfg.Slides,
		Autoplay:   c.cfg.Autoplay,
		Playing:    c.playing,
		UserPaused: c.userPaused,
	}
	if c.index < len(c.indicators) {
		r := c.indicators[c.index]
		v.Marker = math.Round(r.Left-c.container.Left+r.Width/2)
		v.HasMarker = true
	}
	return v
}

func (c *Carousel) live() bool {
	return !c.destroyed && c.cfg.Slides > 0
}

func (c *Carousel) render() {
	if c.cfg.OnRender != nil {
		c.cfg.OnRender(c.View())
	}
}

// GoTo activates slide i, wrapping out-of-range values. While playing, the
// autoplay countdown restarts from a full interval.
func (c *Carousel) GoTo(i int) {
	if !c.live() {
		return
	}
	c.index = Wrap(i, c.cfg.Slides)
	c.render()
	if c.playing {
		c.ticker.Start()
	}
}

// Next advances one slide.
func (c *Carousel) Next() { c.GoTo(c.index + 1) }

// Prev goes back one slide.
func (c *Carousel) Prev() { c.GoTo(c.index - 1) }

// Start begins autoplay. Calling it while playing restarts the countdown
// without adding a second timer.
func (c *Carousel) Start() {
	if !c.live() || !c.cfg.Autoplay {
		return
	}
	c.playing = true
	c.ticker.Start()
	c.render()
}

// Stop pauses autoplay without marking it as a user pause.
func (c *Carousel) Stop() {
	if c.destroyed {
		return
	}
	c.ticker.Stop()
	if c.playing {
		c.playing = false
		c.render()
	}
}

// Toggle flips autoplay from the play/pause control. Pausing this way sets
// the user-paused flag so hover-out does not resume.
func (c *Carousel) Toggle() {
	if !c.live() || !c.cfg.Autoplay {
		return
	}
	if c.playing {
		c.userPaused = true
		c.ticker.Stop()
		c.playing = false
	} else {
		c.userPaused = false
		c.playing = true
		c.ticker.Start()
	}
	c.render()
}

// TouchStart records the start of a swipe and pauses autoplay.
func (c *Carousel) TouchStart(x float64) {
	if !c.live() {
		return
	}
	c.touchX = x
	c.touching = true
	if c.playing {
		c.Stop()
	}
}

// TouchEnd finishes a swipe. A leftward displacement larger than the
// threshold advances, a rightward one goes back.
func (c *Carousel) TouchEnd(x float64) {
	if !c.live() || !c.touching {
		return
	}
	c.touching = false
	diff := c.touchX - x
	if math.Abs(diff) <= c.cfg.SwipeThreshold {
		return
	}
	if diff > 0 {
		c.Next()
	} else {
		c.Prev()
	}
}

// KeyDown handles a key pressed while the carousel has focus and reports
// whether the default action must be prevented. Space on an autoplaying
// carousel acts as the play/pause control, so pausing with it sets the
// user-paused flag and hover-out does not resume.
func (c *Carousel) KeyDown(key string) bool {
	if !c.live() {
		return false
	}
	switch {
	case key == KeyArrowLeft:
		c.Prev()
	case key == KeyArrowRight:
		c.Next()
	case isSpace(key) && c.cfg.Autoplay:
		c.Toggle()
		return true
	}
	return false
}

// MouseEnter pauses a hero carousel.
func (c *Carousel) MouseEnter() {
	if !c.live() || !c.cfg.Hero {
		return
	}
	if c.playing {
		c.Stop()
	}
}

// MouseLeave resumes a hero carousel unless the user paused it.
func (c *Carousel) MouseLeave() {
	if !c.live() || !c.cfg.Hero || !c.cfg.Autoplay {
		return
	}
	if !c.playing && !c.userPaused {
		c.Start()
	}
}

// SetLayout stores the measured indicator geometry used to place the
// marker.
func (c *Carousel) SetLayout(indicators []Rect, container Rect) {
	if !c.live() {
		return
	}
	c.indicators = append([]Rect(nil), indicators...)
	c.container = container
	c.render()
}

// Destroy stops autoplay and releases all registrations.
func (c *Carousel) Destroy() {
	if c.destroyed {
		return
	}
	c.playing = false
	c.scope.Close()
	c.destroyed = true
}
