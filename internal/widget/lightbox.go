package widget

// LightboxView is the state rendered after every transition.
type LightboxView struct {
	Open  bool
	Index int
	Count int
}

// ScrollLocked reports whether page scrolling is suspended.
func (v LightboxView) ScrollLocked() bool { return v.Open }

// Counter is the "n / total" caption.
func (v LightboxView) Counter() string {
	return itoa(v.Index+1) + " / " + itoa(v.Count)
}

// Lightbox is the fullscreen gallery viewer. Its document keydown listener
// exists only while it is open.
type Lightbox struct {
	items     int
	scope     *Scope
	open      bool
	index     int
	onRender  func(LightboxView)
	destroyed bool
}

// NewLightbox returns a closed lightbox over items images.
func NewLightbox(items int, onRender func(LightboxView)) *Lightbox {
	return &Lightbox{items: items, scope: NewScope(), onRender: onRender}
}

// Scope returns the lightbox's resource scope.
func (l *Lightbox) Scope() *Scope { return l.scope }

// View returns the current state.
func (l *Lightbox) View() LightboxView {
	return LightboxView{Open: l.open, Index: l.index, Count: l.items}
}

func (l *Lightbox) render() {
	if l.onRender != nil {
		l.onRender(l.View())
	}
}

func (l *Lightbox) live() bool {
	return !l.destroyed && l.items > 0
}

// Open shows image i.
func (l *Lightbox) Open(i int) {
	if !l.live() {
		return
	}
	l.index = Wrap(i, l.items)
	l.open = true
	l.scope.Listen(TargetDocument, "keydown")
	l.render()
}

// Close hides the viewer and releases its keyboard listener.
func (l *Lightbox) Close() {
	if l.destroyed || !l.open {
		return
	}
	l.open = false
	l.scope.Unlisten(TargetDocument, "keydown")
	l.render()
}

// Next shows the following image, wrapping to the first.
func (l *Lightbox) Next() {
	if !l.live() {
		return
	}
	l.index = Wrap(l.index+1, l.items)
	l.render()
}

// Prev shows the preceding image, wrapping to the last.
func (l *Lightbox) Prev() {
	if !l.live() {
		return
	}
	l.index = Wrap(l.index-1, l.items)
	l.render()
}

// BackdropClick closes the viewer when the click landed on the backdrop
// itself rather than on the image or controls.
func (l *Lightbox) BackdropClick(onBackdrop bool) {
	if onBackdrop {
		l.Close()
	}
}

// DocumentKey handles Escape and the arrow keys while open.
func (l *Lightbox) DocumentKey(key string) {
	if l.destroyed || !l.open || !l.scope.Listening(TargetDocument, "keydown") {
		return
	}
	switch key {
	case KeyEscape:
		l.Close()
	case KeyArrowLeft:
		l.Prev()
	case KeyArrowRight:
		l.Next()
	}
}

// Destroy releases all registrations.
func (l *Lightbox) Destroy() {
	if l.destroyed {
		return
	}
	l.open = false
	l.scope.Close()
	l.destroyed = true
}
