package widget

// ToggleGroup is a set of collapsible items. In single-open mode opening an
// item closes every other, so at most one item is open.
type ToggleGroup struct {
	open       []bool
	singleOpen bool
	onRender   func([]bool)
}

// NewToggleGroup returns a group of n closed items.
func NewToggleGroup(n int, singleOpen bool, onRender func([]bool)) *ToggleGroup {
	return &ToggleGroup{open: make([]bool, n), singleOpen: singleOpen, onRender: onRender}
}

// SetOpen applies a native toggle of item i to the given state.
func (g *ToggleGroup) SetOpen(i int, open bool) {
	if i < 0 || i >= len(g.open) {
		return
	}
	if open && g.singleOpen {
		for j := range g.open {
			g.open[j] = false
		}
	}
	g.open[i] = open
	if g.onRender != nil {
		g.onRender(g.State())
	}
}

// Toggle flips item i.
func (g *ToggleGroup) Toggle(i int) {
	if i < 0 || i >= len(g.open) {
		return
	}
	g.SetOpen(i, !g.open[i])
}

// IsOpen reports whether item i is open.
func (g *ToggleGroup) IsOpen(i int) bool {
	return i >= 0 && i < len(g.open) && g.open[i]
}

// OpenCount returns the number of open items.
func (g *ToggleGroup) OpenCount() int {
	n := 0
	for _, o := range g.open {
		if o {
			n++
		}
	}
	return n
}

// State returns a copy of the open flags.
func (g *ToggleGroup) State() []bool {
	return append([]bool(nil), g.open...)
}

// Disclosure is a single open/closed control such as a dropdown or a
// dismissible banner. With CloseOnOutside it listens for document clicks while
// open and closes when one lands outside of it.
type Disclosure struct {
	scope          *Scope
	open           bool
	closeOnOutside bool
	onRender       func(bool)
}

// NewDisclosure returns a disclosure in the given state.
func NewDisclosure(open, closeOnOutside bool, onRender func(bool)) *Disclosure {
	d := &Disclosure{scope: NewScope(), closeOnOutside: closeOnOutside, onRender: onRender}
	d.set(open, false)
	return d
}

// Scope returns the disclosure's resource scope.
func (d *Disclosure) Scope() *Scope { return d.scope }

// Open reports the current state.
func (d *Disclosure) Open() bool { return d.open }

func (d *Disclosure) set(open, render bool) {
	if d.scope.Closed() {
		return
	}
	d.open = open
	if d.closeOnOutside {
		if open {
			d.scope.Listen(TargetDocument, "click")
		} else {
			d.scope.Unlisten(TargetDocument, "click")
		}
	}
	if render && d.onRender != nil {
		d.onRender(open)
	}
}

// Toggle flips the state.
func (d *Disclosure) Toggle() { d.set(!d.open, true) }

// Close closes the disclosure if open.
func (d *Disclosure) Close() {
	if d.open {
		d.set(false, true)
	}
}

// DocumentClick closes the disclosure when a click lands outside of it.
func (d *Disclosure) DocumentClick(inside bool) {
	if inside || !d.scope.Listening(TargetDocument, "click") {
		return
	}
	d.Close()
}

// Destroy releases all registrations.
func (d *Disclosure) Destroy() {
	d.scope.Close()
}
