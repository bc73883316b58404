package widget

// LoadFailedMessage replaces dialog content that could not be fetched.
const LoadFailedMessage = "Failed to load content."

// DialogView is the state rendered after every transition.
type DialogView struct {
	Open    bool
	Body    string
	Loaded  bool
	Loading bool
	Failed  bool
}

// ScrollLocked reports whether page scrolling is suspended.
func (v DialogView) ScrollLocked() bool { return v.Open }

// DialogLoader starts loading the dialog body and calls done with the
// result, either before returning or later from a serialized callback.
type DialogLoader func(done func(body string, err error))

// Dialog is a modal whose body is loaded on first open. A failed load shows
// LoadFailedMessage and is retried on the next open.
type Dialog struct {
	scope     *Scope
	load      DialogLoader
	open      bool
	body      string
	loaded    bool
	loading   bool
	failed    bool
	onRender  func(DialogView)
	destroyed bool
}

// NewDialog returns a closed dialog. load may be nil for inline content.
func NewDialog(load DialogLoader, onRender func(DialogView)) *Dialog {
	return &Dialog{scope: NewScope(), load: load, loaded: load == nil, onRender: onRender}
}

// Scope returns the dialog's resource scope.
func (d *Dialog) Scope() *Scope { return d.scope }

// View returns the current state.
func (d *Dialog) View() DialogView {
	return DialogView{Open: d.open, Body: d.body, Loaded: d.loaded, Loading: d.loading, Failed: d.failed}
}

func (d *Dialog) render() {
	if d.onRender != nil {
		d.onRender(d.View())
	}
}

// Open shows the dialog and starts loading the body if needed. The body is
// rendered when the load completes.
func (d *Dialog) Open() {
	if d.destroyed || d.open {
		return
	}
	d.open = true
	d.scope.Listen(TargetDocument, "keydown")
	if !d.loaded && !d.loading {
		d.loading = true
		d.load(d.finish)
		if !d.loading {
			return
		}
	}
	d.render()
}

// finish applies a load result. A dialog closed in the meantime keeps the
// body for its next open.
func (d *Dialog) finish(body string, err error) {
	if d.destroyed {
		return
	}
	d.loading = false
	if err != nil {
		d.body, d.failed = LoadFailedMessage, true
	} else {
		d.body, d.loaded, d.failed = body, true, false
	}
	if d.open {
		d.render()
	}
}

// Close hides the dialog.
func (d *Dialog) Close() {
	if d.destroyed || !d.open {
		return
	}
	d.open = false
	d.scope.Unlisten(TargetDocument, "keydown")
	d.render()
}

// BackdropClick closes the dialog when the click landed on the backdrop.
func (d *Dialog) BackdropClick(onBackdrop bool) {
	if onBackdrop {
		d.Close()
	}
}

// DocumentKey closes the dialog on Escape.
func (d *Dialog) DocumentKey(key string) {
	if key == KeyEscape && d.scope.Listening(TargetDocument, "keydown") {
		d.Close()
	}
}

// Destroy releases all registrations.
func (d *Dialog) Destroy() {
	if d.destroyed {
		return
	}
	d.open = false
	d.scope.Close()
	d.destroyed = true
}
