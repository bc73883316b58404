package widget

// Once is a one-shot "on visible" subscription: the first Trigger runs the
// callback and disconnects, later triggers are ignored.
type Once struct {
	fn        func()
	connected bool
}

// Observe subscribes fn.
func Observe(fn func()) *Once {
	return &Once{fn: fn, connected: true}
}

// Trigger runs the callback if still connected and reports whether it ran.
func (o *Once) Trigger() bool {
	if o == nil || !o.connected {
		return false
	}
	o.connected = false
	o.fn()
	return true
}

// Disconnect drops the subscription without running it.
func (o *Once) Disconnect() {
	if o != nil {
		o.connected = false
	}
}

// Connected reports whether the subscription is still waiting.
func (o *Once) Connected() bool {
	return o != nil && o.connected
}
