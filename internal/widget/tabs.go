package widget

// TabsView is the state rendered after every transition.
type TabsView struct {
	Selected int
	Count    int
	// Focus is true when the selected tab should take keyboard focus.
	Focus bool
}

// Tabs tracks the selected tab. Exactly one tab is selected when there is at
// least one.
type Tabs struct {
	count    int
	selected int
	onRender func(TabsView)
}

// NewTabs returns tabs with the first one selected.
func NewTabs(count int, onRender func(TabsView)) *Tabs {
	return &Tabs{count: count, onRender: onRender}
}

// Selected returns the selected tab.
func (t *Tabs) Selected() int { return t.selected }

func (t *Tabs) show(k int, focus bool) {
	if t.count == 0 {
		return
	}
	t.selected = Wrap(k, t.count)
	if t.onRender != nil {
		t.onRender(TabsView{Selected: t.selected, Count: t.count, Focus: focus})
	}
}

// Select activates tab k.
func (t *Tabs) Select(k int) {
	t.show(k, false)
}

// KeyDown moves selection and focus from the focused tab and reports
// whether the key was handled. from is the focused tab; out of range values
// fall back to the selected tab.
func (t *Tabs) KeyDown(from int, key string) bool {
	if t.count == 0 {
		return false
	}
	if from < 0 || from >= t.count {
		from = t.selected
	}
	switch key {
	case KeyArrowRight:
		t.show(from+1, true)
	case KeyArrowLeft:
		t.show(from-1, true)
	case KeyHome:
		t.show(0, true)
	case KeyEnd:
		t.show(t.count-1, true)
	default:
		return false
	}
	return true
}
