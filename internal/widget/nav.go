package widget

// DefaultBreakpoint is the viewport width at and above which navigation is
// laid out for desktop.
const DefaultBreakpoint = 900

// FocusKind says where a transition moved focus.
type FocusKind int

const (
	FocusNone FocusKind = iota
	FocusSection
	FocusToggle
)

// NavConfig configures a Nav.
type NavConfig struct {
	// Dropdowns has one entry per top-level section, true when the section
	// has a submenu.
	Dropdowns  []bool
	Breakpoint int
	// Mobile selects the initial layout. Desktop is assumed until the
	// client reports its viewport.
	Mobile   bool
	OnRender func(NavView)
}

// NavView is the state rendered after every transition.
type NavView struct {
	Desktop      bool
	Expanded     bool
	Open         int // expanded section, -1 for none
	Sections     int
	AllSections  bool // every section expanded, while the mobile menu is open
	ScrollLocked bool
	// DropsFocusable is true when dropdown headings take keyboard focus.
	DropsFocusable bool
	Focus          FocusKind
	FocusIndex     int
}

// ToggleLabel is the accessible label of the hamburger control.
func (v NavView) ToggleLabel() string {
	if v.Expanded {
		return "Close navigation"
	}
	return "Open navigation"
}

// SectionExpanded reports whether section i is expanded.
func (v NavView) SectionExpanded(i int) bool {
	return v.AllSections || v.Open == i
}

// Nav is the responsive header navigation state machine.
type Nav struct {
	cfg       NavConfig
	scope     *Scope
	desktop   bool
	expanded  bool
	open      int
	all       bool
	locked    bool
	focusable bool
	focus     FocusKind
	focusIdx  int
	destroyed bool
}

// NewNav returns navigation in its initial layout with every section
// collapsed.
func NewNav(cfg NavConfig) *Nav {
	if cfg.Breakpoint <= 0 {
		cfg.Breakpoint = DefaultBreakpoint
	}
	n := &Nav{cfg: cfg, scope: NewScope(), desktop: !cfg.Mobile, open: -1}
	n.applyMode()
	return n
}

// Scope returns the nav's resource scope.
func (n *Nav) Scope() *Scope { return n.scope }

// View returns the current state.
func (n *Nav) View() NavView {
	return NavView{
		Desktop:        n.desktop,
		Expanded:       n.expanded,
		Open:           n.open,
		AllSections:    n.all,
		Sections:       len(n.cfg.Dropdowns),
		ScrollLocked:   n.locked,
		DropsFocusable: n.focusable,
		Focus:          n.focus,
		FocusIndex:     n.focusIdx,
	}
}

func (n *Nav) render() {
	if n.cfg.OnRender != nil {
		n.cfg.OnRender(n.View())
	}
	n.focus = FocusNone
	n.focusIdx = 0
}

func (n *Nav) hasDropdown(i int) bool {
	return i >= 0 && i < len(n.cfg.Dropdowns) && n.cfg.Dropdowns[i]
}

// setMenu applies a menu toggle. force, when non-nil, is the desired
// expanded state; otherwise the state flips.
func (n *Nav) setMenu(force *bool) {
	wasExpanded := n.expanded
	if force != nil {
		wasExpanded = !*force
	}
	n.expanded = !wasExpanded
	n.open = -1
	n.all = !wasExpanded && !n.desktop
	n.locked = n.all
	n.focusable = n.desktop

	if !wasExpanded || n.desktop {
		n.scope.Listen(TargetDocument, "keydown")
		n.scope.Listen(TargetNav, "focusout")
	} else {
		n.scope.Unlisten(TargetDocument, "keydown")
		n.scope.Unlisten(TargetNav, "focusout")
	}
}

func (n *Nav) applyMode() {
	expanded := n.desktop
	n.setMenu(&expanded)
}

// SetViewport reports the viewport width. Crossing the breakpoint switches
// layout: desktop starts expanded with focusable dropdowns, mobile starts
// collapsed with dropdowns cleared.
func (n *Nav) SetViewport(width int) {
	if n.destroyed {
		return
	}
	desktop := width >= n.cfg.Breakpoint
	if desktop == n.desktop {
		return
	}
	n.desktop = desktop
	n.applyMode()
	n.render()
}

// SetSections replaces the sections after the navigation content changed.
// An open dropdown is closed.
func (n *Nav) SetSections(dropdowns []bool) {
	if n.destroyed {
		return
	}
	n.cfg.Dropdowns = dropdowns
	n.open = -1
	n.render()
}

// ToggleMenu flips the mobile menu.
func (n *Nav) ToggleMenu() {
	if n.destroyed {
		return
	}
	n.setMenu(nil)
	n.render()
}

// ClickSection toggles a desktop dropdown. Opening one closes the others.
func (n *Nav) ClickSection(i int) {
	if n.destroyed || !n.desktop || !n.hasDropdown(i) {
		return
	}
	if n.open == i {
		n.open = -1
	} else {
		n.open = i
	}
	n.render()
}

// SectionKey handles Enter or Space on a focused dropdown heading and
// reports whether the default action must be prevented.
func (n *Nav) SectionKey(i int, key string) bool {
	if key != KeyEnter && !isSpace(key) {
		return false
	}
	if n.destroyed || !n.desktop || !n.hasDropdown(i) {
		return false
	}
	n.ClickSection(i)
	return true
}

// DocumentKey handles a document-level keydown. Escape closes the open
// dropdown on desktop and returns focus to its heading; on mobile it closes
// the menu and focuses the toggle.
func (n *Nav) DocumentKey(key string) {
	if n.destroyed || key != KeyEscape || !n.scope.Listening(TargetDocument, "keydown") {
		return
	}
	if n.desktop {
		if n.open < 0 {
			return
		}
		n.focus, n.focusIdx = FocusSection, n.open
		n.open = -1
	} else {
		n.setMenu(nil)
		n.focus = FocusToggle
	}
	n.render()
}

// FocusOut handles focus leaving an element inside the nav. inside reports
// whether the new focus target is still within the nav.
func (n *Nav) FocusOut(inside bool) {
	if n.destroyed || inside || !n.scope.Listening(TargetNav, "focusout") {
		return
	}
	if n.desktop {
		if n.open < 0 {
			return
		}
		n.open = -1
	} else {
		collapse := false
		n.setMenu(&collapse)
	}
	n.render()
}

// Destroy releases all registrations.
func (n *Nav) Destroy() {
	if n.destroyed {
		return
	}
	n.scope.Close()
	n.destroyed = true
}
