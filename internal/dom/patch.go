package dom

import (
	"golang.org/x/net/html"
)

// Body addresses the document body instead of an element id.
const Body = ":body"

// Patch is one DOM update addressed to an element id. Render steps emit
// patches; the browser client applies them and Apply replays them on a
// server-side tree.
type Patch struct {
	ID          string            `json:"id"`
	Set         map[string]string `json:"set,omitempty"`
	Unset       []string          `json:"unset,omitempty"`
	AddClass    []string          `json:"addClass,omitempty"`
	RemoveClass []string          `json:"removeClass,omitempty"`
	Style       map[string]string `json:"style,omitempty"`
	Text        *string           `json:"text,omitempty"`
	HTML        *string           `json:"html,omitempty"`
	Focus       bool              `json:"focus,omitempty"`
}

// On starts a patch for the element with the given id.
func On(id string) *Patch {
	return &Patch{ID: id}
}

// Attr sets an attribute.
func (p *Patch) Attr(key, val string) *Patch {
	if p.Set == nil {
		p.Set = make(map[string]string)
	}
	p.Set[key] = val
	return p
}

// Remove removes an attribute.
func (p *Patch) Remove(key string) *Patch {
	p.Unset = append(p.Unset, key)
	return p
}

// Bool sets key to "true" or "false".
func (p *Patch) Bool(key string, v bool) *Patch {
	if v {
		return p.Attr(key, "true")
	}
	return p.Attr(key, "false")
}

// Flag sets a boolean attribute (present or absent), e.g. hidden or open.
func (p *Patch) Flag(key string, on bool) *Patch {
	if on {
		return p.Attr(key, "")
	}
	return p.Remove(key)
}

// Class adds c when on is true and removes it otherwise.
func (p *Patch) Class(c string, on bool) *Patch {
	if on {
		p.AddClass = append(p.AddClass, c)
	} else {
		p.RemoveClass = append(p.RemoveClass, c)
	}
	return p
}

// CSS sets an inline style property; an empty value removes it.
func (p *Patch) CSS(prop, val string) *Patch {
	if p.Style == nil {
		p.Style = make(map[string]string)
	}
	p.Style[prop] = val
	return p
}

// SetText replaces the element content with text.
func (p *Patch) SetText(s string) *Patch {
	p.Text = &s
	return p
}

// SetHTML replaces the element content with an HTML fragment.
func (p *Patch) SetHTML(s string) *Patch {
	p.HTML = &s
	return p
}

// Focused requests focus on the element.
func (p *Patch) Focused() *Patch {
	p.Focus = true
	return p
}

// Apply replays patches on root. Patches whose target does not exist in root
// are skipped, so a fragment can be patched without its surrounding document.
func Apply(root *html.Node, patches []*Patch) {
	for _, p := range patches {
		var target *html.Node
		if p.ID == Body {
			target = Find(root, ByTag("body"))
		} else if root.Type == html.ElementNode && GetAttr(root, "id") == p.ID {
			target = root
		} else {
			target = Find(root, ByID(p.ID))
		}
		if target == nil {
			continue
		}
		applyOne(target, p)
	}
}

func applyOne(n *html.Node, p *Patch) {
	for _, k := range sortedKeys(p.Set) {
		SetAttr(n, k, p.Set[k])
	}
	for _, k := range p.Unset {
		RemoveAttr(n, k)
	}
	if len(p.RemoveClass) > 0 {
		RemoveClass(n, p.RemoveClass...)
	}
	if len(p.AddClass) > 0 {
		AddClass(n, p.AddClass...)
	}
	for _, k := range sortedKeys(p.Style) {
		SetStyle(n, k, p.Style[k])
	}
	if p.Text != nil {
		SetText(n, *p.Text)
	}
	if p.HTML != nil {
		_ = SetInnerHTML(n, *p.HTML)
	}
}
