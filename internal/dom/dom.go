// Package dom provides small helpers over golang.org/x/net/html trees: building
// elements, reading and editing attributes, classes and inline styles, and
// serializing fragments back to HTML.
package dom

import (
	"bytes"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates an element node. attrs is a flat list of key/value pairs.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		SetAttr(n, attrs[i], attrs[i+1])
	}
	return n
}

// Text creates a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Append detaches each child from its current parent and appends it to parent.
// Nil children are skipped.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		Detach(c)
		parent.AppendChild(c)
	}
	return parent
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Clear removes every child of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// ReplaceChildren clears n and appends children.
func ReplaceChildren(n *html.Node, children ...*html.Node) {
	Clear(n)
	Append(n, children...)
}

// ReplaceWith puts replacement at the position of old and detaches old.
func ReplaceWith(old, replacement *html.Node) {
	if old.Parent == nil {
		return
	}
	Detach(replacement)
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
}

// Attr returns the value of the attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttr returns the attribute value or "" when absent.
func GetAttr(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	return strings.Fields(GetAttr(n, "class"))
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	for _, have := range Classes(n) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends classes not already present.
func AddClass(n *html.Node, cs ...string) {
	list := Classes(n)
	for _, c := range cs {
		if c == "" || HasClass(n, c) {
			continue
		}
		list = append(list, c)
		SetAttr(n, "class", strings.Join(list, " "))
	}
}

// RemoveClass removes classes. The attribute is dropped when it becomes empty.
func RemoveClass(n *html.Node, cs ...string) {
	drop := make(map[string]bool, len(cs))
	for _, c := range cs {
		drop[c] = true
	}
	var keep []string
	for _, c := range Classes(n) {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(keep, " "))
}

// ToggleClass adds c when on is true and removes it otherwise.
func ToggleClass(n *html.Node, c string, on bool) {
	if on {
		AddClass(n, c)
	} else {
		RemoveClass(n, c)
	}
}

// SetStyle sets one inline style property, keeping the order of existing ones.
// An empty value removes the property.
func SetStyle(n *html.Node, prop, val string) {
	props := parseStyle(GetAttr(n, "style"))
	found := false
	out := props[:0]
	for _, p := range props {
		if p[0] == prop {
			found = true
			if val == "" {
				continue
			}
			p[1] = val
		}
		out = append(out, p)
	}
	if !found && val != "" {
		out = append(out, [2]string{prop, val})
	}
	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, len(out))
	for i, p := range out {
		parts[i] = p[0] + ": " + p[1]
	}
	SetAttr(n, "style", strings.Join(parts, "; "))
}

// Style returns the value of one inline style property.
func Style(n *html.Node, prop string) string {
	for _, p := range parseStyle(GetAttr(n, "style")) {
		if p[0] == prop {
			return p[1]
		}
	}
	return ""
}

func parseStyle(s string) [][2]string {
	var props [][2]string
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" {
			continue
		}
		props = append(props, [2]string{k, v})
	}
	return props
}

// TextContent concatenates every text node below n.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Matcher selects nodes during a search.
type Matcher func(*html.Node) bool

// ByTag matches elements with one of the given tag names.
func ByTag(tags ...string) Matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, t := range tags {
			if n.Data == t {
				return true
			}
		}
		return false
	}
}

// ByClass matches elements carrying class c.
func ByClass(c string) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, c)
	}
}

// ByID matches the element with the given id.
func ByID(id string) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && GetAttr(n, "id") == id
	}
}

// Find returns the first descendant of n (depth-first, n excluded) that matches.
func Find(n *html.Node, match Matcher) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := Find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of n that matches, in document order.
func FindAll(n *html.Node, match Matcher) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			out = append(out, c)
		}
		out = append(out, FindAll(c, match)...)
	}
	return out
}

// Closest walks from n up through its ancestors and returns the first match.
func Closest(n *html.Node, match Matcher) *html.Node {
	for ; n != nil; n = n.Parent {
		if match(n) {
			return n
		}
	}
	return nil
}

// Clone returns a deep copy of n without parent or siblings.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for k := n.FirstChild; k != nil; k = k.NextSibling {
		c.AppendChild(Clone(k))
	}
	return c
}

// CloneChildren deep-copies the children of n.
func CloneChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, Clone(c))
	}
	return out
}

// MoveChildren moves every child of from to the end of to.
func MoveChildren(to, from *html.Node) {
	if from == nil {
		return
	}
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// Render serializes n, including n itself.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// ParseFragment parses s as the content of a <div>.
func ParseFragment(s string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	return html.ParseFragment(strings.NewReader(s), ctx)
}

// SetInnerHTML replaces the children of n with the parsed fragment s.
func SetInnerHTML(n *html.Node, s string) error {
	nodes, err := ParseFragment(s)
	if err != nil {
		return err
	}
	ReplaceChildren(n, nodes...)
	return nil
}

// SetText replaces the children of n with one text node.
func SetText(n *html.Node, s string) {
	ReplaceChildren(n, Text(s))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
