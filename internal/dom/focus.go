package dom

import (
	"strconv"
	"strings"
)

// KeyboardFocusable reports whether the element is reachable with the
// keyboard: a natively focusable control, a content-editable region, or any
// element carrying a non-negative tabindex.
func KeyboardFocusable(n *Node) bool {
	if tab := n.Attr("tabindex"); tab != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(tab)); err == nil && v >= 0 {
			return true
		}
	}
	if n.Editable {
		return true
	}
	switch n.Tag {
	case "a":
		return n.HasAttr("href")
	case "button", "select", "textarea", "summary":
		return true
	case "input":
		return strings.ToLower(n.Attr("type")) != "hidden"
	}
	return false
}

// FocusOrder returns the snapshot's keyboard-focusable elements in document
// order. Tabindex-based reordering is not modeled; document order is the
// order the capture script observed.
func (s *Snapshot) FocusOrder() []*Node {
	var out []*Node
	for _, n := range s.nodes {
		if KeyboardFocusable(n) && n.Visible() {
			out = append(out, n)
		}
	}
	return out
}
