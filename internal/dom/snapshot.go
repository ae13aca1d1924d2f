// Package dom models the serialized element tree captured from a rendered
// page, and implements accessible-name resolution and element locators over
// it. Only JSON crosses the page boundary: the capture script serializes
// the live tree, and everything here operates on the decoded snapshot.
package dom

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rect is an element's bounding box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Node is one element of the captured tree.
type Node struct {
	Tag        string            `json:"tag"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Text       string            `json:"text,omitempty"`
	Display    string            `json:"display,omitempty"`
	Visibility string            `json:"visibility,omitempty"`
	Rect       Rect              `json:"rect"`
	Listeners  []string          `json:"listeners,omitempty"`
	Editable   bool              `json:"editable,omitempty"`
	Labels     []string          `json:"labels,omitempty"`
	Children   []*Node           `json:"children,omitempty"`

	parent *Node
	order  int
}

// Snapshot is the captured page: the element tree plus the indexes the
// detector and name resolver need.
type Snapshot struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Root  *Node  `json:"root"`

	byID     map[string]*Node
	labelFor map[string][]*Node
	nodes    []*Node
}

// Decode parses a capture-script payload and indexes the tree.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Root == nil {
		return nil, fmt.Errorf("decode snapshot: missing root element")
	}
	s.index()
	return &s, nil
}

// NewSnapshot indexes a hand-built tree. Used by tests and by anything that
// constructs snapshots outside the capture path.
func NewSnapshot(root *Node) *Snapshot {
	s := &Snapshot{Root: root}
	s.index()
	return s
}

func (s *Snapshot) index() {
	s.byID = make(map[string]*Node)
	s.labelFor = make(map[string][]*Node)
	s.nodes = s.nodes[:0]

	var walk func(n *Node, parent *Node)
	walk = func(n *Node, parent *Node) {
		n.parent = parent
		n.order = len(s.nodes)
		s.nodes = append(s.nodes, n)

		if id := n.Attr("id"); id != "" {
			if _, taken := s.byID[id]; !taken {
				s.byID[id] = n
			}
		}
		if n.Tag == "label" {
			if target := n.Attr("for"); target != "" {
				s.labelFor[target] = append(s.labelFor[target], n)
			}
		}
		for _, c := range n.Children {
			walk(c, n)
		}
	}
	walk(s.Root, nil)
}

// Nodes returns every element in document order.
func (s *Snapshot) Nodes() []*Node {
	return s.nodes
}

// ByID resolves an id to its element, or nil.
func (s *Snapshot) ByID(id string) *Node {
	return s.byID[id]
}

// LabelsFor returns label elements whose for attribute references the id.
func (s *Snapshot) LabelsFor(id string) []*Node {
	return s.labelFor[id]
}

// Attr returns the attribute value, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// HasAttr reports whether the attribute is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attrs[name]
	return ok
}

// Parent returns the parent element, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Order is the element's document-order index within its snapshot.
func (n *Node) Order() int {
	return n.order
}

// Visible reports whether the element is perceivable: not hidden, not
// aria-hidden, not display:none/visibility:hidden, and occupying more than
// a 1x1 pixel box.
func (n *Node) Visible() bool {
	if n.HasAttr("hidden") || n.Attr("aria-hidden") == "true" {
		return false
	}
	if n.Display == "none" || n.Visibility == "hidden" {
		return false
	}
	return n.Rect.Width > 1 && n.Rect.Height > 1
}

// InAriaHidden reports whether the element or any ancestor carries
// aria-hidden="true".
func (n *Node) InAriaHidden() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Attr("aria-hidden") == "true" {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest ancestor (excluding n) satisfying pred, or
// nil.
func (n *Node) Ancestor(pred func(*Node) bool) *Node {
	for cur := n.parent; cur != nil; cur = cur.parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// Descendant returns the first descendant (excluding n) in document order
// satisfying pred, or nil.
func (n *Node) Descendant(pred func(*Node) bool) *Node {
	for _, c := range n.Children {
		if pred(c) {
			return c
		}
		if d := c.Descendant(pred); d != nil {
			return d
		}
	}
	return nil
}

// NormalizeSpace collapses whitespace runs to single spaces and trims.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
