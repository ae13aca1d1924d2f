package dom

import (
	"fmt"
	"strings"
)

// maxLocatorDepth bounds locator length for deeply nested elements.
const maxLocatorDepth = 10

// Locator builds a stable, human-readable structural path for the element:
// ancestor-to-descendant tag fragments with an id (which short-circuits
// further ascent), up to two class tokens, and a same-tag sibling position
// where needed. The same element position in an unchanged tree always
// yields the same string.
func Locator(n *Node) string {
	var fragments []string

	for cur := n; cur != nil && len(fragments) < maxLocatorDepth; cur = cur.parent {
		frag := cur.Tag

		if id := cur.Attr("id"); id != "" {
			fragments = append([]string{frag + "#" + escapeIdent(id)}, fragments...)
			break
		}

		if classes := strings.Fields(cur.Attr("class")); len(classes) > 0 {
			if len(classes) > 2 {
				classes = classes[:2]
			}
			for _, c := range classes {
				frag += "." + escapeIdent(c)
			}
		}

		if pos, multiple := siblingTagPosition(cur); multiple {
			frag += fmt.Sprintf(":nth-of-type(%d)", pos)
		}

		fragments = append([]string{frag}, fragments...)
	}

	return strings.Join(fragments, " > ")
}

// siblingTagPosition returns the element's 1-based position among same-tag
// siblings, and whether any other same-tag sibling exists.
func siblingTagPosition(n *Node) (pos int, multiple bool) {
	if n.parent == nil {
		return 1, false
	}
	count := 0
	for _, sib := range n.parent.Children {
		if sib.Tag != n.Tag {
			continue
		}
		count++
		if sib == n {
			pos = count
		}
	}
	return pos, count > 1
}

// escapeIdent escapes characters that are not valid bare CSS identifier
// characters.
func escapeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
