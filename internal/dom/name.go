package dom

import "strings"

// AccessibleName computes the text assistive technology would announce for
// the element, following the name-computation priority chain. It returns ""
// when no name source applies. All results are whitespace-normalized.
func AccessibleName(s *Snapshot, n *Node) string {
	// 1. aria-labelledby: referenced ids, text joined with single spaces.
	if refs := strings.Fields(n.Attr("aria-labelledby")); len(refs) > 0 {
		var parts []string
		for _, id := range refs {
			if target := s.ByID(id); target != nil {
				if text := NormalizeSpace(target.Text); text != "" {
					parts = append(parts, text)
				}
			}
		}
		if name := strings.Join(parts, " "); name != "" {
			return name
		}
	}

	// 2. aria-label.
	if name := NormalizeSpace(n.Attr("aria-label")); name != "" {
		return name
	}

	// 3. Element-type specific sources.
	switch n.Tag {
	case "img":
		if name := NormalizeSpace(n.Attr("alt")); name != "" {
			return name
		}
	case "input":
		switch strings.ToLower(n.Attr("type")) {
		case "image":
			if name := NormalizeSpace(n.Attr("alt")); name != "" {
				return name
			}
			if name := NormalizeSpace(n.Attr("value")); name != "" {
				return name
			}
		case "submit", "button", "reset":
			if name := NormalizeSpace(n.Attr("value")); name != "" {
				return name
			}
		}
	}

	// 4. Associated form-control label.
	if name := labelName(s, n); name != "" {
		return name
	}

	// 5. For anchors, a nested image's alternative text.
	if n.Tag == "a" {
		img := n.Descendant(func(d *Node) bool {
			return d.Tag == "img" && NormalizeSpace(d.Attr("alt")) != ""
		})
		if img != nil {
			return NormalizeSpace(img.Attr("alt"))
		}
	}

	// 6. Tooltip.
	if name := NormalizeSpace(n.Attr("title")); name != "" {
		return name
	}

	// 7. Visible text content.
	return NormalizeSpace(n.Text)
}

// labelName resolves the label associated with a form control: explicit
// for/id linkage, an implicit wrapping label, or the captured native
// label-list relation.
func labelName(s *Snapshot, n *Node) string {
	switch n.Tag {
	case "input", "select", "textarea", "button", "meter", "output", "progress":
	default:
		return ""
	}

	if id := n.Attr("id"); id != "" {
		for _, label := range s.LabelsFor(id) {
			if text := NormalizeSpace(label.Text); text != "" {
				return text
			}
		}
	}

	if wrap := n.Ancestor(func(a *Node) bool { return a.Tag == "label" }); wrap != nil {
		if text := NormalizeSpace(wrap.Text); text != "" {
			return text
		}
	}

	for _, text := range n.Labels {
		if text = NormalizeSpace(text); text != "" {
			return text
		}
	}
	return ""
}
