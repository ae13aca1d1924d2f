package detect

import (
	"regexp"
	"strings"

	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/models"
)

// checkInteractiveName flags interactive elements with no accessible name.
func (d *detector) checkInteractiveName(n *dom.Node) {
	if !interactive(n) {
		return
	}
	// img inputs and links are covered by their own rules with more
	// specific codes; everything else lands here.
	if n.Tag == "a" || n.Tag == "img" {
		return
	}
	if dom.AccessibleName(d.snap, n) == "" {
		// Unlabeled form fields have a dedicated rule.
		if isFormField(n) {
			return
		}
		d.add(CodeInteractiveName, models.IssueTypeError, n,
			"Interactive element has no accessible name.")
	}
}

// checkKeyboard flags elements operable by pointer but unreachable by
// keyboard, plus (in strict mode) interactive-role elements that cannot
// receive focus at all.
func (d *detector) checkKeyboard(n *dom.Node) {
	focusable := dom.KeyboardFocusable(n)

	if hasHandlerOfAnyType(n, pointerEvents) &&
		!hasHandlerOfAnyType(n, keyboardEvents) && !focusable {
		d.add(CodePointerOnly, models.IssueTypeError, n,
			"Element has a pointer handler but no keyboard handler and is not keyboard-focusable.")
		return
	}

	if !d.opts.StrictFocus || focusable {
		return
	}
	if !hasInteractiveRole(n) && !hasInteractiveState(n) {
		return
	}
	if _, container := containerRoles[strings.ToLower(n.Attr("role"))]; container {
		return
	}
	if n.Ancestor(nativeInteractive) != nil {
		return
	}
	d.add(CodeNotFocusable, models.IssueTypeWarning, n,
		"Element exposes an interactive role or state but cannot receive keyboard focus.")
}

// checkImage flags images with missing or questionable alternative text.
func (d *detector) checkImage(n *dom.Node) {
	if n.Tag != "img" {
		return
	}

	if !n.HasAttr("alt") {
		d.add(CodeImageAltMissing, models.IssueTypeError, n,
			"Image has no alt attribute.")
		return
	}

	if dom.NormalizeSpace(n.Attr("alt")) != "" {
		return
	}
	if decorative(n) {
		return
	}
	// Empty alt inside a named interactive ancestor is a deliberate
	// pattern (icon next to text); only flag when the ancestor is unnamed
	// or absent.
	if anc := n.Ancestor(interactive); anc != nil && dom.AccessibleName(d.snap, anc) != "" {
		return
	}
	d.add(CodeImageAltEmpty, models.IssueTypeWarning, n,
		"Image has an empty alt attribute but is not marked decorative.")
}

func decorative(n *dom.Node) bool {
	switch strings.ToLower(n.Attr("role")) {
	case "presentation", "none":
		return true
	}
	return n.InAriaHidden()
}

// checkFormField flags visible form fields with no resolvable label.
func (d *detector) checkFormField(n *dom.Node) {
	if !isFormField(n) {
		return
	}
	if dom.AccessibleName(d.snap, n) == "" {
		d.add(CodeFormFieldLabel, models.IssueTypeError, n,
			"Form field has no associated label.")
	}
}

func isFormField(n *dom.Node) bool {
	switch n.Tag {
	case "select", "textarea":
		return true
	case "input":
		switch strings.ToLower(n.Attr("type")) {
		case "hidden", "button", "submit", "reset", "image":
			return false
		}
		return true
	}
	return false
}

// checkLink flags anchors with no name or with generic boilerplate text.
func (d *detector) checkLink(n *dom.Node) {
	if n.Tag != "a" || !n.HasAttr("href") {
		return
	}

	name := dom.AccessibleName(d.snap, n)
	if name == "" {
		d.add(CodeLinkNoName, models.IssueTypeError, n,
			"Link has no accessible name.")
		return
	}
	if _, generic := genericLinkPhrases[normalizePhrase(name)]; generic {
		d.add(CodeLinkGenericText, models.IssueTypeWarning, n,
			`Link text "`+name+`" does not describe the link target.`)
	}
}

// normalizePhrase lowercases, strips punctuation, and collapses whitespace
// before boilerplate comparison.
func normalizePhrase(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return dom.NormalizeSpace(b.String())
}

// navigationPattern matches inline handler source that triggers a context
// change: location assignment, window.open, or form submission.
var navigationPattern = regexp.MustCompile(`(?i)location\s*(=|\.href|\.assign|\.replace)|window\.open\s*\(|\.submit\s*\(`)

// checkContextChange flags change/blur handlers whose source navigates.
func (d *detector) checkContextChange(n *dom.Node) {
	for _, attr := range []string{"onchange", "onblur"} {
		if src := n.Attr(attr); src != "" && navigationPattern.MatchString(src) {
			d.add(CodeContextChange, models.IssueTypeWarning, n,
				"Handler on "+attr+" appears to trigger a navigation; context must not change unexpectedly on input.")
			return
		}
	}
}
