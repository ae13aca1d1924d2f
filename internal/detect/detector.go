// Package detect implements the heuristic accessibility defect detector.
// It traverses a captured page snapshot once, applying independent
// detection rules, and returns a deduplicated issue list.
package detect

import (
	"sort"
	"strings"

	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/models"
)

// Options tunes detector behavior.
type Options struct {
	// StrictFocus enables the tightened keyboard rule: elements with an
	// interactive role or ARIA state that are not keyboard-focusable are
	// flagged even without pointer handlers.
	StrictFocus bool
}

// DefaultOptions is what the CLI uses unless configured otherwise.
func DefaultOptions() Options {
	return Options{StrictFocus: true}
}

// Run applies every detection rule to the snapshot and returns the
// deduplicated issues in document order.
func Run(snap *dom.Snapshot, opts Options) []models.Issue {
	d := &detector{snap: snap, opts: opts}

	for _, n := range snap.Nodes() {
		if !n.Visible() {
			continue
		}
		d.checkInteractiveName(n)
		d.checkKeyboard(n)
		d.checkImage(n)
		d.checkFormField(n)
		d.checkLink(n)
		d.checkContextChange(n)
	}

	d.checkSkipNavigation()
	d.checkMultipleWays()

	return models.Dedupe(d.issues)
}

type detector struct {
	snap   *dom.Snapshot
	opts   Options
	issues []models.Issue
}

func (d *detector) add(code string, typ models.IssueType, n *dom.Node, message string) {
	issue := models.Issue{
		Code:     code,
		Type:     typ,
		TypeCode: typ.TypeCode(),
		Message:  message,
		Runner:   models.RunnerHeuristic,
	}
	if n != nil {
		issue.Selector = dom.Locator(n)
		issue.Context = contextExcerpt(n)
	}
	d.issues = append(d.issues, issue)
}

// contextExcerpt reconstructs the element's opening tag as a short excerpt
// identifying the offending markup. Attributes are emitted in sorted order
// so the excerpt is deterministic.
func contextExcerpt(n *dom.Node) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Tag)

	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(n.Attrs[name])
		b.WriteByte('"')
	}
	b.WriteByte('>')

	const maxExcerpt = 140
	out := b.String()
	if len(out) > maxExcerpt {
		out = out[:maxExcerpt] + "..."
	}
	return out
}

// interactiveRoles are ARIA roles implying the element is operable.
var interactiveRoles = map[string]struct{}{
	"button": {}, "link": {}, "checkbox": {}, "radio": {}, "tab": {},
	"menuitem": {}, "menuitemcheckbox": {}, "menuitemradio": {},
	"switch": {}, "slider": {}, "spinbutton": {}, "combobox": {},
	"textbox": {}, "searchbox": {}, "option": {}, "treeitem": {},
}

// interactiveStates are ARIA state attributes implying operability.
var interactiveStates = []string{"aria-pressed", "aria-checked", "aria-expanded", "aria-selected"}

// containerRoles are grouping roles excluded from the tightened keyboard
// rule; carousels and similar wrappers carry state for their children.
var containerRoles = map[string]struct{}{
	"group": {}, "region": {}, "toolbar": {}, "menubar": {}, "menu": {},
	"tablist": {}, "tree": {}, "treegrid": {}, "grid": {}, "listbox": {},
	"radiogroup": {}, "tabpanel": {}, "presentation": {}, "none": {},
}

func nativeInteractive(n *dom.Node) bool {
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

func hasInteractiveRole(n *dom.Node) bool {
	_, ok := interactiveRoles[strings.ToLower(n.Attr("role"))]
	return ok
}

func hasInteractiveState(n *dom.Node) bool {
	for _, attr := range interactiveStates {
		if n.HasAttr(attr) {
			return true
		}
	}
	return false
}

func interactive(n *dom.Node) bool {
	return nativeInteractive(n) || hasInteractiveRole(n) || hasInteractiveState(n)
}

// pointerEvents and keyboardEvents drive the handler capability queries.
var (
	pointerEvents  = []string{"click", "dblclick", "mousedown", "mouseup", "pointerdown", "pointerup", "touchstart", "touchend"}
	keyboardEvents = []string{"keydown", "keyup", "keypress"}
)

// hasHandlerOfAnyType consults inline attributes and the recorded
// event-listener side table (which includes property-assigned handlers).
func hasHandlerOfAnyType(n *dom.Node, types []string) bool {
	for _, t := range types {
		if n.HasAttr("on" + t) {
			return true
		}
		for _, recorded := range n.Listeners {
			if recorded == t {
				return true
			}
		}
	}
	return false
}
