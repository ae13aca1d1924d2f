package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/models"
)

func el(tag string, attrs map[string]string, children ...*dom.Node) *dom.Node {
	return &dom.Node{
		Tag:      tag,
		Attrs:    attrs,
		Rect:     dom.Rect{Width: 100, Height: 20},
		Children: children,
	}
}

func withText(n *dom.Node, text string) *dom.Node {
	n.Text = text
	return n
}

func run(children ...*dom.Node) []models.Issue {
	snap := dom.NewSnapshot(el("html", nil, el("body", nil, children...)))
	return Run(snap, DefaultOptions())
}

func byCode(issues []models.Issue, code string) []models.Issue {
	var out []models.Issue
	for _, is := range issues {
		if is.Code == code {
			out = append(out, is)
		}
	}
	return out
}

func TestInteractiveName_Missing(t *testing.T) {
	issues := run(el("button", nil))

	got := byCode(issues, CodeInteractiveName)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeError, got[0].Type)
	assert.Equal(t, models.RunnerHeuristic, got[0].Runner)
	assert.Contains(t, got[0].Selector, "button")
}

func TestInteractiveName_Present(t *testing.T) {
	issues := run(withText(el("button", nil), "Save"))
	assert.Empty(t, byCode(issues, CodeInteractiveName))
}

func TestInteractiveName_HiddenElementSkipped(t *testing.T) {
	hidden := el("button", map[string]string{"aria-hidden": "true"})
	issues := run(hidden)
	assert.Empty(t, byCode(issues, CodeInteractiveName))
}

func TestKeyboard_PointerOnly(t *testing.T) {
	div := el("div", map[string]string{"onclick": "doThing()"})
	issues := run(div)

	got := byCode(issues, CodePointerOnly)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeError, got[0].Type)
}

func TestKeyboard_RecordedListener(t *testing.T) {
	div := el("div", nil)
	div.Listeners = []string{"click"}
	issues := run(div)

	assert.Len(t, byCode(issues, CodePointerOnly), 1)
}

func TestKeyboard_QuietWithKeyboardHandler(t *testing.T) {
	div := el("div", map[string]string{"onclick": "go()", "onkeydown": "go()"})
	issues := run(div)
	assert.Empty(t, byCode(issues, CodePointerOnly))
}

func TestKeyboard_QuietWhenFocusable(t *testing.T) {
	div := el("div", map[string]string{"onclick": "go()", "tabindex": "0"})
	issues := run(div)
	assert.Empty(t, byCode(issues, CodePointerOnly))

	button := withText(el("button", map[string]string{"onclick": "go()"}), "Go")
	issues = run(button)
	assert.Empty(t, byCode(issues, CodePointerOnly))
}

func TestKeyboard_StrictFocusVariant(t *testing.T) {
	div := withText(el("div", map[string]string{"role": "button"}), "Open")
	issues := run(div)

	got := byCode(issues, CodeNotFocusable)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeWarning, got[0].Type)
}

func TestKeyboard_StrictFocus_Disabled(t *testing.T) {
	div := withText(el("div", map[string]string{"role": "button"}), "Open")
	snap := dom.NewSnapshot(el("html", nil, el("body", nil, div)))
	issues := Run(snap, Options{StrictFocus: false})

	assert.Empty(t, byCode(issues, CodeNotFocusable))
}

func TestKeyboard_StrictFocus_ContainerRoleExcluded(t *testing.T) {
	carousel := el("div", map[string]string{"role": "group", "aria-expanded": "true"})
	issues := run(carousel)
	assert.Empty(t, byCode(issues, CodeNotFocusable))
}

func TestKeyboard_StrictFocus_FocusableAncestorExcluded(t *testing.T) {
	icon := el("span", map[string]string{"role": "button"})
	button := withText(el("button", nil, icon), "Menu")
	issues := run(button)
	assert.Empty(t, byCode(issues, CodeNotFocusable))
}

func TestImage_AltMissing(t *testing.T) {
	issues := run(el("img", map[string]string{"src": "/x.png"}))

	got := byCode(issues, CodeImageAltMissing)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeError, got[0].Type)
}

func TestImage_EmptyAltDecorativeNeverFlagged(t *testing.T) {
	img := el("img", map[string]string{"src": "/x.png", "alt": "", "role": "presentation"})
	issues := run(img)
	assert.Empty(t, byCode(issues, CodeImageAltEmpty))
	assert.Empty(t, byCode(issues, CodeImageAltMissing))

	img = el("img", map[string]string{"src": "/x.png", "alt": "", "role": "none"})
	issues = run(img)
	assert.Empty(t, byCode(issues, CodeImageAltEmpty))
}

func TestImage_EmptyAltNotDecorative(t *testing.T) {
	img := el("img", map[string]string{"src": "/x.png", "alt": ""})
	issues := run(img)

	got := byCode(issues, CodeImageAltEmpty)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeWarning, got[0].Type)
}

func TestImage_EmptyAltInsideNamedLink(t *testing.T) {
	img := el("img", map[string]string{"src": "/icon.png", "alt": ""})
	link := withText(el("a", map[string]string{"href": "/home"}, img), "Home")
	issues := run(link)
	assert.Empty(t, byCode(issues, CodeImageAltEmpty))
}

func TestImage_EmptyAltInsideUnnamedLink(t *testing.T) {
	img := el("img", map[string]string{"src": "/icon.png", "alt": ""})
	link := el("a", map[string]string{"href": "/home"}, img)
	issues := run(link)
	assert.Len(t, byCode(issues, CodeImageAltEmpty), 1)
}

func TestFormField_Unlabeled(t *testing.T) {
	input := el("input", map[string]string{"type": "text"})
	issues := run(input)

	got := byCode(issues, CodeFormFieldLabel)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeError, got[0].Type)
}

func TestFormField_Labeled(t *testing.T) {
	label := withText(el("label", map[string]string{"for": "q"}), "Query")
	input := el("input", map[string]string{"type": "text", "id": "q"})
	issues := run(label, input)
	assert.Empty(t, byCode(issues, CodeFormFieldLabel))
}

func TestFormField_ButtonTypesSkipped(t *testing.T) {
	submit := el("input", map[string]string{"type": "submit", "value": "Send"})
	issues := run(submit)
	assert.Empty(t, byCode(issues, CodeFormFieldLabel))
}

func TestLink_GenericText(t *testing.T) {
	tests := []string{"click here", "Click Here", "CLICK HERE!", "  Read   more... "}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			link := withText(el("a", map[string]string{"href": "/x"}), text)
			issues := run(link)

			got := byCode(issues, CodeLinkGenericText)
			require.Len(t, got, 1)
			assert.Equal(t, models.IssueTypeWarning, got[0].Type)
		})
	}
}

func TestLink_DescriptiveTextQuiet(t *testing.T) {
	link := withText(el("a", map[string]string{"href": "/pricing"}), "View pricing plans")
	issues := run(link)
	assert.Empty(t, byCode(issues, CodeLinkGenericText))
}

func TestLink_NoName(t *testing.T) {
	link := el("a", map[string]string{"href": "/x"})
	issues := run(link)

	got := byCode(issues, CodeLinkNoName)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeError, got[0].Type)
}

func TestSkipNavigation_Missing(t *testing.T) {
	issues := run(withText(el("p", nil), "content"))
	assert.Len(t, byCode(issues, CodeSkipLinkMissing), 1)
}

func TestSkipNavigation_Working(t *testing.T) {
	skip := withText(el("a", map[string]string{"href": "#main", "class": "skip-link"}), "Skip to content")
	main := el("main", map[string]string{"id": "main"})
	issues := run(skip, main)

	assert.Empty(t, byCode(issues, CodeSkipLinkMissing))
	assert.Empty(t, byCode(issues, CodeSkipLinkBroken))
	assert.Empty(t, byCode(issues, CodeSkipLinkOrder))
}

func TestSkipNavigation_BrokenTarget(t *testing.T) {
	skip := withText(el("a", map[string]string{"href": "#nowhere"}), "Skip to content")
	issues := run(skip)

	got := byCode(issues, CodeSkipLinkBroken)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "#nowhere")
}

func TestSkipNavigation_LateInFocusOrder(t *testing.T) {
	var early []*dom.Node
	for i := 0; i < 6; i++ {
		early = append(early, withText(el("a", map[string]string{"href": "/n"}), "Nav item"))
	}
	skip := withText(el("a", map[string]string{"href": "#main"}), "Skip to content")
	main := el("main", map[string]string{"id": "main"})

	issues := run(append(early, skip, main)...)
	assert.Len(t, byCode(issues, CodeSkipLinkOrder), 1)
}

func TestContextChange(t *testing.T) {
	sel := withText(el("select", map[string]string{
		"id":       "lang",
		"onchange": "window.location.href = this.value",
	}), "Language")
	label := withText(el("label", map[string]string{"for": "lang"}), "Language")
	issues := run(label, sel)

	got := byCode(issues, CodeContextChange)
	require.Len(t, got, 1)
	assert.Equal(t, models.IssueTypeWarning, got[0].Type)
}

func TestContextChange_HarmlessHandlerQuiet(t *testing.T) {
	sel := el("select", map[string]string{"onchange": "updatePreview(this.value)", "aria-label": "Theme"})
	issues := run(sel)
	assert.Empty(t, byCode(issues, CodeContextChange))
}

func TestMultipleWays_BarePage(t *testing.T) {
	issues := run(withText(el("p", nil), "hello"))
	assert.Len(t, byCode(issues, CodeMultipleWays), 1)
}

func TestMultipleWays_Satisfied(t *testing.T) {
	tests := []struct {
		name string
		node *dom.Node
	}{
		{"search input", el("input", map[string]string{"type": "search", "aria-label": "Search"})},
		{"search role", el("form", map[string]string{"role": "search"})},
		{"sitemap link", withText(el("a", map[string]string{"href": "/sitemap.xml"}), "Site map")},
		{"breadcrumb", el("nav", map[string]string{"aria-label": "Breadcrumb"})},
		{"nav with five links", el("nav", nil,
			withText(el("a", map[string]string{"href": "/1"}), "One"),
			withText(el("a", map[string]string{"href": "/2"}), "Two"),
			withText(el("a", map[string]string{"href": "/3"}), "Three"),
			withText(el("a", map[string]string{"href": "/4"}), "Four"),
			withText(el("a", map[string]string{"href": "/5"}), "Five"),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := run(tt.node)
			assert.Empty(t, byCode(issues, CodeMultipleWays))
		})
	}
}

// Two elements producing identical (code, locator, message) must yield one
// issue, not two. Duplicate ids make locators collide.
func TestDedupAcrossElements(t *testing.T) {
	a := el("img", map[string]string{"id": "logo", "src": "/a.png"})
	b := el("img", map[string]string{"id": "logo", "src": "/a.png"})
	issues := run(a, b)

	assert.Len(t, byCode(issues, CodeImageAltMissing), 1)
}

func TestContextExcerpt_Deterministic(t *testing.T) {
	n := el("a", map[string]string{"href": "/x", "class": "c", "data-y": "1"})
	first := contextExcerpt(n)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, contextExcerpt(n))
	}
	assert.Equal(t, `<a class="c" data-y="1" href="/x">`, first)
}
