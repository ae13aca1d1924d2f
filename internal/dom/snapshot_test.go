package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"url": "https://example.com/",
	"title": "Example",
	"root": {
		"tag": "html",
		"rect": {"x": 0, "y": 0, "w": 1280, "h": 2000},
		"children": [
			{
				"tag": "body",
				"rect": {"x": 0, "y": 0, "w": 1280, "h": 2000},
				"children": [
					{
						"tag": "a",
						"attrs": {"href": "#content", "id": "skip", "class": "skip-link"},
						"text": "Skip to content",
						"rect": {"x": 0, "y": 0, "w": 120, "h": 20},
						"listeners": ["click"]
					},
					{
						"tag": "main",
						"attrs": {"id": "content"},
						"rect": {"x": 0, "y": 40, "w": 1280, "h": 1900}
					},
					{
						"tag": "span",
						"attrs": {"aria-hidden": "true"},
						"text": "decoration",
						"rect": {"x": 0, "y": 10, "w": 10, "h": 10}
					}
				]
			}
		]
	}
}`

func TestDecode(t *testing.T) {
	s, err := Decode([]byte(samplePayload))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/", s.URL)
	assert.Equal(t, "Example", s.Title)
	require.NotNil(t, s.ByID("skip"))
	require.NotNil(t, s.ByID("content"))
	assert.Equal(t, []string{"click"}, s.ByID("skip").Listeners)
	assert.Equal(t, 5, len(s.Nodes()))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"url": "x"}`))
	assert.Error(t, err)
}

func TestVisible(t *testing.T) {
	s, err := Decode([]byte(samplePayload))
	require.NoError(t, err)

	skip := s.ByID("skip")
	assert.True(t, skip.Visible())

	hidden := s.Nodes()[4]
	require.Equal(t, "span", hidden.Tag)
	assert.False(t, hidden.Visible(), "aria-hidden element is not visible")
}

func TestVisible_Gates(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"normal", &Node{Tag: "p", Rect: Rect{Width: 50, Height: 10}}, true},
		{"hidden attr", &Node{Tag: "p", Attrs: map[string]string{"hidden": ""}, Rect: Rect{Width: 50, Height: 10}}, false},
		{"display none", &Node{Tag: "p", Display: "none", Rect: Rect{Width: 50, Height: 10}}, false},
		{"visibility hidden", &Node{Tag: "p", Visibility: "hidden", Rect: Rect{Width: 50, Height: 10}}, false},
		{"collapsed box", &Node{Tag: "p", Rect: Rect{Width: 1, Height: 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.Visible())
		})
	}
}

func TestInAriaHidden(t *testing.T) {
	inner := el("img", map[string]string{"src": "/x.png"})
	wrapper := el("div", map[string]string{"aria-hidden": "true"}, inner)
	NewSnapshot(el("body", nil, wrapper))

	assert.True(t, inner.InAriaHidden())
	assert.True(t, wrapper.InAriaHidden())
}

func TestFocusOrder(t *testing.T) {
	skip := withText(el("a", map[string]string{"href": "#main"}), "Skip")
	logo := el("img", map[string]string{"src": "/l.png", "alt": "Logo"})
	button := el("button", nil)
	hiddenInput := el("input", map[string]string{"type": "hidden"})
	custom := el("div", map[string]string{"tabindex": "0"})
	negative := el("div", map[string]string{"tabindex": "-1"})
	s := NewSnapshot(el("body", nil, skip, logo, button, hiddenInput, custom, negative))

	order := s.FocusOrder()
	require.Len(t, order, 3)
	assert.Same(t, skip, order[0])
	assert.Same(t, button, order[1])
	assert.Same(t, custom, order[2])
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeSpace("  a \t b \n c  "))
	assert.Equal(t, "", NormalizeSpace("   \n\t "))
}
