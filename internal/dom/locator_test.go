package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocator_IdShortCircuits(t *testing.T) {
	target := el("a", nil)
	section := el("section", map[string]string{"id": "main"}, el("p", nil), el("div", nil, target))
	NewSnapshot(el("html", nil, el("body", nil, section)))

	assert.Equal(t, "section#main > div > a", Locator(target))
}

func TestLocator_Classes(t *testing.T) {
	target := el("button", map[string]string{"class": "btn btn-primary large extra"})
	NewSnapshot(el("body", nil, target))

	// At most two class tokens are kept.
	assert.Equal(t, "body > button.btn.btn-primary", Locator(target))
}

func TestLocator_SiblingPosition(t *testing.T) {
	first := el("li", nil)
	second := el("li", nil)
	list := el("ul", nil, first, second)
	NewSnapshot(el("body", nil, list))

	assert.Equal(t, "body > ul > li:nth-of-type(1)", Locator(first))
	assert.Equal(t, "body > ul > li:nth-of-type(2)", Locator(second))
}

func TestLocator_NoPositionForOnlyChild(t *testing.T) {
	only := el("p", nil)
	NewSnapshot(el("body", nil, only, el("div", nil)))

	assert.Equal(t, "body > p", Locator(only))
}

func TestLocator_DepthCap(t *testing.T) {
	leaf := el("span", nil)
	cur := leaf
	for i := 0; i < 20; i++ {
		cur = el("div", nil, cur)
	}
	NewSnapshot(cur)

	loc := Locator(leaf)
	assert.Len(t, strings.Split(loc, " > "), 10)
}

func TestLocator_EscapesIdentifiers(t *testing.T) {
	target := el("div", map[string]string{"id": "user:42"})
	NewSnapshot(el("body", nil, target))

	assert.Equal(t, `div#user\:42`, Locator(target))
}

func TestLocator_Deterministic(t *testing.T) {
	target := el("a", map[string]string{"class": "nav-link"})
	NewSnapshot(el("body", nil, el("nav", nil, target)))

	first := Locator(target)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Locator(target))
	}
}
