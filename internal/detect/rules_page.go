package detect

import (
	"strings"

	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/models"
)

// skipProbeLimit is how far into the focus order a skip link must appear.
const skipProbeLimit = 5

// checkSkipNavigation verifies a working skip link exists and sits early in
// the focus order.
func (d *detector) checkSkipNavigation() {
	skips := d.skipLinks()
	if len(skips) == 0 {
		d.add(CodeSkipLinkMissing, models.IssueTypeError, nil,
			"No skip-navigation link found on the page.")
		return
	}

	for _, link := range skips {
		frag := strings.TrimPrefix(link.Attr("href"), "#")
		if frag == "" {
			continue
		}
		if d.snap.ByID(frag) == nil {
			d.add(CodeSkipLinkBroken, models.IssueTypeError, link,
				`Skip link target "#`+frag+`" does not exist on the page.`)
		}
	}

	order := d.snap.FocusOrder()
	if len(order) > skipProbeLimit {
		order = order[:skipProbeLimit]
	}
	for _, n := range order {
		if isSkipLink(n) {
			return
		}
	}
	d.add(CodeSkipLinkOrder, models.IssueTypeWarning, nil,
		"No skip link appears among the first focusable controls on the page.")
}

func (d *detector) skipLinks() []*dom.Node {
	var out []*dom.Node
	for _, n := range d.snap.Nodes() {
		if isSkipLink(n) {
			out = append(out, n)
		}
	}
	return out
}

// isSkipLink recognizes skip links by fragment href plus a "skip" signal in
// the link text or class.
func isSkipLink(n *dom.Node) bool {
	if n.Tag != "a" || !strings.HasPrefix(n.Attr("href"), "#") {
		return false
	}
	if strings.Contains(strings.ToLower(n.Text), "skip") {
		return true
	}
	return strings.Contains(strings.ToLower(n.Attr("class")), "skip")
}

// checkMultipleWays warns when the page offers no second way to locate
// content: no search affordance, no sitemap link, no breadcrumb markup, and
// no navigation region with at least five links.
func (d *detector) checkMultipleWays() {
	if d.hasSearch() || d.hasSitemapLink() || d.hasBreadcrumb() || d.hasNavRegion() {
		return
	}
	d.add(CodeMultipleWays, models.IssueTypeWarning, nil,
		"Page offers no search, sitemap link, breadcrumb, or substantial navigation region.")
}

func (d *detector) hasSearch() bool {
	for _, n := range d.snap.Nodes() {
		if strings.ToLower(n.Attr("role")) == "search" {
			return true
		}
		if n.Tag == "input" && strings.ToLower(n.Attr("type")) == "search" {
			return true
		}
		if n.Tag == "form" {
			hint := strings.ToLower(n.Attr("id") + " " + n.Attr("class") + " " + n.Attr("action"))
			if strings.Contains(hint, "search") {
				return true
			}
		}
	}
	return false
}

func (d *detector) hasSitemapLink() bool {
	for _, n := range d.snap.Nodes() {
		if n.Tag != "a" || !n.HasAttr("href") {
			continue
		}
		if strings.Contains(strings.ToLower(n.Attr("href")), "sitemap") {
			return true
		}
		if strings.Contains(strings.ToLower(n.Text), "sitemap") {
			return true
		}
	}
	return false
}

func (d *detector) hasBreadcrumb() bool {
	for _, n := range d.snap.Nodes() {
		hint := strings.ToLower(n.Attr("aria-label") + " " + n.Attr("class"))
		if strings.Contains(hint, "breadcrumb") {
			return true
		}
	}
	return false
}

func (d *detector) hasNavRegion() bool {
	for _, n := range d.snap.Nodes() {
		if n.Tag != "nav" && strings.ToLower(n.Attr("role")) != "navigation" {
			continue
		}
		if countLinks(n) >= 5 {
			return true
		}
	}
	return false
}

func countLinks(n *dom.Node) int {
	count := 0
	for _, c := range n.Children {
		if c.Tag == "a" && c.HasAttr("href") {
			count++
		}
		count += countLinks(c)
	}
	return count
}
