// Package render is the rendering-environment collaborator boundary. The
// detector never touches a live browser directly; it consumes snapshots
// produced through this interface.
package render

import (
	"context"

	"github.com/a11yscan/a11yscan/internal/dom"
)

// Renderer drives one rendered-page session.
type Renderer interface {
	// Navigate loads the URL, waiting for the load event subject to the
	// renderer's configured timeout.
	Navigate(ctx context.Context, url string) error
	// Snapshot evaluates the capture program in the page context and
	// returns the decoded element tree. Only JSON-safe values cross the
	// page boundary.
	Snapshot(ctx context.Context) (*dom.Snapshot, error)
	Close() error
}

// Factory creates an independent Renderer. Batch scanning creates one
// renderer per worker, so the pool size bounds browser-resource use.
type Factory func(ctx context.Context) (Renderer, error)
