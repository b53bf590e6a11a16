// Package engine defines the contract between the page editor and the
// underlying PDF machinery. The interfaces are intentionally small and
// provider-agnostic: the editor only needs page geometry, rasterization,
// and the handful of destructive operations a split bake requires.
// Everything else about the PDF format stays behind the implementation.
package engine

import (
	"image"

	"github.com/wudi/pagedesk/coords"
)

// Engine opens documents. The editor opens every source twice: once as
// an immutable reference for original geometry and rendering, once as
// the working copy splits bake from.
type Engine interface {
	// Open loads a document from a file on disk.
	Open(path string) (Document, error)

	// OpenBytes loads a document held in memory.
	OpenBytes(data []byte) (Document, error)
}

// Document is one open PDF. Implementations are safe for concurrent use;
// destructive methods are only ever called on working copies.
type Document interface {
	PageCount() (int, error)

	// Page returns a handle for the page at the given zero-based index.
	Page(index int) (Page, error)

	// ExtractPages returns a new document containing the given
	// zero-based pages of the current state, in the order listed. Pages
	// not listed are left out of the result.
	ExtractPages(pages []int) ([]byte, error)

	// Save serializes the document's current state.
	Save() ([]byte, error)

	Close() error
}

// Page is a handle for one page of an open document.
type Page interface {
	// Size returns the untransformed page dimensions in points.
	Size() (width, height float64)

	// ApplyTransform bakes the given matrix into the page content.
	// Implementations may refuse matrices they cannot express.
	ApplyTransform(m coords.Matrix) error

	// RegenerateContent rebuilds the page's content stream after
	// transforms were applied. A no-op for providers that rewrite
	// streams on save.
	RegenerateContent() error

	// Render rasterizes the page at the given resolution.
	Render(dpi float64) (image.Image, error)
}
