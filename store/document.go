package store

import (
	"github.com/wudi/pagedesk/engine"
	"github.com/wudi/pagedesk/history"
)

// SourceKind says where a document's bytes came from. Path-backed
// documents can be reopened from disk; memory-only documents (uploads,
// split results) exist solely in the store.
type SourceKind int

const (
	SourcePath SourceKind = iota
	SourceMemory
)

// PageID identifies a page by its owning document and the page's index
// in the source document. The index is stable across reordering; a
// page's current position is tracked separately.
type PageID struct {
	Doc  int `json:"doc"`
	Page int `json:"page"`
}

// Page is the editable state of one page: its version history plus the
// lazily populated thumbnail caches. Thumbnails are owned exclusively by
// the page that holds them.
type Page struct {
	ID          PageID
	OriginalPos int
	Pos         int
	History     *history.History

	thumb     []byte // current-state render, nil until requested
	thumbOrig []byte // original-state render, nil until requested
}

// Thumb returns the cached render, or nil when the cache is cold.
func (p *Page) Thumb(original bool) []byte {
	if original {
		return p.thumbOrig
	}
	return p.thumb
}

// SetThumb populates one of the caches.
func (p *Page) SetThumb(original bool, data []byte) {
	if original {
		p.thumbOrig = data
		return
	}
	p.thumb = data
}

// InvalidateThumbs drops both cached renders.
func (p *Page) InvalidateThumbs() {
	p.thumb = nil
	p.thumbOrig = nil
}

// palette supplies the background color tags clients use to group a
// document's pages visually. Indexed by document id, so colors are
// deterministic across runs.
var palette = [...]string{
	"#fca5a5",
	"#fdba74",
	"#fde047",
	"#86efac",
	"#67e8f9",
	"#93c5fd",
	"#d8b4fe",
	"#f9a8d4",
}

// Document is one open document: its identity, its pages in current
// order, and the two engine handles backing it. The original handle is
// read-only and outlives all edits; the working handle supplies the
// pristine bytes a split bakes from.
type Document struct {
	ID       int
	Name     string
	Kind     SourceKind
	Path     string
	Color    string
	Pages    []*Page
	Modified bool

	original engine.Document
	working  engine.Document
}

// Original returns the read-only engine handle used for geometry and
// rendering.
func (d *Document) Original() engine.Document { return d.original }

// Working returns the engine handle splits bake from.
func (d *Document) Working() engine.Document { return d.working }

// PageByID finds a page by its stable source index.
func (d *Document) PageByID(page int) (*Page, bool) {
	for _, p := range d.Pages {
		if p.ID.Page == page {
			return p, true
		}
	}
	return nil, false
}

// RecomputeModified re-derives the modified flag: true iff any page has
// edits at its cursor or the page order differs from the source order.
func (d *Document) RecomputeModified() {
	for _, p := range d.Pages {
		if !p.History.IsEmpty() || p.Pos != p.OriginalPos {
			d.Modified = true
			return
		}
	}
	d.Modified = false
}

// InvalidateThumbs drops every page's cached renders.
func (d *Document) InvalidateThumbs() {
	for _, p := range d.Pages {
		p.InvalidateThumbs()
	}
}

// Dispose closes both engine handles. The document must already be
// unreachable from the store.
func (d *Document) Dispose() {
	if d.original != nil {
		d.original.Close()
	}
	if d.working != nil {
		d.working.Close()
	}
}
