// Package store owns the in-memory collection of open documents and
// their per-page edit state. The store is created per process, passed
// explicitly to every collaborator, and guarded by a single RWMutex: the
// mutation service holds the write lock for the full duration of each
// operation, read paths take the read lock. Store methods themselves do
// not lock — multi-step operations would not stay atomic otherwise.
package store

import (
	"errors"
	"sync"

	"github.com/wudi/pagedesk/engine"
	"github.com/wudi/pagedesk/history"
)

var (
	ErrDocumentNotFound = errors.New("store: document not found")
	ErrPageNotFound     = errors.New("store: page not found")
)

// Render resolution bounds in DPI. Requests outside the range clamp.
const (
	MinDPI     = 36
	MaxDPI     = 600
	DefaultDPI = 150
)

// Store holds every open document. The embedded RWMutex is the
// process-wide concurrency guard.
type Store struct {
	sync.RWMutex

	eng    engine.Engine
	docs   map[int]*Document
	order  []int
	nextID int
	dpi    int
}

func New(eng engine.Engine) *Store {
	return &Store{
		eng:    eng,
		docs:   make(map[int]*Document),
		nextID: 1,
		dpi:    DefaultDPI,
	}
}

// Engine returns the engine documents are opened through.
func (s *Store) Engine() engine.Engine { return s.eng }

// AddDocument opens a source through the engine — twice, so the document
// gets an immutable original handle for geometry and a working handle
// for bakes — and registers one page record per engine page, each with a
// fresh history seeded from the page's original dimensions.
func (s *Store) AddDocument(kind SourceKind, name, path string, data []byte) (*Document, error) {
	open := func() (engine.Document, error) {
		if kind == SourcePath {
			return s.eng.Open(path)
		}
		return s.eng.OpenBytes(data)
	}
	original, err := open()
	if err != nil {
		return nil, err
	}
	working, err := open()
	if err != nil {
		original.Close()
		return nil, err
	}

	id := s.nextID
	s.nextID++
	doc := &Document{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Path:     path,
		Color:    palette[id%len(palette)],
		original: original,
		working:  working,
	}
	count, err := original.PageCount()
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	for i := 0; i < count; i++ {
		ep, err := original.Page(i)
		if err != nil {
			doc.Dispose()
			return nil, err
		}
		w, h := ep.Size()
		doc.Pages = append(doc.Pages, &Page{
			ID:          PageID{Doc: id, Page: i},
			OriginalPos: i,
			Pos:         i,
			History:     history.New(w, h),
		})
	}

	s.docs[id] = doc
	s.order = append(s.order, id)
	return doc, nil
}

// Document looks up a document by id.
func (s *Store) Document(id int) (*Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Page resolves a page id to its document and page record.
func (s *Store) Page(id PageID) (*Document, *Page, error) {
	doc, err := s.Document(id.Doc)
	if err != nil {
		return nil, nil, err
	}
	page, ok := doc.PageByID(id.Page)
	if !ok {
		return nil, nil, ErrPageNotFound
	}
	return doc, page, nil
}

// Documents returns the open documents in insertion order.
func (s *Store) Documents() []*Document {
	out := make([]*Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out
}

// Remove unregisters a document. The caller disposes of it afterwards.
func (s *Store) Remove(id int) {
	delete(s.docs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear swaps the collection for an empty one and returns the swapped
// out snapshot. Disposal happens on the snapshot after the swap, so no
// lookup can observe a document mid-disposal.
func (s *Store) Clear() []*Document {
	snapshot := s.Documents()
	s.docs = make(map[int]*Document)
	s.order = nil
	return snapshot
}

// DPI returns the global render resolution.
func (s *Store) DPI() int { return s.dpi }

// SetDPI clamps the requested resolution to the supported range and
// reports whether it actually changed. A real change invalidates every
// cached thumbnail in every document.
func (s *Store) SetDPI(dpi int) bool {
	if dpi < MinDPI {
		dpi = MinDPI
	}
	if dpi > MaxDPI {
		dpi = MaxDPI
	}
	if dpi == s.dpi {
		return false
	}
	s.dpi = dpi
	for _, doc := range s.docs {
		doc.InvalidateThumbs()
	}
	return true
}
