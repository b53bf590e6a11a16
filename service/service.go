// Package service implements the editor's mutation and query surface on
// top of the store. Every mutation holds the store's write lock for its
// full duration and follows the same discipline: validate identifiers
// first, do the work, and make the history append (or order change, or
// collection swap) the last step — so a failure never leaves a page in a
// half-edited state. Each committed mutation bumps the change counter
// external pollers watch.
package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/wudi/pagedesk/coords"
	"github.com/wudi/pagedesk/observability"
	"github.com/wudi/pagedesk/render"
	"github.com/wudi/pagedesk/store"
)

// Result reports a committed mutation.
type Result struct {
	ChangeVersion uint64 `json:"changeVersion"`
}

type Service struct {
	store   *store.Store
	log     observability.Logger
	changes atomic.Uint64
}

func New(st *store.Store, log observability.Logger) *Service {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Service{store: st, log: log}
}

// ChangeVersion returns the monotonically increasing mutation counter.
// Pollers compare it against their last-seen value to invalidate client
// views; it is readable without the store lock.
func (s *Service) ChangeVersion() uint64 { return s.changes.Load() }

func (s *Service) commit() Result { return Result{ChangeVersion: s.changes.Add(1)} }

func (s *Service) uncommitted() Result { return Result{ChangeVersion: s.changes.Load()} }

// Apply runs one page mutation under the process-wide lock.
func (s *Service) Apply(op Op) (Result, error) {
	start := time.Now()
	s.store.Lock()
	defer s.store.Unlock()

	var err error
	switch v := op.(type) {
	case Rotate:
		err = s.rotate(v)
	case Mirror:
		err = s.mirror(v)
	case Delete:
		err = s.toggleDelete(v)
	case Revert:
		err = s.revert(v)
	case Reorder:
		err = s.reorder(v)
	case Split:
		err = s.split(v)
	default:
		err = fmt.Errorf("service: unknown operation %T", op)
	}
	if err != nil {
		s.log.Warn("mutation rejected",
			observability.String("op", opName(op)),
			observability.Error("err", err))
		return s.uncommitted(), err
	}
	res := s.commit()
	s.log.Info("mutation applied",
		observability.String("op", opName(op)),
		observability.Uint64("change_version", res.ChangeVersion),
		observability.Duration("took", time.Since(start)))
	return res, nil
}

func (s *Service) rotate(op Rotate) error {
	doc, page, err := s.store.Page(op.Page)
	if err != nil {
		return err
	}
	switch op.Degrees {
	case 90, 180, 270, -90:
	default:
		return ErrUnsupportedRotation
	}
	cur := page.History.Current()
	ep, err := doc.Original().Page(op.Page.Page)
	if err != nil {
		return &EngineError{Op: "load page", Err: err}
	}
	ow, oh := ep.Size()
	// The rotation matrix is built from the page's present on-screen
	// size, but the bounding box is always projected against the
	// untransformed original rectangle so rounding error cannot
	// compound across edits.
	m := cur.Matrix.Multiply(coords.RotateQuadrant(op.Degrees, cur.Width, cur.Height))
	w, h := m.ProjectDimensions(ow, oh)
	page.History.Add(fmt.Sprintf("rotate %d°", op.Degrees), m, w, h, cur.Deleted)
	page.InvalidateThumbs()
	doc.RecomputeModified()
	return nil
}

func (s *Service) mirror(op Mirror) error {
	doc, page, err := s.store.Page(op.Page)
	if err != nil {
		return err
	}
	cur := page.History.Current()
	var mir coords.Matrix
	switch op.Direction {
	case Horizontal:
		mir = coords.MirrorHorizontal(cur.Width)
	case Vertical:
		mir = coords.MirrorVertical(cur.Height)
	default:
		return fmt.Errorf("service: unknown mirror direction %d", op.Direction)
	}
	ep, err := doc.Original().Page(op.Page.Page)
	if err != nil {
		return &EngineError{Op: "load page", Err: err}
	}
	ow, oh := ep.Size()
	m := cur.Matrix.Multiply(mir)
	w, h := m.ProjectDimensions(ow, oh)
	page.History.Add("mirror "+op.Direction.String(), m, w, h, cur.Deleted)
	page.InvalidateThumbs()
	doc.RecomputeModified()
	return nil
}

func (s *Service) toggleDelete(op Delete) error {
	doc, page, err := s.store.Page(op.Page)
	if err != nil {
		return err
	}
	cur := page.History.Current()
	label := "delete"
	if cur.Deleted {
		label = "undelete"
	}
	page.History.Add(label, cur.Matrix, cur.Width, cur.Height, !cur.Deleted)
	page.InvalidateThumbs()
	doc.RecomputeModified()
	return nil
}

func (s *Service) revert(op Revert) error {
	doc, page, err := s.store.Page(op.Page)
	if err != nil {
		return err
	}
	page.History.Reset()
	page.InvalidateThumbs()
	doc.RecomputeModified()
	return nil
}

func (s *Service) reorder(op Reorder) error {
	_, src, err := s.store.Page(op.Source)
	if err != nil {
		return err
	}
	doc, tgt, err := s.store.Page(op.Target)
	if err != nil {
		return err
	}
	if op.Source.Doc != op.Target.Doc {
		return ErrCrossDocumentReorder
	}
	if src != tgt {
		from, to := src.Pos, tgt.Pos
		pages := doc.Pages
		moved := pages[from]
		pages = append(pages[:from], pages[from+1:]...)
		if to > len(pages) {
			to = len(pages)
		}
		pages = append(pages[:to], append([]*store.Page{moved}, pages[to:]...)...)
		doc.Pages = pages
		for i, p := range doc.Pages {
			p.Pos = i
		}
		src.InvalidateThumbs()
	}
	doc.RecomputeModified()
	return nil
}

// split is the one destructive operation: it bakes every page's current
// transform into a scratch copy of the working document, collects the
// surviving pages of each half in their on-screen order, and replaces
// the source document with the two halves, each starting a fresh
// history. The bake is the commit point — edit history does not carry
// over. Working on a scratch copy keeps the stored handles untouched
// until the whole bake succeeds, so a failed split can simply be
// retried.
func (s *Service) split(op Split) error {
	doc, err := s.store.Document(op.Doc)
	if err != nil {
		return err
	}
	n := len(doc.Pages)
	if op.After < 0 || op.After >= n-1 {
		return ErrInvalidSplitPosition
	}
	// The halves are cut by view position and keep view order, skipping
	// soft-deleted pages; each side must keep at least one survivor.
	// doc.Pages is already in view order, so the collected source
	// indices come out ordered the way the user sees the pages.
	var left, right []int
	for _, p := range doc.Pages {
		if p.History.Current().Deleted {
			continue
		}
		if p.Pos <= op.After {
			left = append(left, p.ID.Page)
		} else {
			right = append(right, p.ID.Page)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return ErrInvalidSplitPosition
	}

	base, err := doc.Working().Save()
	if err != nil {
		return &EngineError{Op: "save", Err: err}
	}
	scratch, err := s.store.Engine().OpenBytes(base)
	if err != nil {
		return &EngineError{Op: "open working copy", Err: err}
	}
	defer scratch.Close()

	for _, p := range doc.Pages {
		cur := p.History.Current()
		if cur.Deleted || cur.Matrix.IsIdentity(coords.IdentityEpsilon) {
			continue
		}
		ep, err := scratch.Page(p.ID.Page)
		if err != nil {
			return &EngineError{Op: "load page", Err: err}
		}
		if err := ep.ApplyTransform(cur.Matrix); err != nil {
			return &EngineError{Op: "apply transform", Err: err}
		}
		if err := ep.RegenerateContent(); err != nil {
			return &EngineError{Op: "regenerate content", Err: err}
		}
	}
	leftBytes, err := scratch.ExtractPages(left)
	if err != nil {
		return &EngineError{Op: "extract pages", Err: err}
	}
	rightBytes, err := scratch.ExtractPages(right)
	if err != nil {
		return &EngineError{Op: "extract pages", Err: err}
	}

	leftDoc, err := s.store.AddDocument(store.SourceMemory, splitName(doc.Name, 1), "", leftBytes)
	if err != nil {
		return &EngineError{Op: "open split result", Err: err}
	}
	rightDoc, err := s.store.AddDocument(store.SourceMemory, splitName(doc.Name, 2), "", rightBytes)
	if err != nil {
		s.store.Remove(leftDoc.ID)
		leftDoc.Dispose()
		return &EngineError{Op: "open split result", Err: err}
	}
	s.store.Remove(doc.ID)
	doc.Dispose()
	s.log.Info("document split",
		observability.Int("doc", doc.ID),
		observability.Int("left", leftDoc.ID),
		observability.Int("right", rightDoc.ID))
	return nil
}

func splitName(name string, part int) string {
	return fmt.Sprintf("%s (part %d)", name, part)
}

// OpenDocument loads a new source into the store.
func (s *Service) OpenDocument(kind store.SourceKind, name, path string, data []byte) (DocumentInfo, Result, error) {
	s.store.Lock()
	defer s.store.Unlock()
	doc, err := s.store.AddDocument(kind, name, path, data)
	if err != nil {
		return DocumentInfo{}, s.uncommitted(), &EngineError{Op: "open document", Err: err}
	}
	s.log.Info("document opened",
		observability.Int("doc", doc.ID),
		observability.String("name", doc.Name),
		observability.Int("pages", len(doc.Pages)))
	return documentInfo(doc), s.commit(), nil
}

// ResetAll reverts every page of every document to version 0.
func (s *Service) ResetAll() Result {
	s.store.Lock()
	defer s.store.Unlock()
	for _, doc := range s.store.Documents() {
		for _, p := range doc.Pages {
			if !p.History.IsEmpty() {
				p.History.Reset()
				p.InvalidateThumbs()
			}
		}
		doc.RecomputeModified()
	}
	return s.commit()
}

// ClearAll swaps the store's collection for an empty one, then disposes
// of the swapped-out documents once no lookup can reach them.
func (s *Service) ClearAll() Result {
	s.store.Lock()
	snapshot := s.store.Clear()
	res := s.commit()
	s.store.Unlock()
	for _, doc := range snapshot {
		doc.Dispose()
	}
	return res
}

// SetDPI clamps and applies the global render resolution. Setting the
// value already in effect is a no-op: no caches are dropped and the
// change counter is not bumped.
func (s *Service) SetDPI(dpi int) (Result, bool) {
	s.store.Lock()
	defer s.store.Unlock()
	if !s.store.SetDPI(dpi) {
		return s.uncommitted(), false
	}
	return s.commit(), true
}

// DPI returns the global render resolution.
func (s *Service) DPI() int {
	s.store.RLock()
	defer s.store.RUnlock()
	return s.store.DPI()
}

// Thumbnail returns the PNG render of a page, at its current state or
// its original one. Renders are lazy: the first request at the current
// resolution populates the page's cache, mutations and resolution
// changes drop it. Rendering happens outside the write lock; the result
// is only cached if no mutation landed in the meantime.
func (s *Service) Thumbnail(id store.PageID, original bool) ([]byte, error) {
	s.store.RLock()
	doc, page, err := s.store.Page(id)
	if err != nil {
		s.store.RUnlock()
		return nil, err
	}
	if b := page.Thumb(original); b != nil {
		s.store.RUnlock()
		return b, nil
	}
	m := coords.Identity()
	if !original {
		m = page.History.Current().Matrix
	}
	dpi := float64(s.store.DPI())
	ep, err := doc.Original().Page(id.Page)
	s.store.RUnlock()
	if err != nil {
		return nil, &EngineError{Op: "load page", Err: err}
	}

	before := s.changes.Load()
	data, err := render.Page(ep, m, dpi)
	if err != nil {
		return nil, &EngineError{Op: "render page", Err: err}
	}

	s.store.Lock()
	if s.changes.Load() == before {
		if _, p, err := s.store.Page(id); err == nil {
			p.SetThumb(original, data)
		}
	}
	s.store.Unlock()
	return data, nil
}
