// Package hybrid implements engine.Engine by pairing two providers:
// pdfcpu performs the destructive page surgery (rotation bakes, physical
// deletion, range extraction) on in-memory document bytes, and MuPDF via
// go-fitz supplies page geometry and rasterization. The pairing covers
// the editor's whole engine contract; neither library does both halves.
package hybrid

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strconv"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wudi/pagedesk/coords"
	"github.com/wudi/pagedesk/engine"
)

type Engine struct {
	conf *model.Configuration
}

func New() *Engine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Engine{conf: conf}
}

func (e *Engine) Open(path string) (engine.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return e.OpenBytes(data)
}

func (e *Engine) OpenBytes(data []byte) (engine.Document, error) {
	fdoc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("mupdf open: %w", err)
	}
	return &Document{eng: e, data: data, fdoc: fdoc}, nil
}

// Document holds the current document bytes plus a MuPDF handle opened
// on them. Mutations go through pdfcpu and replace the bytes; the MuPDF
// handle is reopened lazily afterwards.
type Document struct {
	eng *Engine

	mu     sync.Mutex
	data   []byte
	fdoc   *fitz.Document
	stale  bool
	closed bool
}

func (d *Document) PageCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return d.fdoc.NumPage(), nil
}

func (d *Document) Page(index int) (engine.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.refresh(); err != nil {
		return nil, err
	}
	if index < 0 || index >= d.fdoc.NumPage() {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, d.fdoc.NumPage())
	}
	bound, err := d.fdoc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("page %d bounds: %w", index+1, err)
	}
	return &Page{doc: d, index: index, w: float64(bound.Dx()), h: float64(bound.Dy())}, nil
}

// ExtractPages assembles a new document from the listed pages, in the
// listed order, via pdfcpu's collect operation.
func (d *Document) ExtractPages(pages []int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("collect pages: document is closed")
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("empty page selection")
	}
	sel := make([]string, 0, len(pages))
	for _, idx := range pages {
		if idx < 0 {
			return nil, fmt.Errorf("page %d out of range", idx)
		}
		sel = append(sel, strconv.Itoa(idx+1))
	}
	var out bytes.Buffer
	if err := api.Collect(bytes.NewReader(d.data), &out, sel, d.eng.conf); err != nil {
		return nil, fmt.Errorf("collect pages %v: %w", sel, err)
	}
	return out.Bytes(), nil
}

func (d *Document) Save() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("save: document is closed")
	}
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out, nil
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.fdoc == nil {
		return nil
	}
	err := d.fdoc.Close()
	d.fdoc = nil
	return err
}

// mutate runs a pdfcpu operation producing new document bytes and marks
// the MuPDF handle stale. Callers hold d.mu.
func (d *Document) mutate(op string, fn func(out *bytes.Buffer) error) error {
	if d.closed {
		return fmt.Errorf("%s: document is closed", op)
	}
	var out bytes.Buffer
	if err := fn(&out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	d.data = out.Bytes()
	d.stale = true
	return nil
}

// refresh reopens the MuPDF handle if the bytes changed. A closed
// document stays closed; reopening here would leak the new handle past
// the owner's Close. Callers hold d.mu.
func (d *Document) refresh() error {
	if d.closed {
		return fmt.Errorf("document is closed")
	}
	if d.fdoc != nil && !d.stale {
		return nil
	}
	if d.fdoc != nil {
		d.fdoc.Close()
		d.fdoc = nil
	}
	fdoc, err := fitz.NewFromMemory(d.data)
	if err != nil {
		return fmt.Errorf("mupdf reopen: %w", err)
	}
	d.fdoc = fdoc
	d.stale = false
	return nil
}

// Page carries its dimensions from the moment the handle was created, so
// Size cannot fail after Page already validated the document.
type Page struct {
	doc   *Document
	index int
	w, h  float64
}

func (p *Page) Size() (float64, float64) { return p.w, p.h }

// ApplyTransform bakes a quarter-turn rotation into the page. Matrices
// carrying a mirror component are refused: pdfcpu has no page-flip
// primitive, and a flip cannot be expressed as a /Rotate entry.
func (p *Page) ApplyTransform(m coords.Matrix) error {
	clockwise, err := rotationFor(m)
	if err != nil {
		return err
	}
	if clockwise == 0 {
		return nil
	}
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.doc.mutate("rotate page", func(out *bytes.Buffer) error {
		sel := []string{strconv.Itoa(p.index + 1)}
		return api.Rotate(bytes.NewReader(p.doc.data), out, clockwise, sel, p.doc.eng.conf)
	})
}

// RegenerateContent is a no-op: pdfcpu rewrites page dictionaries and
// content streams as part of each mutation.
func (p *Page) RegenerateContent() error { return nil }

func (p *Page) Render(dpi float64) (image.Image, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if err := p.doc.refresh(); err != nil {
		return nil, err
	}
	img, err := p.doc.fdoc.ImageDPI(p.index, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", p.index+1, err)
	}
	return img, nil
}

// rotationFor maps a composed transform matrix onto the clockwise
// degrees pdfcpu expects. Matrix rotations are counterclockwise.
func rotationFor(m coords.Matrix) (int, error) {
	rot, flipped, ok := m.Orientation()
	if !ok {
		return 0, fmt.Errorf("transform %v is not a quarter-turn orientation", m)
	}
	if flipped {
		return 0, fmt.Errorf("mirrored transform %v cannot be baked", m)
	}
	return (360 - rot) % 360, nil
}
