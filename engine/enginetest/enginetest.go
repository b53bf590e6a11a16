// Package enginetest provides a deterministic in-memory implementation
// of engine.Engine for tests. Documents "serialize" to a small JSON form
// so bytes produced by Save and ExtractPages can be reopened through
// OpenBytes, which is enough to exercise the full split path without a
// real PDF library.
package enginetest

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/wudi/pagedesk/coords"
	"github.com/wudi/pagedesk/engine"
)

// Engine fabricates documents. Sources that are not fake serialized
// bytes (file paths, uploads) get one page per entry of PageSizes.
type Engine struct {
	PageSizes [][2]float64

	// OpenErr, when set, makes both Open and OpenBytes fail.
	OpenErr error

	// TransformErrs seeds the TransformErr of the page at each index on
	// every document opened afterwards.
	TransformErrs map[int]error

	mu     sync.Mutex
	opened []*Document
}

func New(pageSizes ...[2]float64) *Engine {
	return &Engine{PageSizes: pageSizes}
}

// Opened returns every document handed out so far, in open order.
func (e *Engine) Opened() []*Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Document, len(e.opened))
	copy(out, e.opened)
	return out
}

func (e *Engine) Open(path string) (engine.Document, error) {
	if e.OpenErr != nil {
		return nil, e.OpenErr
	}
	return e.track(e.fromSizes()), nil
}

func (e *Engine) OpenBytes(data []byte) (engine.Document, error) {
	if e.OpenErr != nil {
		return nil, e.OpenErr
	}
	var ser serialized
	if err := json.Unmarshal(data, &ser); err == nil && len(ser.Pages) > 0 {
		d := &Document{}
		for i, p := range ser.Pages {
			d.pages = append(d.pages, &Page{W: p.W, H: p.H, TransformErr: e.TransformErrs[i]})
		}
		return e.track(d), nil
	}
	return e.track(e.fromSizes()), nil
}

func (e *Engine) fromSizes() *Document {
	d := &Document{}
	for i, s := range e.PageSizes {
		d.pages = append(d.pages, &Page{W: s[0], H: s[1], TransformErr: e.TransformErrs[i]})
	}
	return d
}

func (e *Engine) track(d *Document) *Document {
	e.mu.Lock()
	e.opened = append(e.opened, d)
	e.mu.Unlock()
	return d
}

type serialized struct {
	Pages []serializedPage `json:"pages"`
}

type serializedPage struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Document implements engine.Document over a slice of fake pages.
// Failure injection fields apply to the next matching call.
type Document struct {
	SaveErr    error
	ExtractErr error

	mu     sync.Mutex
	pages  []*Page
	closed bool
}

func (d *Document) PageCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pages), nil
}

func (d *Document) Page(index int) (engine.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("enginetest: page %d out of range", index)
	}
	return d.pages[index], nil
}

func (d *Document) ExtractPages(pages []int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ExtractErr != nil {
		return nil, d.ExtractErr
	}
	selected := make([]*Page, 0, len(pages))
	for _, idx := range pages {
		if idx < 0 || idx >= len(d.pages) {
			return nil, fmt.Errorf("enginetest: page %d out of range", idx)
		}
		selected = append(selected, d.pages[idx])
	}
	return marshal(selected)
}

func (d *Document) Save() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SaveErr != nil {
		return nil, d.SaveErr
	}
	return marshal(d.pages)
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("enginetest: already closed")
	}
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *Document) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func marshal(pages []*Page) ([]byte, error) {
	ser := serialized{}
	for _, p := range pages {
		ser.Pages = append(ser.Pages, serializedPage{W: p.W, H: p.H})
	}
	return json.Marshal(ser)
}

// Page records every call made against it.
type Page struct {
	W, H float64

	// TransformErr, when set, makes ApplyTransform fail.
	TransformErr error

	mu          sync.Mutex
	transforms  []coords.Matrix
	regenerated int
	renders     int
}

func (p *Page) Size() (float64, float64) { return p.W, p.H }

func (p *Page) ApplyTransform(m coords.Matrix) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.TransformErr != nil {
		return p.TransformErr
	}
	p.transforms = append(p.transforms, m)
	return nil
}

func (p *Page) RegenerateContent() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regenerated++
	return nil
}

// Render returns a uniform gray image sized for the page at the given
// resolution.
func (p *Page) Render(dpi float64) (image.Image, error) {
	p.mu.Lock()
	p.renders++
	p.mu.Unlock()
	w := int(math.Round(p.W * dpi / 72))
	h := int(math.Round(p.H * dpi / 72))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xcc
	}
	return img, nil
}

// Transforms returns the matrices applied so far.
func (p *Page) Transforms() []coords.Matrix {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]coords.Matrix, len(p.transforms))
	copy(out, p.transforms)
	return out
}

// Regenerated returns how many times RegenerateContent was called.
func (p *Page) Regenerated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regenerated
}

// Renders returns how many times Render was called.
func (p *Page) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}
