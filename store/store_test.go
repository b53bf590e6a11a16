package store

import (
	"errors"
	"testing"

	"github.com/wudi/pagedesk/engine/enginetest"
)

func newTestStore(t *testing.T, sizes ...[2]float64) (*Store, *enginetest.Engine) {
	t.Helper()
	if len(sizes) == 0 {
		sizes = [][2]float64{{612, 792}, {612, 792}, {595, 842}}
	}
	eng := enginetest.New(sizes...)
	return New(eng), eng
}

func TestAddDocumentSeedsPages(t *testing.T) {
	s, eng := newTestStore(t)
	doc, err := s.AddDocument(SourcePath, "report.pdf", "/tmp/report.pdf", nil)
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if doc.ID != 1 {
		t.Fatalf("first document id %d", doc.ID)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("page count %d", len(doc.Pages))
	}
	if doc.Modified {
		t.Fatal("fresh document should not be modified")
	}
	for i, p := range doc.Pages {
		if p.ID != (PageID{Doc: 1, Page: i}) || p.Pos != i || p.OriginalPos != i {
			t.Fatalf("page %d identity: %+v", i, p)
		}
		if !p.History.IsEmpty() {
			t.Fatalf("page %d history not fresh", i)
		}
	}
	cur := doc.Pages[2].History.Current()
	if cur.Width != 595 || cur.Height != 842 {
		t.Fatalf("page 2 seeded with %vx%v", cur.Width, cur.Height)
	}
	// Original and working handles are distinct opens.
	if got := len(eng.Opened()); got != 2 {
		t.Fatalf("engine opened %d documents, want 2", got)
	}
}

func TestAddDocumentOpenFailure(t *testing.T) {
	s, eng := newTestStore(t)
	eng.OpenErr = errors.New("corrupt header")
	if _, err := s.AddDocument(SourceMemory, "bad.pdf", "", []byte("junk")); err == nil {
		t.Fatal("expected open failure")
	}
	if len(s.Documents()) != 0 {
		t.Fatal("failed open must not register a document")
	}
}

func TestLookupErrors(t *testing.T) {
	s, _ := newTestStore(t)
	doc, err := s.AddDocument(SourcePath, "a.pdf", "/tmp/a.pdf", nil)
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	if _, err := s.Document(99); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("missing document: %v", err)
	}
	if _, _, err := s.Page(PageID{Doc: doc.ID, Page: 42}); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("missing page: %v", err)
	}
	if _, _, err := s.Page(PageID{Doc: doc.ID, Page: 1}); err != nil {
		t.Fatalf("existing page: %v", err)
	}
}

func TestColorsAreDeterministic(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.AddDocument(SourcePath, "a.pdf", "/tmp/a.pdf", nil)
	b, _ := s.AddDocument(SourcePath, "b.pdf", "/tmp/b.pdf", nil)
	if a.Color == "" || b.Color == "" {
		t.Fatal("documents should get a palette color")
	}
	if a.Color != palette[1%len(palette)] || b.Color != palette[2%len(palette)] {
		t.Fatalf("colors %q/%q not taken from the palette by id", a.Color, b.Color)
	}
}

func TestSetDPIClampsAndInvalidates(t *testing.T) {
	s, _ := newTestStore(t)
	doc, _ := s.AddDocument(SourcePath, "a.pdf", "/tmp/a.pdf", nil)
	page := doc.Pages[0]
	page.SetThumb(false, []byte("png"))
	page.SetThumb(true, []byte("png"))

	if changed := s.SetDPI(DefaultDPI); changed {
		t.Fatal("setting the current DPI should be a no-op")
	}
	if page.Thumb(false) == nil {
		t.Fatal("no-op DPI change must not invalidate caches")
	}

	if changed := s.SetDPI(10_000); !changed {
		t.Fatal("clamped DPI change should still register")
	}
	if s.DPI() != MaxDPI {
		t.Fatalf("DPI %d, want clamp to %d", s.DPI(), MaxDPI)
	}
	if page.Thumb(false) != nil || page.Thumb(true) != nil {
		t.Fatal("DPI change must drop every cached thumbnail")
	}

	s.SetDPI(1)
	if s.DPI() != MinDPI {
		t.Fatalf("DPI %d, want clamp to %d", s.DPI(), MinDPI)
	}
}

func TestClearSwapsCollection(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddDocument(SourcePath, "a.pdf", "/tmp/a.pdf", nil)
	s.AddDocument(SourcePath, "b.pdf", "/tmp/b.pdf", nil)

	snapshot := s.Clear()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d documents", len(snapshot))
	}
	if len(s.Documents()) != 0 {
		t.Fatal("store should be empty after clear")
	}
	// New documents keep advancing the id sequence.
	doc, _ := s.AddDocument(SourcePath, "c.pdf", "/tmp/c.pdf", nil)
	if doc.ID != 3 {
		t.Fatalf("id after clear %d, want 3", doc.ID)
	}
}

func TestRecomputeModified(t *testing.T) {
	s, _ := newTestStore(t)
	doc, _ := s.AddDocument(SourcePath, "a.pdf", "/tmp/a.pdf", nil)

	doc.Pages[1].History.Add("rotate 90°", doc.Pages[1].History.Current().Matrix, 792, 612, false)
	doc.RecomputeModified()
	if !doc.Modified {
		t.Fatal("edited page should mark the document modified")
	}

	doc.Pages[1].History.Reset()
	doc.RecomputeModified()
	if doc.Modified {
		t.Fatal("reverted document should not be modified")
	}

	// Order drift alone also counts as modified.
	doc.Pages[0].Pos, doc.Pages[1].Pos = 1, 0
	doc.RecomputeModified()
	if !doc.Modified {
		t.Fatal("reordered document should be modified")
	}
}
