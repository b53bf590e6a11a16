package service

import (
	"github.com/wudi/pagedesk/coords"
	"github.com/wudi/pagedesk/store"
)

// DocumentInfo is the read-model snapshot of one document, enough for a
// client to lay out its pages and gray out affordances like a reset
// button when nothing is modified.
type DocumentInfo struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Modified  bool       `json:"modified"`
	PageCount int        `json:"pageCount"`
	Pages     []PageInfo `json:"pages"`
}

type PageInfo struct {
	ID      store.PageID `json:"id"`
	Pos     int          `json:"pos"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Deleted bool         `json:"deleted"`
	Summary string       `json:"summary"`
}

// VersionInfo mirrors one history entry so a client can show "what will
// be reverted".
type VersionInfo struct {
	Index   int           `json:"index"`
	Label   string        `json:"label"`
	Matrix  coords.Matrix `json:"matrix"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Deleted bool          `json:"deleted"`
}

type HistoryInfo struct {
	Page     store.PageID  `json:"page"`
	Current  int           `json:"current"`
	Summary  string        `json:"summary"`
	Versions []VersionInfo `json:"versions"`
}

// ListDocuments returns a snapshot of every open document in insertion
// order.
func (s *Service) ListDocuments() []DocumentInfo {
	s.store.RLock()
	defer s.store.RUnlock()
	docs := s.store.Documents()
	out := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentInfo(doc))
	}
	return out
}

// GetDocument returns the snapshot of one document.
func (s *Service) GetDocument(id int) (DocumentInfo, error) {
	s.store.RLock()
	defer s.store.RUnlock()
	doc, err := s.store.Document(id)
	if err != nil {
		return DocumentInfo{}, err
	}
	return documentInfo(doc), nil
}

// PageHistory returns a page's full version log.
func (s *Service) PageHistory(id store.PageID) (HistoryInfo, error) {
	s.store.RLock()
	defer s.store.RUnlock()
	_, page, err := s.store.Page(id)
	if err != nil {
		return HistoryInfo{}, err
	}
	info := HistoryInfo{
		Page:    id,
		Current: page.History.CurrentIndex(),
		Summary: page.History.Describe(),
	}
	for _, v := range page.History.Versions() {
		info.Versions = append(info.Versions, VersionInfo{
			Index:   v.Index,
			Label:   v.Label,
			Matrix:  v.Matrix,
			Width:   v.Width,
			Height:  v.Height,
			Deleted: v.Deleted,
		})
	}
	return info, nil
}

func documentInfo(doc *store.Document) DocumentInfo {
	info := DocumentInfo{
		ID:        doc.ID,
		Name:      doc.Name,
		Color:     doc.Color,
		Modified:  doc.Modified,
		PageCount: len(doc.Pages),
	}
	for _, p := range doc.Pages {
		cur := p.History.Current()
		info.Pages = append(info.Pages, PageInfo{
			ID:      p.ID,
			Pos:     p.Pos,
			Width:   cur.Width,
			Height:  cur.Height,
			Deleted: cur.Deleted,
			Summary: p.History.Describe(),
		})
	}
	return info
}
