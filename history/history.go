// Package history keeps the append-only edit log of a single page. Every
// entry snapshots the page's accumulated transform, its projected
// dimensions and the soft-delete flag; a cursor selects which snapshot is
// current. Reverting truncates the log back to the chosen version: there
// is no redo branch, a revert followed by a fresh edit starts a new
// lineage.
package history

import (
	"fmt"
	"strings"

	"github.com/wudi/pagedesk/coords"
)

// OriginalLabel names version 0 of every history.
const OriginalLabel = "original"

// Version is an immutable snapshot of a page's state.
type Version struct {
	Index   int
	Label   string
	Matrix  coords.Matrix
	Width   float64
	Height  float64
	Deleted bool
}

// History is the ordered version log of one page. The zero value is not
// usable; construct with New so version 0 carries the page's original
// geometry.
type History struct {
	versions []Version
	current  int
}

// New returns a history whose single entry is version 0: identity
// transform, the original dimensions, not deleted.
func New(width, height float64) *History {
	return &History{
		versions: []Version{{
			Index:  0,
			Label:  OriginalLabel,
			Matrix: coords.Identity(),
			Width:  width,
			Height: height,
		}},
	}
}

// Current returns the snapshot the cursor points at.
func (h *History) Current() Version { return h.versions[h.current] }

// Add appends a new version and moves the cursor to it.
func (h *History) Add(label string, m coords.Matrix, width, height float64, deleted bool) Version {
	h.versions = h.versions[:h.current+1]
	v := Version{
		Index:   len(h.versions),
		Label:   label,
		Matrix:  m,
		Width:   width,
		Height:  height,
		Deleted: deleted,
	}
	h.versions = append(h.versions, v)
	h.current = v.Index
	return v
}

// RevertTo moves the cursor to a previously recorded version and
// discards everything after it, so the dropped edits cannot be redone.
// An index outside the log is a programmer error, not a recoverable
// condition: callers validate identifiers, and the only index they pass
// through is 0.
func (h *History) RevertTo(v int) {
	if v < 0 || v >= len(h.versions) {
		panic(fmt.Sprintf("history: version %d out of range [0,%d)", v, len(h.versions)))
	}
	h.versions = h.versions[:v+1]
	h.current = v
}

// Reset reverts to version 0.
func (h *History) Reset() { h.RevertTo(0) }

// IsEmpty reports whether the cursor is at version 0.
func (h *History) IsEmpty() bool { return h.current == 0 }

// Len returns the number of recorded versions.
func (h *History) Len() int { return len(h.versions) }

// CurrentIndex returns the cursor position.
func (h *History) CurrentIndex() int { return h.current }

// Versions returns a copy of the log, oldest first.
func (h *History) Versions() []Version {
	out := make([]Version, len(h.versions))
	copy(out, h.versions)
	return out
}

// Describe summarizes the edits up to the cursor: "no changes" at
// version 0, "deleted" when the current snapshot is soft-deleted, and
// otherwise the operation labels joined with ", ".
func (h *History) Describe() string {
	if h.IsEmpty() {
		return "no changes"
	}
	if h.Current().Deleted {
		return "deleted"
	}
	labels := make([]string, 0, h.current)
	for _, v := range h.versions[1 : h.current+1] {
		labels = append(labels, v.Label)
	}
	return strings.Join(labels, ", ")
}
