package service

import "github.com/wudi/pagedesk/store"

// Direction selects a mirror axis.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// Op is the closed set of page mutations. Every variant goes through
// Service.Apply, so identifier validation, the commit-as-last-step
// discipline and change notification live in exactly one place.
type Op interface{ op() }

// Rotate turns a page by a quarter-turn multiple of degrees.
type Rotate struct {
	Page    store.PageID
	Degrees int
}

// Mirror flips a page across one of its center lines.
type Mirror struct {
	Page      store.PageID
	Direction Direction
}

// Delete toggles a page's soft-delete flag. Applying it twice returns
// the page to its non-deleted state.
type Delete struct {
	Page store.PageID
}

// Revert moves a page back to its original state, version 0.
type Revert struct {
	Page store.PageID
}

// Reorder moves the source page to the target page's position. Both
// pages must belong to the same document.
type Reorder struct {
	Source store.PageID
	Target store.PageID
}

// Split bakes a document's accumulated edits into its working copy and
// divides the result after the given page position.
type Split struct {
	Doc   int
	After int
}

func (Rotate) op()  {}
func (Mirror) op()  {}
func (Delete) op()  {}
func (Revert) op()  {}
func (Reorder) op() {}
func (Split) op()   {}

func opName(op Op) string {
	switch op.(type) {
	case Rotate:
		return "rotate"
	case Mirror:
		return "mirror"
	case Delete:
		return "delete"
	case Revert:
		return "revert"
	case Reorder:
		return "reorder"
	case Split:
		return "split"
	default:
		return "unknown"
	}
}
