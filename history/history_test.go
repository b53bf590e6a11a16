package history

import (
	"testing"

	"github.com/wudi/pagedesk/coords"
)

func TestNewStartsAtOriginal(t *testing.T) {
	h := New(612, 792)
	if !h.IsEmpty() {
		t.Fatal("fresh history should be empty")
	}
	cur := h.Current()
	if cur.Index != 0 || cur.Label != OriginalLabel || cur.Deleted {
		t.Fatalf("unexpected version 0: %+v", cur)
	}
	if !cur.Matrix.IsIdentity(coords.IdentityEpsilon) {
		t.Fatalf("version 0 matrix should be identity, got %v", cur.Matrix)
	}
	if cur.Width != 612 || cur.Height != 792 {
		t.Fatalf("version 0 dimensions %vx%v", cur.Width, cur.Height)
	}
}

func TestAddIsStrictlyMonotonic(t *testing.T) {
	h := New(100, 200)
	for i := 1; i <= 5; i++ {
		v := h.Add("edit", coords.Identity(), 100, 200, false)
		if v.Index != i {
			t.Fatalf("version %d has index %d", i, v.Index)
		}
		if h.CurrentIndex() != i {
			t.Fatalf("cursor at %d after %d adds", h.CurrentIndex(), i)
		}
		if h.Len() != i+1 {
			t.Fatalf("length %d after %d adds", h.Len(), i)
		}
	}
}

func TestRevertRestoresOriginal(t *testing.T) {
	h := New(100, 200)
	m := coords.RotateQuadrant(90, 100, 200)
	h.Add("rotate 90°", m, 200, 100, false)
	h.Add("delete", m, 200, 100, true)

	h.Reset()
	cur := h.Current()
	if cur.Deleted {
		t.Fatal("reverted version should not be deleted")
	}
	if cur.Width != 100 || cur.Height != 200 {
		t.Fatalf("reverted dimensions %vx%v", cur.Width, cur.Height)
	}
	if !h.IsEmpty() {
		t.Fatal("history should report empty after reset")
	}
	// The forward branch is gone: there is no redo.
	if h.Len() != 1 {
		t.Fatalf("length %d after reset, want 1", h.Len())
	}
}

func TestAddAfterRevertStartsNewLineage(t *testing.T) {
	h := New(100, 200)
	h.Add("rotate 90°", coords.RotateQuadrant(90, 100, 200), 200, 100, false)
	h.Add("rotate 90°", coords.RotateQuadrant(180, 100, 200), 100, 200, false)
	h.Reset()

	v := h.Add("mirror horizontal", coords.MirrorHorizontal(100), 100, 200, false)
	if v.Index != 1 {
		t.Fatalf("new version index %d, want 1", v.Index)
	}
	if h.Len() != 2 {
		t.Fatalf("length %d after discarding branch, want 2", h.Len())
	}
	if got := h.Versions()[1].Label; got != "mirror horizontal" {
		t.Fatalf("version 1 label %q", got)
	}
}

func TestRevertOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(100, 200).RevertTo(1)
}

func TestDescribe(t *testing.T) {
	h := New(100, 200)
	if got := h.Describe(); got != "no changes" {
		t.Fatalf("fresh history describes as %q", got)
	}

	h.Add("rotate 90°", coords.RotateQuadrant(90, 100, 200), 200, 100, false)
	h.Add("rotate -90°", coords.Identity(), 100, 200, false)
	if got := h.Describe(); got != "rotate 90°, rotate -90°" {
		t.Fatalf("describe = %q", got)
	}

	h.Add("delete", coords.Identity(), 100, 200, true)
	if got := h.Describe(); got != "deleted" {
		t.Fatalf("deleted page describes as %q", got)
	}
}
