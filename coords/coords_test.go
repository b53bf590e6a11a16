package coords

import (
	"math"
	"testing"
)

func matricesClose(t *testing.T, got, want Matrix, eps float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("component %d: got %v, want %v (matrix %v vs %v)", i, got[i], want[i], got, want)
		}
	}
}

// applyRotations composes successive quarter turns the way the editor
// does: each rotation matrix is built from the page dimensions as they
// stand after the previous turns.
func applyRotations(w, h float64, degrees ...int) Matrix {
	m := Identity()
	cw, ch := w, h
	for _, d := range degrees {
		m = m.Multiply(RotateQuadrant(d, cw, ch))
		cw, ch = m.ProjectDimensions(w, h)
	}
	return m
}

func TestRotationsSummingToFullTurnAreIdentity(t *testing.T) {
	cases := []struct {
		name    string
		degrees []int
	}{
		{"four quarters", []int{90, 90, 90, 90}},
		{"two halves", []int{180, 180}},
		{"quarter and three quarters", []int{90, 270}},
		{"quarter then back", []int{90, -90}},
		{"mixed to 720", []int{270, 180, 90, 90, 90}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := applyRotations(612, 792, tc.degrees...)
			if !m.IsIdentity(IdentityEpsilon) {
				t.Fatalf("composed rotation %v is not identity: %v", tc.degrees, m)
			}
		})
	}
}

func TestDoubleMirrorIsIdentity(t *testing.T) {
	const w, h = 595.0, 842.0
	mh := MirrorHorizontal(w).Multiply(MirrorHorizontal(w))
	if !mh.IsIdentity(IdentityEpsilon) {
		t.Fatalf("double horizontal mirror is not identity: %v", mh)
	}
	mv := MirrorVertical(h).Multiply(MirrorVertical(h))
	if !mv.IsIdentity(IdentityEpsilon) {
		t.Fatalf("double vertical mirror is not identity: %v", mv)
	}
}

func TestMirrorBothAxesEqualsHalfTurn(t *testing.T) {
	const w, h = 612.0, 792.0
	got := MirrorHorizontal(w).Multiply(MirrorVertical(h))
	matricesClose(t, got, RotateQuadrant(180, w, h), 1e-6)
}

func TestRotateQuadrantMapsCorners(t *testing.T) {
	const w, h = 100.0, 200.0
	m := RotateQuadrant(90, w, h)
	// The page origin moves to (h, 0) and the far corner to (0, w).
	if p := m.Transform(Point{0, 0}); p.X != h || p.Y != 0 {
		t.Fatalf("origin mapped to %+v", p)
	}
	if p := m.Transform(Point{w, h}); p.X != 0 || p.Y != w {
		t.Fatalf("far corner mapped to %+v", p)
	}
}

func TestProjectDimensions(t *testing.T) {
	const w, h = 612.0, 792.0
	cases := []struct {
		name   string
		m      Matrix
		wantW  float64
		wantH  float64
	}{
		{"identity", Identity(), w, h},
		{"quarter turn swaps", RotateQuadrant(90, w, h), h, w},
		{"half turn keeps", RotateQuadrant(180, w, h), w, h},
		{"mirror keeps", MirrorHorizontal(w), w, h},
		{"scale doubles", Scale(2, 2), 2 * w, 2 * h},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw, gh := tc.m.ProjectDimensions(w, h)
			if math.Abs(gw-tc.wantW) > 1e-6 || math.Abs(gh-tc.wantH) > 1e-6 {
				t.Fatalf("got %vx%v, want %vx%v", gw, gh, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestOrientation(t *testing.T) {
	const w, h = 612.0, 792.0
	cases := []struct {
		name     string
		m        Matrix
		rot      int
		flip     bool
	}{
		{"identity", Identity(), 0, false},
		{"quarter", RotateQuadrant(90, w, h), 90, false},
		{"half", RotateQuadrant(180, w, h), 180, false},
		{"three quarters", RotateQuadrant(270, w, h), 270, false},
		{"mirror h", MirrorHorizontal(w), 0, true},
		{"mirror v", MirrorVertical(h), 180, true},
		{"mirror then quarter", MirrorHorizontal(w).Multiply(RotateQuadrant(90, w, h)), 90, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rot, flip, ok := tc.m.Orientation()
			if !ok {
				t.Fatalf("orientation not recognized for %v", tc.m)
			}
			if rot != tc.rot || flip != tc.flip {
				t.Fatalf("got rot=%d flip=%v, want rot=%d flip=%v", rot, flip, tc.rot, tc.flip)
			}
		})
	}

	if _, _, ok := Scale(2, 1).Orientation(); ok {
		t.Fatal("scaling matrix should not decompose into an orientation")
	}
	if _, _, ok := (Matrix{1, 0.5, 0, 1, 0, 0}).Orientation(); ok {
		t.Fatal("shearing matrix should not decompose into an orientation")
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := RotateQuadrant(90, 612, 792).Multiply(MirrorHorizontal(792))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if got := m.Multiply(inv); !got.IsIdentity(1e-9) {
		t.Fatalf("m * m^-1 = %v, not identity", got)
	}
	if _, err := Scale(0, 0).Inverse(); err == nil {
		t.Fatal("singular matrix should not invert")
	}
}
