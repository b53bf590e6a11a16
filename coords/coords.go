// Package coords implements the 2D affine matrix algebra used to track
// page transformations. A Matrix holds the six scalars [a b c d e f] of
// the map (x, y) -> (a*x + c*y + e, b*x + d*y + f), the same layout the
// PDF CTM uses. All constructors and compositions are pure.
package coords

import (
	"errors"
	"math"
)

// IdentityEpsilon is the per-component tolerance used by IsIdentity and
// Orientation. Quarter-turn compositions accumulate no more rounding
// error than this.
const IdentityEpsilon = 1e-6

type Matrix [6]float64

type Point struct{ X, Y float64 }

func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// RotateQuadrant returns the matrix rotating a w×h page counterclockwise
// by the given number of degrees, re-anchored so the rotated page stays
// in the first quadrant. Only quarter turns are supported; degrees are
// normalized modulo 360 and anything else collapses to identity.
func RotateQuadrant(degrees int, w, h float64) Matrix {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return Matrix{0, 1, -1, 0, h, 0}
	case 180:
		return Matrix{-1, 0, 0, -1, w, h}
	case 270:
		return Matrix{0, -1, 1, 0, 0, w}
	default:
		return Identity()
	}
}

// MirrorHorizontal flips a page of width w across its vertical center
// line: (x, y) -> (w-x, y).
func MirrorHorizontal(w float64) Matrix { return Matrix{-1, 0, 0, 1, w, 0} }

// MirrorVertical flips a page of height h across its horizontal center
// line: (x, y) -> (x, h-y).
func MirrorVertical(h float64) Matrix { return Matrix{1, 0, 0, -1, 0, h} }

// Multiply composes m with o: the returned matrix applies m first and o
// second. Call sites rely on this ordering when appending a new edit to
// a page's accumulated transform.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det, -m[1] / det,
		-m[2] / det, m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// IsIdentity reports whether every component of m is within eps of the
// identity matrix. Pass IdentityEpsilon unless a caller has a reason for
// a different tolerance.
func (m Matrix) IsIdentity(eps float64) bool {
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) > eps {
			return false
		}
	}
	return true
}

// ProjectDimensions transforms the four corners of the axis-aligned
// rectangle [0,w]×[0,h] through m and returns the width and height of
// the axis-aligned bounding box of the results. For quarter turns this
// amounts to swapping the dimensions, but projecting the corners keeps
// the computation valid for any affine map.
func (m Matrix) ProjectDimensions(w, h float64) (float64, float64) {
	corners := [4]Point{{0, 0}, {w, 0}, {0, h}, {w, h}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := m.Transform(c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return maxX - minX, maxY - minY
}

// Orientation decomposes the linear part of m into a counterclockwise
// quarter-turn rotation optionally preceded by a horizontal flip. Every
// composition of RotateQuadrant and Mirror matrices lands on one of the
// eight cases. ok is false when m contains scaling, shearing or a
// rotation that is not a multiple of 90°.
func (m Matrix) Orientation() (rotation int, flipped bool, ok bool) {
	forms := [8]struct {
		lin  [4]float64
		rot  int
		flip bool
	}{
		{[4]float64{1, 0, 0, 1}, 0, false},
		{[4]float64{0, 1, -1, 0}, 90, false},
		{[4]float64{-1, 0, 0, -1}, 180, false},
		{[4]float64{0, -1, 1, 0}, 270, false},
		{[4]float64{-1, 0, 0, 1}, 0, true},
		{[4]float64{0, -1, -1, 0}, 90, true},
		{[4]float64{1, 0, 0, -1}, 180, true},
		{[4]float64{0, 1, 1, 0}, 270, true},
	}
	for _, f := range forms {
		if math.Abs(m[0]-f.lin[0]) <= IdentityEpsilon &&
			math.Abs(m[1]-f.lin[1]) <= IdentityEpsilon &&
			math.Abs(m[2]-f.lin[2]) <= IdentityEpsilon &&
			math.Abs(m[3]-f.lin[3]) <= IdentityEpsilon {
			return f.rot, f.flip, true
		}
	}
	return 0, false, false
}
