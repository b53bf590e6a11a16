// Package render turns engine rasters into the PNG thumbnails served to
// clients. A page's composed edit matrix is replayed against the raster,
// so a thumbnail shows the page as currently transformed even though the
// engine always rasterizes the untransformed original.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/wudi/pagedesk/coords"
	"github.com/wudi/pagedesk/engine"
)

// Page rasterizes p at the given resolution, applies the orientation of
// m to the raster, and encodes the result as PNG.
func Page(p engine.Page, m coords.Matrix, dpi float64) ([]byte, error) {
	img, err := p.Render(dpi)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return EncodePNG(Orient(img, m))
}

// Orient applies the quarter-turn/mirror orientation of m to img. A
// matrix that does not decompose into an orientation leaves the raster
// unchanged; page histories only ever accumulate quarter turns and
// mirrors.
func Orient(img image.Image, m coords.Matrix) image.Image {
	rot, flip, ok := m.Orientation()
	if !ok || (rot == 0 && !flip) {
		return img
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	// Image rows grow downward while page coordinates grow upward, so a
	// counterclockwise page rotation is a clockwise raster rotation.
	// Mirroring across the vertical axis is the same in both spaces.
	pm := coords.Translate(-float64(b.Min.X), -float64(b.Min.Y))
	if flip {
		pm = pm.Multiply(coords.MirrorHorizontal(w))
	}
	pm = pm.Multiply(coords.RotateQuadrant((360-rot)%360, w, h))

	dw, dh := pm.ProjectDimensions(w, h)
	dst := image.NewNRGBA(image.Rect(0, 0, int(dw+0.5), int(dh+0.5)))
	aff := f64.Aff3{pm[0], pm[2], pm[4], pm[1], pm[3], pm[5]}
	xdraw.NearestNeighbor.Transform(dst, aff, img, b, xdraw.Src, nil)
	return dst
}

// EncodePNG serializes img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
