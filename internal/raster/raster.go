// Package raster provides the persistent-trail RGBA surface the particle
// field paints on.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Image is an opaque RGBA surface. Pixels survive between frames; only
// Overwash darkens them, which is what leaves the trails.
type Image struct {
	img *image.RGBA
	bg  color.RGBA
}

func New(width, height int, bg color.RGBA) *Image {
	bg.A = 0xff
	im := &Image{img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))), bg: bg}
	im.Fill(bg)
	return im
}

func (im *Image) Width() int  { return im.img.Rect.Dx() }
func (im *Image) Height() int { return im.img.Rect.Dy() }

// RGBA exposes the backing image.
func (im *Image) RGBA() *image.RGBA { return im.img }

func (im *Image) Fill(c color.RGBA) {
	draw.Draw(im.img, im.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Resize reallocates the surface, keeping the overlapping region.
func (im *Image) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == im.Width() && height == im.Height() {
		return
	}
	next := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(next, next.Rect, image.NewUniform(im.bg), image.Point{}, draw.Src)
	draw.Draw(next, im.img.Rect.Intersect(next.Rect), im.img, image.Point{}, draw.Src)
	im.img = next
}

// Overwash blends c over every pixel with the given alpha.
func (im *Image) Overwash(c color.RGBA, alpha float64) {
	a := clampAlpha(alpha)
	if a == 0 {
		return
	}
	ia := 1 - a
	cr, cg, cb := float64(c.R)*a, float64(c.G)*a, float64(c.B)*a
	// truncation, not rounding: rounding pins faint trails above c forever
	pix := im.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = uint8(float64(pix[i])*ia + cr)
		pix[i+1] = uint8(float64(pix[i+1])*ia + cg)
		pix[i+2] = uint8(float64(pix[i+2])*ia + cb)
		pix[i+3] = 0xff
	}
}

// Disc fills an anti-aliased circle.
func (im *Image) Disc(x, y, r float64, c color.RGBA, alpha float64) {
	a := clampAlpha(alpha)
	if a == 0 || !(r > 0) {
		return
	}
	im.each(x, y, r+1, func(px, py int, d float64) {
		cov := r + 0.5 - d
		if cov <= 0 {
			return
		}
		im.blend(px, py, c, a*math.Min(cov, 1))
	})
}

// Halo fills a radial gradient from alpha at the centre to transparent at r.
func (im *Image) Halo(x, y, r float64, c color.RGBA, alpha float64) {
	a := clampAlpha(alpha)
	if a == 0 || !(r > 0) {
		return
	}
	im.each(x, y, r, func(px, py int, d float64) {
		if d >= r {
			return
		}
		im.blend(px, py, c, a*(1-d/r))
	})
}

// each visits every pixel whose centre lies in the box around (x, y) with
// half-size r, passing the distance from the pixel centre to (x, y).
func (im *Image) each(x, y, r float64, fn func(px, py int, d float64)) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(r, 0) {
		return
	}
	b := im.img.Rect
	x0 := max(int(math.Floor(x-r)), b.Min.X)
	x1 := min(int(math.Ceil(x+r)), b.Max.X-1)
	y0 := max(int(math.Floor(y-r)), b.Min.Y)
	y1 := min(int(math.Ceil(y+r)), b.Max.Y-1)
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			fn(px, py, math.Hypot(float64(px)+0.5-x, float64(py)+0.5-y))
		}
	}
}

func (im *Image) blend(px, py int, c color.RGBA, a float64) {
	i := im.img.PixOffset(px, py)
	pix := im.img.Pix
	ia := 1 - a
	pix[i] = uint8(float64(pix[i])*ia + float64(c.R)*a + 0.5)
	pix[i+1] = uint8(float64(pix[i+1])*ia + float64(c.G)*a + 0.5)
	pix[i+2] = uint8(float64(pix[i+2])*ia + float64(c.B)*a + 0.5)
	pix[i+3] = 0xff
}

func (im *Image) At(x, y int) color.RGBA { return im.img.RGBAAt(x, y) }

// Lightness returns the perceptual lightness (CIE L*, 0-1) of a pixel.
func (im *Image) Lightness(x, y int) float64 {
	if !(image.Point{X: x, Y: y}.In(im.img.Rect)) {
		return 0
	}
	c, _ := colorful.MakeColor(im.img.RGBAAt(x, y))
	l, _, _ := c.Lab()
	return l
}

// Brightest returns the brightest pixel in r and its lightness.
func (im *Image) Brightest(r image.Rectangle) (color.RGBA, float64) {
	r = r.Intersect(im.img.Rect)
	var best color.RGBA
	bestSum := -1
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := im.img.RGBAAt(x, y)
			if s := int(c.R) + int(c.G) + int(c.B); s > bestSum {
				best, bestSum = c, s
			}
		}
	}
	if bestSum < 0 {
		return best, 0
	}
	cf, _ := colorful.MakeColor(best)
	l, _, _ := cf.Lab()
	return best, l
}

// CopyColors copies the pixels into dst (grown if needed) as a flat
// row-major slice, the layout texture uploads expect.
func (im *Image) CopyColors(dst []color.RGBA) []color.RGBA {
	n := im.Width() * im.Height()
	if cap(dst) < n {
		dst = make([]color.RGBA, n)
	}
	dst = dst[:n]
	pix := im.img.Pix
	for i := range dst {
		j := i * 4
		dst[i] = color.RGBA{R: pix[j], G: pix[j+1], B: pix[j+2], A: pix[j+3]}
	}
	return dst
}

func (im *Image) WritePNG(w io.Writer) error {
	return png.Encode(w, im.img)
}

func clampAlpha(a float64) float64 {
	switch {
	case !(a > 0):
		return 0
	case a > 1:
		return 1
	}
	return a
}
