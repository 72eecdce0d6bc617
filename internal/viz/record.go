package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/san-kum/intervalo/internal/raster"
)

// palette332 is a fixed 3-3-2 RGB palette so frames can be indexed without
// a nearest-colour search.
var palette332 = func() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		r := uint8((i >> 5) * 255 / 7)
		g := uint8((i >> 2 & 7) * 255 / 7)
		b := uint8((i & 3) * 255 / 3)
		p[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return p
}()

// Recorder collects downscaled raster frames for an animated GIF.
type Recorder struct {
	every  int
	scale  int
	ticks  int
	frames []*image.Paletted
}

// NewRecorder keeps one frame out of every and shrinks each by scale.
func NewRecorder(every, scale int) *Recorder {
	return &Recorder{every: max(every, 1), scale: max(scale, 1)}
}

func (r *Recorder) Capture(im *raster.Image) {
	r.ticks++
	if (r.ticks-1)%r.every != 0 {
		return
	}
	src := im.RGBA()
	w, h := im.Width()/r.scale, im.Height()/r.scale
	if w == 0 || h == 0 {
		return
	}
	dst := image.NewPaletted(image.Rect(0, 0, w, h), palette332)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(x*r.scale, y*r.scale)
			dst.SetColorIndex(x, y, c.R>>5<<5|c.G>>5<<2|c.B>>6)
		}
	}
	r.frames = append(r.frames, dst)
}

func (r *Recorder) Len() int { return len(r.frames) }

// Encode writes the frames as a looping GIF; delay is in 1/100 s.
func (r *Recorder) Encode(w io.Writer, delay int) error {
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}
