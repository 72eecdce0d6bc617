package export

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/raster"
	"github.com/san-kum/intervalo/internal/trace"
	"github.com/san-kum/intervalo/internal/viz"
)

func TestFieldToSVG(t *testing.T) {
	ps := []field.Particle{
		{X: 10, Y: 20, Radius: 2, Color: field.Gold, Opacity: 0.8, Life: 1},
		{X: 30, Y: 40, Radius: 3, Color: field.Crimson, Opacity: 0.5, Life: 0.5},
		{X: 50, Y: 50, Radius: 3, Color: field.Gold, Opacity: 0.5, Life: 0},
	}
	svg := FieldToSVG(ps, 100, 80, color.RGBA{R: 5, G: 3, B: 8, A: 0xff}, 4)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete SVG document")
	}
	if n := strings.Count(svg, "<radialGradient"); n != 2 {
		t.Errorf("gradients = %d, want one per colour", n)
	}
	if n := strings.Count(svg, "<circle"); n != 4 {
		t.Errorf("circles = %d, want a core and a halo per live particle", n)
	}
	if !strings.Contains(svg, `fill="#050308"`) {
		t.Error("background colour missing")
	}

	bare := FieldToSVG(ps, 100, 80, color.RGBA{}, 0)
	if strings.Contains(bare, "radialGradient") || strings.Count(bare, "<circle") != 2 {
		t.Error("zero halo scale should draw cores only")
	}
}

func TestPointerPathToSVG(t *testing.T) {
	samples := []trace.Sample{
		{X: 0, Y: 0, Band: motion.Lento},
		{X: 100, Y: 50, Band: motion.Lento},
		{X: 200, Y: 100, Band: motion.Rapido},
		{X: 300, Y: 150, Band: motion.Rapido},
	}
	svg := PointerPathToSVG(samples, 400, 200, 200, 100)

	if n := strings.Count(svg, "<polyline"); n != 2 {
		t.Fatalf("polylines = %d, want one per band run", n)
	}
	if !strings.Contains(svg, "150.0,75.0") {
		t.Error("last point should be scaled by half")
	}
	if !strings.Contains(svg, string(viz.CurrentTheme.BandColor(motion.Rapido))) {
		t.Error("rapid run should use the band colour")
	}

	if PointerPathToSVG(samples[:1], 400, 200, 200, 100) != "" {
		t.Error("single sample should produce nothing")
	}
	if PointerPathToSVG(samples, 0, 200, 200, 100) != "" {
		t.Error("empty viewport should produce nothing")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should produce nothing")
	}

	c := viz.NewCanvas(2, 1)
	c.SetColor(0, 0, color.RGBA{R: 0xff, A: 0xff})
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)

	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("circles = %d, want 2", n)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) {
		t.Error("coloured cell should keep its colour")
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Error("canvas size should scale by sub-pixels")
	}
}

func TestWritePNG(t *testing.T) {
	im := raster.New(4, 3, color.RGBA{R: 0x10, A: 0xff})
	path := filepath.Join(t.TempDir(), "field.png")
	if err := WritePNG(path, im); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("bounds = %v", b)
	}

	if err := WritePNG(filepath.Join(t.TempDir(), "missing", "x.png"), im); err == nil {
		t.Error("expected error for a missing directory")
	}
}
