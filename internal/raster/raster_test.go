package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

var (
	black = color.RGBA{0, 0, 0, 255}
	gold  = color.RGBA{0xf9, 0xc5, 0x5a, 255}
)

func TestDiscPaintsCentre(t *testing.T) {
	im := New(20, 20, black)
	im.Disc(10, 10, 3, gold, 1)

	if got := im.At(10, 10); got != gold {
		t.Errorf("centre = %v, want %v", got, gold)
	}
	if got := im.At(0, 0); got != black {
		t.Errorf("corner = %v, want untouched", got)
	}
}

func TestHaloFadesOutward(t *testing.T) {
	im := New(40, 40, black)
	im.Halo(20, 20, 10, gold, 1)

	inner := im.Lightness(20, 20)
	mid := im.Lightness(25, 20)
	outer := im.Lightness(31, 20)
	if !(inner > mid && mid > outer) {
		t.Errorf("halo not fading: inner=%v mid=%v outer=%v", inner, mid, outer)
	}
	if got := im.At(20, 31); got != black {
		t.Errorf("outside radius = %v, want untouched", got)
	}
}

func TestOverwashLeavesTrails(t *testing.T) {
	im := New(4, 4, black)
	im.Disc(2, 2, 2, gold, 1)
	before := im.Lightness(2, 2)

	im.Overwash(black, 0.05)
	after := im.Lightness(2, 2)
	if after >= before {
		t.Errorf("overwash did not darken: %v -> %v", before, after)
	}
	if after < before*0.8 {
		t.Errorf("overwash removed the trail: %v -> %v", before, after)
	}

	for i := 0; i < 400; i++ {
		im.Overwash(black, 0.05)
	}
	if l := im.Lightness(2, 2); l > 0.05 {
		t.Errorf("trail never faded: %v", l)
	}
}

func TestOutOfBoundsDrawIsIgnored(t *testing.T) {
	im := New(10, 10, black)
	im.Disc(-50, -50, 3, gold, 1)
	im.Halo(500, 5, 4, gold, 1)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if im.At(x, y) != black {
				t.Fatalf("pixel %d,%d touched", x, y)
			}
		}
	}
}

func TestResizeKeepsOverlap(t *testing.T) {
	im := New(10, 10, black)
	im.Disc(2, 2, 1, gold, 1)
	im.Resize(5, 5)
	im.Resize(20, 20)

	if im.Width() != 20 || im.Height() != 20 {
		t.Fatalf("size = %dx%d", im.Width(), im.Height())
	}
	if im.At(2, 2) == black {
		t.Error("overlapping pixels lost")
	}
	if im.At(15, 15) != black {
		t.Error("new area not filled with the background")
	}
}

func TestBrightest(t *testing.T) {
	im := New(8, 8, black)
	im.Disc(6.5, 6.5, 0.6, gold, 1)

	c, l := im.Brightest(image.Rect(4, 4, 8, 8))
	if c != gold || l <= 0.5 {
		t.Errorf("Brightest = %v (%v)", c, l)
	}
	_, l = im.Brightest(image.Rect(0, 0, 3, 3))
	if l > 0.01 {
		t.Errorf("empty block lightness = %v", l)
	}
}

func TestCopyColorsAndPNG(t *testing.T) {
	im := New(3, 2, black)
	im.Disc(0.5, 0.5, 0.6, gold, 1)

	cs := im.CopyColors(nil)
	if len(cs) != 6 || cs[0] != gold {
		t.Fatalf("CopyColors = %v", cs)
	}

	var buf bytes.Buffer
	if err := im.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 3 || decoded.Bounds().Dy() != 2 {
		t.Errorf("decoded bounds = %v", decoded.Bounds())
	}
}
