package viz

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/intervalo/internal/raster"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Cell size in raster pixels. Each braille dot covers a 4x4 block.
const (
	CellW = 8
	CellH = 16
	dotW  = CellW / 2
	dotH  = CellH / 4
)

// Canvas is a grid of braille cells, each with one foreground colour.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]color.RGBA
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize reallocates the grid; content is cleared.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.Colors = make([][]color.RGBA, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]color.RGBA, w)
	}
	c.Clear()
}

// Set turns on the dot at sub-pixel (x, y). The canvas is (Width*2) x
// (Height*4) sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// SetColor sets the dot and recolours its cell.
func (c *Canvas) SetColor(x, y int, col color.RGBA) {
	c.Set(x, y)
	if x >= 0 && y >= 0 && x/2 < c.Width && y/4 < c.Height {
		c.Colors[y/4][x/2] = col
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = color.RGBA{}
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col color.RGBA) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColor(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FromRaster clears the canvas and lights every dot whose 4x4 pixel block
// has a pixel brighter than threshold (CIE L*). Each cell takes the colour
// of its brightest block.
func (c *Canvas) FromRaster(im *raster.Image, threshold float64) {
	c.Clear()
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			best := -1.0
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					x0, y0 := col*CellW+dx*dotW, row*CellH+dy*dotH
					px, l := im.Brightest(image.Rect(x0, y0, x0+dotW, y0+dotH))
					if l <= threshold {
						continue
					}
					c.Grid[row][col] |= rune(pixelMap[dy][dx])
					if l > best {
						best = l
						c.Colors[row][col] = px
					}
				}
			}
		}
	}
}

// Lit reports whether any dot of the cell is on.
func (c *Canvas) Lit(col, row int) bool {
	return row >= 0 && row < c.Height && col >= 0 && col < c.Width && c.Grid[row][col] != blank
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render draws the canvas with per-cell colours, batching runs of cells
// that share a colour into one styled span.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := range c.Grid {
		start := 0
		for col := 1; col <= c.Width; col++ {
			if col < c.Width && c.Colors[row][col] == c.Colors[row][start] {
				continue
			}
			span := string(c.Grid[row][start:col])
			if cl := c.Colors[row][start]; cl.A != 0 {
				span = lipgloss.NewStyle().Foreground(lipgloss.Color(hexOf(cl))).Render(span)
			}
			b.WriteString(span)
			start = col
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func hexOf(c color.RGBA) string {
	cf, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	return cf.Hex()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
