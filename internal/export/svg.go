package export

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/trace"
	"github.com/san-kum/intervalo/internal/viz"
)

func hex(c color.RGBA) string {
	cf, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	return cf.Hex()
}

func header(sb *strings.Builder, width, height float64, bg string) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, bg)
}

// FieldToSVG draws the particles as cores over radial-gradient halos. The
// halo radius is the core radius times haloScale; zero disables halos.
func FieldToSVG(particles []field.Particle, width, height int, bg color.RGBA, haloScale float64) string {
	var sb strings.Builder
	header(&sb, float64(width), float64(height), hex(bg))

	if haloScale > 0 {
		seen := map[string]bool{}
		for _, p := range particles {
			seen[hex(p.Color)] = true
		}
		ids := make([]string, 0, len(seen))
		for h := range seen {
			ids = append(ids, h)
		}
		sort.Strings(ids)

		sb.WriteString("<defs>\n")
		for _, h := range ids {
			fmt.Fprintf(&sb, `<radialGradient id="h%s"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s" stop-opacity="0"/></radialGradient>
`, h[1:], h, h)
		}
		sb.WriteString("</defs>\n")
	}

	for _, p := range particles {
		if !p.Alive() {
			continue
		}
		h := hex(p.Color)
		if haloScale > 0 {
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="url(#h%s)" opacity="%.3f"/>
`, p.X, p.Y, p.Radius*haloScale, h[1:], 0.3*p.Life)
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.3f"/>
`, p.X, p.Y, p.Radius, h, p.Opacity*p.Life)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// PointerPathToSVG draws a recorded pointer path, one polyline per run of
// samples in the same band, coloured by the current theme. Sample
// coordinates are viewport pixels scaled from vw x vh to width x height.
func PointerPathToSVG(samples []trace.Sample, vw, vh float64, width, height int) string {
	if len(samples) < 2 || !(vw > 0) || !(vh > 0) {
		return ""
	}
	sx, sy := float64(width)/vw, float64(height)/vh

	var sb strings.Builder
	header(&sb, float64(width), float64(height), string(viz.CurrentTheme.Background))
	sb.WriteString(`<g fill="none" stroke-width="1.5" stroke-linecap="round">` + "\n")

	start := 0
	for i := 1; i <= len(samples); i++ {
		if i < len(samples) && samples[i].Band == samples[start].Band {
			continue
		}
		// each run starts at the last point of the previous one
		from := max(start-1, 0)
		if i-from >= 2 {
			writePolyline(&sb, samples[from:i], sx, sy, samples[start].Band)
		}
		start = i
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writePolyline(sb *strings.Builder, run []trace.Sample, sx, sy float64, b motion.Band) {
	fmt.Fprintf(sb, `<polyline stroke="%s" points="`, viz.CurrentTheme.BandColor(b))
	for i, s := range run {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(sb, "%.1f,%.1f", s.X*sx, s.Y*sy)
	}
	sb.WriteString(`"/>` + "\n")
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot in
// its cell's colour.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	header(&sb, width, height, string(viz.CurrentTheme.Background))

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := string(viz.CurrentTheme.Text)
			if c := canvas.Colors[row][col]; c.A != 0 {
				fill = hex(c)
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill)
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
