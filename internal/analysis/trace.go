package analysis

import (
	"strings"

	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/trace"
)

// Resample linearly interpolates the speed of irregular samples onto a grid
// of rate Hz spanning the first to the last sample.
func Resample(samples []trace.Sample, rate float64) []float64 {
	if len(samples) == 0 || rate <= 0 {
		return nil
	}
	t0 := samples[0].Time
	span := samples[len(samples)-1].Time - t0
	n := int(span*rate) + 1

	out := make([]float64, n)
	j := 0
	for i := range out {
		t := t0 + float64(i)/rate
		for j < len(samples)-2 && samples[j+1].Time < t {
			j++
		}
		a := samples[j]
		if j+1 >= len(samples) {
			out[i] = a.Speed
			continue
		}
		b := samples[j+1]
		if b.Time <= a.Time {
			out[i] = b.Speed
			continue
		}
		f := (t - a.Time) / (b.Time - a.Time)
		f = max(0, min(1, f))
		out[i] = a.Speed + (b.Speed-a.Speed)*f
	}
	return out
}

// BandDwell returns the seconds spent in each band, crediting each sample
// with the time until the next one.
func BandDwell(samples []trace.Sample) map[motion.Band]float64 {
	dwell := make(map[motion.Band]float64, len(motion.Bands))
	for i := 0; i+1 < len(samples); i++ {
		if dt := samples[i+1].Time - samples[i].Time; dt > 0 {
			dwell[samples[i].Band] += dt
		}
	}
	return dwell
}

// Transitions counts band changes between consecutive samples.
func Transitions(samples []trace.Sample) int {
	n := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].Band != samples[i-1].Band {
			n++
		}
	}
	return n
}

var bandGlyph = map[motion.Band]rune{
	motion.Pausa:  '·',
	motion.Lento:  '∙',
	motion.Medio:  '•',
	motion.Rapido: '●',
}

// PathToASCII draws the pointer path over a viewport of vw x vh pixels,
// one glyph per sample sized by its band. Screen y grows downward.
func PathToASCII(samples []trace.Sample, vw, vh float64, width, height int) string {
	if len(samples) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	if vw <= 0 || vh <= 0 {
		for _, s := range samples {
			vw, vh = max(vw, s.X), max(vh, s.Y)
		}
		vw, vh = max(vw, 1), max(vh, 1)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, s := range samples {
		col := int(s.X / vw * float64(width-1))
		row := int(s.Y / vh * float64(height-1))
		if row < 0 || row >= height || col < 0 || col >= width {
			continue
		}
		g := bandGlyph[s.Band]
		if rank(canvas[row][col]) < rank(g) {
			canvas[row][col] = g
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func rank(r rune) int {
	for b, g := range bandGlyph {
		if g == r {
			return int(b) + 1
		}
	}
	return 0
}
