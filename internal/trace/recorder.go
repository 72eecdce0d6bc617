// Package trace records pointer readings from a session and persists them
// as runs: one directory per run holding metadata.json and samples.csv.
package trace

import (
	"math"
	"time"

	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/session"
)

// Sample is one classified pointer reading. Time is seconds since the
// recorder's origin.
type Sample struct {
	Time       float64     `json:"time"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Speed      float64     `json:"speed"`
	Band       motion.Band `json:"band"`
	Gauge      float64     `json:"gauge"`
	Population int         `json:"population"`
}

type HintRecord struct {
	Time   float64        `json:"time"`
	Text   string         `json:"text"`
	Source session.Source `json:"source"`
}

// Recorder is a session.Observer that keeps every reading and hint.
type Recorder struct {
	origin     time.Time
	population int
	frames     uint64

	Samples []Sample
	Hints   []HintRecord
}

func NewRecorder(origin time.Time) *Recorder {
	return &Recorder{origin: origin}
}

func (r *Recorder) since(t time.Time) float64 { return t.Sub(r.origin).Seconds() }

func (r *Recorder) OnReading(rd motion.Reading) {
	r.Samples = append(r.Samples, Sample{
		Time:       r.since(rd.At),
		X:          rd.X,
		Y:          rd.Y,
		Speed:      rd.Speed,
		Band:       rd.Band,
		Gauge:      rd.Gauge,
		Population: r.population,
	})
}

func (r *Recorder) OnHint(h session.Hint) {
	r.Hints = append(r.Hints, HintRecord{Time: r.since(h.At), Text: h.Text, Source: h.Source})
}

func (r *Recorder) OnFrame(f session.FrameInfo) {
	r.population = f.Stats.Population
	r.frames = f.Frame
}

func (r *Recorder) Frames() uint64 { return r.frames }

// Metrics summarizes the recorded samples.
func (r *Recorder) Metrics() map[string]float64 {
	return Summarize(r.Samples, len(r.Hints))
}

// Summarize computes speed statistics and the share of samples per band.
func Summarize(samples []Sample, hints int) map[string]float64 {
	m := map[string]float64{
		"samples": float64(len(samples)),
		"hints":   float64(hints),
	}
	if len(samples) == 0 {
		return m
	}

	var sum, peak float64
	counts := make(map[motion.Band]int)
	for _, s := range samples {
		sum += s.Speed
		peak = math.Max(peak, s.Speed)
		counts[s.Band]++
	}
	n := float64(len(samples))
	m["mean_speed"] = sum / n
	m["max_speed"] = peak
	for _, b := range motion.Bands {
		m["share_"+b.String()] = float64(counts[b]) / n
	}
	if d := samples[len(samples)-1].Time - samples[0].Time; d > 0 {
		m["duration"] = d
	}
	return m
}
