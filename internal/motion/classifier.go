package motion

import (
	"math"
	"time"
)

// Rand is the random source for hint selection.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Pools maps a band to its narrative lines.
type Pools interface {
	Pool(b Band) []string
}

// PoolMap is the simplest Pools implementation.
type PoolMap map[Band][]string

func (m PoolMap) Pool(b Band) []string { return m[b] }

// Thresholds are the band boundaries, T1 < T2 < T3.
type Thresholds struct {
	T1 float64 `yaml:"t1"`
	T2 float64 `yaml:"t2"`
	T3 float64 `yaml:"t3"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{T1: 0.01, T2: 0.05, T3: 0.15}
}

func (t Thresholds) Ordered() bool { return t.T1 < t.T2 && t.T2 < t.T3 }

type Params struct {
	Thresholds Thresholds
	// Scale divides raw px/s into the normalized speed unit.
	Scale    float64
	MaxSpeed float64
	// HintChance is the per-reading probability of surfacing a hint.
	HintChance float64
	// GaugeGain maps speed to the 0-100 meter.
	GaugeGain float64
	// SuppressRepeats avoids emitting the same line twice in a row.
	SuppressRepeats bool
}

func DefaultParams() Params {
	return Params{
		Thresholds: DefaultThresholds(),
		Scale:      1000,
		MaxSpeed:   10,
		HintChance: 0.02,
		GaugeGain:  500,
	}
}

// Sample is a pointer position at a point in time.
type Sample struct {
	X, Y float64
	At   time.Time
}

// Reading is the classifier output for one accepted sample.
type Reading struct {
	X, Y  float64
	At    time.Time
	Speed float64
	Band  Band
	Gauge float64
}

type Classifier struct {
	params Params
	rng    Rand
	pools  Pools

	last     *Sample
	speed    float64
	band     Band
	dropped  int
	lastHint string
}

func New(p Params, rng Rand, pools Pools) *Classifier {
	if p.Scale <= 0 {
		p.Scale = DefaultParams().Scale
	}
	if pools == nil {
		pools = PoolMap{}
	}
	return &Classifier{params: p, rng: rng, pools: pools}
}

// Sample feeds a pointer sample. It returns a reading only when a previous
// sample exists and time moved forward; non-finite samples are dropped.
func (c *Classifier) Sample(x, y float64, at time.Time) (Reading, bool) {
	if !finite(x) || !finite(y) || at.IsZero() {
		c.dropped++
		return Reading{}, false
	}

	cur := Sample{X: x, Y: y, At: at}
	prev := c.last
	c.last = &cur
	if prev == nil {
		return Reading{}, false
	}

	elapsed := at.Sub(prev.At).Seconds()
	if elapsed <= 0 {
		return Reading{}, false
	}

	dist := math.Hypot(x-prev.X, y-prev.Y)
	speed := dist / elapsed / c.params.Scale
	if c.params.MaxSpeed > 0 && speed > c.params.MaxSpeed {
		speed = c.params.MaxSpeed
	}

	c.speed = speed
	c.band = c.Classify(speed)
	return Reading{
		X:     x,
		Y:     y,
		At:    at,
		Speed: speed,
		Band:  c.band,
		Gauge: c.Gauge(speed),
	}, true
}

func (c *Classifier) Classify(speed float64) Band {
	return Classify(speed, c.params.Thresholds)
}

// Classify maps a speed to its band. NaN and negative speeds are pausa.
func Classify(speed float64, t Thresholds) Band {
	switch {
	case !(speed >= t.T1):
		return Pausa
	case speed < t.T2:
		return Lento
	case speed <= t.T3:
		return Medio
	default:
		return Rapido
	}
}

// Gauge maps a speed to the 0-100 meter value.
func (c *Classifier) Gauge(speed float64) float64 {
	if !(speed > 0) {
		return 0
	}
	return math.Min(speed*c.params.GaugeGain, 100)
}

// Tick runs the hint trial for band with the configured chance.
func (c *Classifier) Tick(b Band) (string, bool) {
	return c.TickWith(b, c.params.HintChance)
}

// TickWith runs one Bernoulli trial with the given chance and, on success,
// picks a random line from the band's pool.
func (c *Classifier) TickWith(b Band, chance float64) (string, bool) {
	if c.rng == nil || c.rng.Float64() >= chance {
		return "", false
	}
	pool := c.pools.Pool(b)
	if len(pool) == 0 {
		return "", false
	}

	line := pool[c.rng.Intn(len(pool))]
	if c.params.SuppressRepeats && len(pool) > 1 && line == c.lastHint {
		line = pool[(indexOf(pool, line)+1+c.rng.Intn(len(pool)-1))%len(pool)]
	}
	c.lastHint = line
	return line, true
}

func (c *Classifier) Speed() float64 { return c.speed }

func (c *Classifier) Band() Band { return c.band }

// Last returns the stored reference sample, if any.
func (c *Classifier) Last() (Sample, bool) {
	if c.last == nil {
		return Sample{}, false
	}
	return *c.last, true
}

func (c *Classifier) Dropped() int { return c.dropped }

func (c *Classifier) Params() Params { return c.params }

// Reset forgets the reference sample so the next one starts fresh.
func (c *Classifier) Reset() {
	c.last = nil
	c.speed = 0
	c.band = Pausa
}

func indexOf(pool []string, s string) int {
	for i, v := range pool {
		if v == s {
			return i
		}
	}
	return 0
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
