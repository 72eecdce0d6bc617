package field

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Particle is a single light point. Values are copied freely; the field is
// the only writer.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Radius  float64
	Color   color.RGBA
	Opacity float64
	Life    float64
	Decay   float64
}

// Alive reports whether the particle still has life left.
func (p Particle) Alive() bool { return p.Life > 0 }

// Force is the external directional bias applied to every particle.
type Force struct {
	X, Y float64
}

// Rand is the random source used for particle creation.
type Rand interface {
	Float64() float64
}

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) Sample(rng Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Symmetric returns the range [-half, half).
func Symmetric(half float64) Range { return Range{Min: -half, Max: half} }

// Palette is a two-entry weighted palette.
type Palette struct {
	Primary   color.RGBA
	Secondary color.RGBA
	// Weight is the probability of picking Primary.
	Weight float64
}

func (p Palette) Pick(rng Rand) color.RGBA {
	if rng.Float64() < p.Weight {
		return p.Primary
	}
	return p.Secondary
}

// ParseColor parses a "#rrggbb" hex string into an opaque colour.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("field: bad colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// MustColor is ParseColor for compile-time constants.
func MustColor(hex string) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// SpawnRule holds the randomized creation ranges for one kind of particle.
type SpawnRule struct {
	Velocity Range // per component
	Radius   Range
	Opacity  Range
	Decay    Range
	Palette  Palette
}

var (
	Gold    = MustColor("#f9c55a")
	Crimson = MustColor("#b1363c")
)

// AmbientRule is the slow, long-lived creation rule used for the initial
// population and floor replenishment.
func AmbientRule() SpawnRule {
	return SpawnRule{
		Velocity: Symmetric(0.25),
		Radius:   Range{Min: 0.5, Max: 2.5},
		Opacity:  Range{Min: 0.1, Max: 0.6},
		Decay:    Range{Min: 0.001, Max: 0.003},
		Palette:  Palette{Primary: Gold, Secondary: Crimson, Weight: 0.5},
	}
}

// BurstRule is the fast, short-lived creation rule used by bursts.
func BurstRule() SpawnRule {
	return SpawnRule{
		Velocity: Symmetric(2),
		Radius:   Range{Min: 1, Max: 4},
		Opacity:  Range{Min: 0.2, Max: 1.0},
		Decay:    Range{Min: 0.01, Max: 0.03},
		Palette:  Palette{Primary: Gold, Secondary: Crimson, Weight: 0.7},
	}
}

// Spawn creates a particle at (x, y) with life 1.
func (r SpawnRule) Spawn(rng Rand, x, y float64) Particle {
	return Particle{
		X:       x,
		Y:       y,
		VX:      r.Velocity.Sample(rng),
		VY:      r.Velocity.Sample(rng),
		Radius:  math.Max(r.Radius.Sample(rng), minRadius),
		Color:   r.Palette.Pick(rng),
		Opacity: clamp01(r.Opacity.Sample(rng)),
		Life:    1,
		Decay:   math.Max(r.Decay.Sample(rng), minDecay),
	}
}

const (
	minRadius = 0.1
	minDecay  = 1e-6
)

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
