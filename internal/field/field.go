package field

import (
	"image/color"
	"math"
)

// Surface is the raster the field paints on. It is expected to keep its
// pixels between frames so that Overwash leaves motion trails.
type Surface interface {
	Overwash(c color.RGBA, alpha float64)
	Disc(x, y, r float64, c color.RGBA, alpha float64)
	Halo(x, y, r float64, c color.RGBA, alpha float64)
}

type Params struct {
	Damping   float64
	ForceGain float64
	// Margin is how far past the viewport a particle may drift before it is
	// pruned.
	Margin float64
	Floor  int

	TrailColor color.RGBA
	TrailAlpha float64
	HaloScale  float64
	HaloAlpha  float64
	// HaloGain scales HaloAlpha. The session moods drive it.
	HaloGain float64

	Ambient SpawnRule
	Burst   SpawnRule

	// ParallelChunk is the minimum number of particles per kinematics worker.
	ParallelChunk int
}

func DefaultParams() Params {
	return Params{
		Damping:       0.99,
		ForceGain:     0.1,
		Margin:        100,
		Floor:         50,
		TrailColor:    color.RGBA{R: 5, G: 3, B: 8, A: 0xff},
		TrailAlpha:    0.05,
		HaloScale:     2,
		HaloAlpha:     0.3,
		HaloGain:      1,
		Ambient:       AmbientRule(),
		Burst:         BurstRule(),
		ParallelChunk: 2048,
	}
}

// Stats is a cheap summary of the current population.
type Stats struct {
	Population int
	MeanLife   float64
	Kinetic    float64
}

type Field struct {
	params    Params
	rng       Rand
	particles []Particle

	width, height float64
	force         Force
	surface       Surface

	seeded  bool
	dropped int
	ticks   uint64
}

func New(p Params, rng Rand) *Field {
	if p.Floor < 0 {
		p.Floor = 0
	}
	return &Field{
		params:    p,
		rng:       rng,
		particles: make([]Particle, 0, max(p.Floor*2, 64)),
	}
}

// Initialize sets the viewport and, on the first call only, seeds target
// ambient particles. Later calls behave like Resize.
func (f *Field) Initialize(width, height float64, target int) {
	f.Resize(width, height)
	if f.seeded {
		return
	}
	f.seeded = true
	for i := 0; i < target; i++ {
		f.particles = append(f.particles, f.spawnAmbient())
	}
}

// Resize changes the pruning bounds. Existing particles are not moved.
func (f *Field) Resize(width, height float64) {
	f.width = sanitizeDim(width)
	f.height = sanitizeDim(height)
}

func (f *Field) Bounds() (width, height float64) { return f.width, f.height }

// SetForce replaces the force vector used by the next step.
func (f *Field) SetForce(fx, fy float64) {
	if !finite(fx) {
		fx = 0
		f.dropped++
	}
	if !finite(fy) {
		fy = 0
		f.dropped++
	}
	f.force = Force{X: fx, Y: fy}
}

func (f *Field) Force() Force { return f.force }

// SetHaloGain scales halo opacity from the next render. Values outside
// [0, 1] are clamped; NaN is ignored.
func (f *Field) SetHaloGain(g float64) {
	if math.IsNaN(g) {
		f.dropped++
		return
	}
	f.params.HaloGain = math.Max(0, math.Min(g, 1))
}

// Burst appends n burst particles at (x, y).
func (f *Field) Burst(x, y float64, n int) {
	if n <= 0 {
		return
	}
	if !finite(x, y) {
		f.dropped++
		return
	}
	for i := 0; i < n; i++ {
		f.particles = append(f.particles, f.params.Burst.Spawn(f.rng, x, y))
	}
}

// Attach sets the surface painted by Step. A nil surface detaches.
func (f *Field) Attach(s Surface) { f.surface = s }

func (f *Field) Detach() { f.surface = nil }

func (f *Field) Attached() bool { return f.surface != nil }

// Step advances the simulation by one nominal tick.
func (f *Field) Step() { f.StepScaled(1) }

// StepScaled advances the simulation by scale nominal ticks. Hosts that
// measure frame time pass elapsed/nominal; everything else calls Step.
func (f *Field) StepScaled(scale float64) {
	if !finite(scale) || scale <= 0 {
		scale = 1
	}
	scale = math.Min(scale, maxScale)

	f.integrate(scale)
	f.prune()
	f.replenish()
	f.ticks++

	if f.surface != nil {
		f.render()
	}
}

const maxScale = 4

func (f *Field) integrate(scale float64) {
	damp := f.params.Damping
	if scale != 1 {
		damp = math.Pow(damp, scale)
	}
	gx := f.force.X * f.params.ForceGain * scale
	gy := f.force.Y * f.params.ForceGain * scale

	ps := f.particles
	ParallelFor(len(ps), f.params.ParallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			p.VX = p.VX*damp + gx
			p.VY = p.VY*damp + gy
			p.X += p.VX * scale
			p.Y += p.VY * scale
			p.Life -= p.Decay * scale
		}
	})
}

// prune compacts the pool in place, keeping survivors in order.
func (f *Field) prune() {
	m := f.params.Margin
	minX, maxX := -m, f.width+m
	minY, maxY := -m, f.height+m

	kept := f.particles[:0]
	for _, p := range f.particles {
		if p.Life <= 0 || !finite(p.X, p.Y) ||
			p.X < minX || p.X > maxX || p.Y < minY || p.Y > maxY {
			continue
		}
		kept = append(kept, p)
	}
	clear(f.particles[len(kept):])
	f.particles = kept
}

func (f *Field) replenish() {
	for len(f.particles) < f.params.Floor {
		f.particles = append(f.particles, f.spawnAmbient())
	}
}

func (f *Field) render() {
	s := f.surface
	s.Overwash(f.params.TrailColor, f.params.TrailAlpha)
	for _, p := range f.particles {
		s.Disc(p.X, p.Y, p.Radius, p.Color, p.Opacity*p.Life)
		s.Halo(p.X, p.Y, p.Radius*f.params.HaloScale, p.Color, f.params.HaloAlpha*f.params.HaloGain*p.Life)
	}
}

func (f *Field) spawnAmbient() Particle {
	x := f.rng.Float64() * f.width
	y := f.rng.Float64() * f.height
	return f.params.Ambient.Spawn(f.rng, x, y)
}

func (f *Field) Len() int { return len(f.particles) }

// Particles returns a copy of the current pool.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Ticks is the number of completed steps.
func (f *Field) Ticks() uint64 { return f.ticks }

// Dropped counts rejected non-finite inputs.
func (f *Field) Dropped() int { return f.dropped }

func (f *Field) Params() Params { return f.params }

func (f *Field) Stats() Stats {
	st := Stats{Population: len(f.particles)}
	if st.Population == 0 {
		return st
	}
	life := 0.0
	for _, p := range f.particles {
		life += p.Life
		st.Kinetic += 0.5 * (p.VX*p.VX + p.VY*p.VY)
	}
	st.MeanLife = life / float64(st.Population)
	return st
}

func sanitizeDim(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}
