package field_test

import (
	"image/color"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/intervalo/internal/field"
)

type drawCall struct {
	kind  string
	x, y  float64
	r     float64
	alpha float64
}

type recordingSurface struct {
	washes int
	calls  []drawCall
}

func (s *recordingSurface) Overwash(c color.RGBA, alpha float64) { s.washes++ }

func (s *recordingSurface) Disc(x, y, r float64, c color.RGBA, alpha float64) {
	s.calls = append(s.calls, drawCall{"disc", x, y, r, alpha})
}

func (s *recordingSurface) Halo(x, y, r float64, c color.RGBA, alpha float64) {
	s.calls = append(s.calls, drawCall{"halo", x, y, r, alpha})
}

func newField(seed int64) *field.Field {
	return field.New(field.DefaultParams(), rand.New(rand.NewSource(seed)))
}

var _ = Describe("Field", func() {
	var f *field.Field

	BeforeEach(func() {
		f = newField(7)
		f.Initialize(800, 600, 100)
	})

	Describe("Initialize", func() {
		It("seeds the target population inside the viewport", func() {
			Expect(f.Len()).To(Equal(100))
			for _, p := range f.Particles() {
				Expect(p.X).To(BeNumerically(">=", 0))
				Expect(p.X).To(BeNumerically("<", 800))
				Expect(p.Y).To(BeNumerically(">=", 0))
				Expect(p.Y).To(BeNumerically("<", 600))
				Expect(p.Life).To(Equal(1.0))
			}
		})

		It("does not reseed on a second call", func() {
			f.Initialize(1024, 768, 100)
			Expect(f.Len()).To(Equal(100))
			w, h := f.Bounds()
			Expect(w).To(Equal(1024.0))
			Expect(h).To(Equal(768.0))
		})
	})

	Describe("Step", func() {
		It("never leaves a particle with life <= 0 behind", func() {
			f.Burst(400, 300, 200)
			for i := 0; i < 300; i++ {
				f.Step()
				for _, p := range f.Particles() {
					Expect(p.Life).To(BeNumerically(">", 0))
					Expect(p.Life).To(BeNumerically("<=", 1))
				}
			}
		})

		It("keeps the population at the floor when everything expires at once", func() {
			p := field.DefaultParams()
			p.Ambient.Decay = field.Range{Min: 2, Max: 2}
			g := field.New(p, rand.New(rand.NewSource(1)))
			g.Initialize(800, 600, 120)

			g.Step()
			Expect(g.Len()).To(Equal(p.Floor))
		})

		It("prunes particles more than the margin outside the viewport", func() {
			g := newField(3)
			g.Initialize(100, 100, 0)
			g.Burst(199.5, 50, 1)
			g.Burst(50, -99.9, 1)
			g.Burst(250, 50, 1)
			g.SetForce(1, 0)
			g.Step()

			for _, p := range g.Particles() {
				Expect(p.X).To(BeNumerically("<=", 200))
				Expect(p.X).To(BeNumerically(">=", -100))
			}
		})

		It("applies v' = v*damping + force*gain", func() {
			p := field.DefaultParams()
			p.Floor = 0
			p.Burst.Velocity = field.Range{Min: 1, Max: 1}
			p.Burst.Decay = field.Range{Min: 0.01, Max: 0.01}
			g := field.New(p, rand.New(rand.NewSource(1)))
			g.Initialize(800, 600, 0)
			g.Burst(100, 100, 1)
			g.SetForce(0.5, -0.5)
			g.Step()

			got := g.Particles()[0]
			Expect(got.VX).To(BeNumerically("~", 0.99+0.05, 1e-12))
			Expect(got.VY).To(BeNumerically("~", 0.99-0.05, 1e-12))
			Expect(got.X).To(BeNumerically("~", 100+got.VX, 1e-12))
			Expect(got.Y).To(BeNumerically("~", 100+got.VY, 1e-12))
			Expect(got.Life).To(BeNumerically("~", 0.99, 1e-12))
		})

		It("advances kinematics without a surface", func() {
			Expect(f.Attached()).To(BeFalse())
			before := f.Particles()
			f.Step()
			Expect(f.Ticks()).To(Equal(uint64(1)))
			Expect(f.Particles()[0].Life).To(BeNumerically("<", before[0].Life))
		})

		It("overwashes once and draws a disc and halo per particle", func() {
			s := &recordingSurface{}
			f.Attach(s)
			f.Step()
			Expect(s.washes).To(Equal(1))
			Expect(s.calls).To(HaveLen(2 * f.Len()))

			ps := f.Particles()
			disc, halo := s.calls[0], s.calls[1]
			Expect(disc.kind).To(Equal("disc"))
			Expect(disc.alpha).To(BeNumerically("~", ps[0].Opacity*ps[0].Life, 1e-12))
			Expect(halo.kind).To(Equal("halo"))
			Expect(halo.r).To(BeNumerically("~", 2*ps[0].Radius, 1e-12))
			Expect(halo.alpha).To(BeNumerically("~", 0.3*ps[0].Life, 1e-12))
		})

		It("scales halo alpha by the halo gain", func() {
			s := &recordingSurface{}
			f.Attach(s)
			f.SetHaloGain(0.5)
			f.Step()

			ps := f.Particles()
			Expect(s.calls[1].alpha).To(BeNumerically("~", 0.3*0.5*ps[0].Life, 1e-12))
			Expect(s.calls[0].alpha).To(BeNumerically("~", ps[0].Opacity*ps[0].Life, 1e-12))

			f.SetHaloGain(3)
			Expect(f.Params().HaloGain).To(Equal(1.0))
			f.SetHaloGain(math.NaN())
			Expect(f.Params().HaloGain).To(Equal(1.0))
		})

		It("gives the same result on the parallel path", func() {
			serial := field.DefaultParams()
			parallel := serial
			parallel.ParallelChunk = 8

			a := field.New(serial, rand.New(rand.NewSource(11)))
			b := field.New(parallel, rand.New(rand.NewSource(11)))
			a.Initialize(800, 600, 500)
			b.Initialize(800, 600, 500)
			a.SetForce(0.2, 0.1)
			b.SetForce(0.2, 0.1)
			for i := 0; i < 20; i++ {
				a.Step()
				b.Step()
			}
			Expect(b.Particles()).To(Equal(a.Particles()))
		})
	})

	Describe("Burst", func() {
		It("adds exactly n particles before the next step", func() {
			before := f.Len()
			f.Burst(10, 20, 15)
			Expect(f.Len()).To(Equal(before + 15))
			f.Burst(10, 20, 30)
			Expect(f.Len()).To(Equal(before + 45))
		})

		It("spawns at the origin with burst ranges", func() {
			g := newField(5)
			g.Initialize(800, 600, 0)
			g.Burst(42, 24, 50)
			for _, p := range g.Particles() {
				Expect(p.X).To(Equal(42.0))
				Expect(p.Y).To(Equal(24.0))
				Expect(math.Abs(p.VX)).To(BeNumerically("<=", 2))
				Expect(p.Decay).To(BeNumerically(">=", 0.01))
			}
		})

		It("tolerates bad input", func() {
			before := f.Len()
			f.Burst(math.NaN(), 0, 10)
			f.Burst(0, 0, -3)
			Expect(f.Len()).To(Equal(before))
			Expect(f.Dropped()).To(Equal(1))
		})
	})

	Describe("Resize", func() {
		It("does not move particles when shrinking and growing", func() {
			before := f.Particles()
			f.Resize(10, 10)
			f.Resize(800, 600)
			Expect(f.Particles()).To(Equal(before))
		})

		It("uses the new bounds on the next prune", func() {
			g := newField(9)
			g.Initialize(1000, 1000, 0)
			g.Burst(900, 900, 5)
			g.Resize(100, 100)
			g.Step()
			for _, p := range g.Particles() {
				Expect(p.X).To(BeNumerically("<=", 200))
			}
		})

		It("clamps nonsense dimensions to zero", func() {
			f.Resize(math.Inf(1), -5)
			w, h := f.Bounds()
			Expect(w).To(BeZero())
			Expect(h).To(BeZero())
		})
	})

	Describe("SetForce", func() {
		It("is idempotent", func() {
			a := newField(21)
			b := newField(21)
			a.Initialize(800, 600, 80)
			b.Initialize(800, 600, 80)

			a.SetForce(0, 0)
			for i := 0; i < 5; i++ {
				b.SetForce(0, 0)
			}
			a.Step()
			b.Step()
			Expect(b.Particles()).To(Equal(a.Particles()))
			Expect(b.Force()).To(Equal(a.Force()))
		})

		It("replaces non-finite components with zero", func() {
			f.SetForce(math.NaN(), 0.5)
			Expect(f.Force()).To(Equal(field.Force{X: 0, Y: 0.5}))
		})
	})

	Describe("StepScaled", func() {
		It("matches Step at scale 1", func() {
			a := newField(4)
			b := newField(4)
			a.Initialize(800, 600, 60)
			b.Initialize(800, 600, 60)
			a.Step()
			b.StepScaled(1)
			Expect(b.Particles()).To(Equal(a.Particles()))
		})

		It("falls back to one tick for invalid scales", func() {
			a := newField(4)
			b := newField(4)
			a.Initialize(800, 600, 60)
			b.Initialize(800, 600, 60)
			a.Step()
			b.StepScaled(math.NaN())
			Expect(b.Particles()).To(Equal(a.Particles()))
		})
	})
})
