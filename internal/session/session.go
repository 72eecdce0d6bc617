// Package session wires the particle field and the motion classifier to the
// narrative pools. It is the single-threaded state a host drives: pointer
// samples, discrete actions and one Frame call per display refresh.
package session

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/intervalo/internal/config"
	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/narrative"
)

// Rand feeds both the field and the classifier.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type Source string

const (
	SourceWelcome Source = "welcome"
	SourceMotion  Source = "motion"
	SourceIdle    Source = "idle"
	SourceSecret  Source = "secret"
)

// Hint is a line surfaced to the user.
type Hint struct {
	Text   string
	Source Source
	Band   motion.Band
	At     time.Time
}

type FrameInfo struct {
	Frame uint64
	At    time.Time
	Scale float64
	Stats field.Stats
}

// Entry is one line kept in the session journal.
type Entry struct {
	Text string    `json:"text"`
	Kind string    `json:"kind"`
	Path string    `json:"path"`
	Mood Mood      `json:"mood"`
	At   time.Time `json:"at"`
}

const memoryCap = 50

type Session struct {
	cfg *config.Config
	cat *narrative.Catalog
	rng Rand

	field      *field.Field
	classifier *motion.Classifier
	idle       *motion.IdleWatcher
	observers  []Observer

	width, height float64
	started       bool
	lastFrame     time.Time
	frames        uint64

	path       string
	mood       Mood
	cursor     int
	discovered map[string]bool
	memory     []Entry
	hint       Hint
}

func New(cfg *config.Config, cat *narrative.Catalog, rng Rand) (*Session, error) {
	if cat == nil {
		cat = narrative.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	if !cat.HasPath(cfg.Session.Path) {
		return nil, fmt.Errorf("%w: %q", narrative.ErrUnknownPath, cfg.Session.Path)
	}
	mood := Silencio
	if cfg.Session.Mood != "" {
		m, err := ParseMood(cfg.Session.Mood)
		if err != nil {
			return nil, err
		}
		mood = m
	}
	s := &Session{
		cfg:        cfg,
		cat:        cat,
		rng:        rng,
		field:      field.New(cfg.FieldParams(), rng),
		classifier: motion.New(cfg.MotionParams(), rng, cat),
		idle:       motion.NewIdleWatcher(cfg.Motion.IdleAfter, cfg.Motion.IdleChance),
		path:       cfg.Session.Path,
		discovered: make(map[string]bool),
	}
	s.applyMood(mood)
	return s, nil
}

// Observe registers o for readings, hints and frames.
func (s *Session) Observe(o Observer) { s.observers = append(s.observers, o) }

// Start seeds the field for the viewport and shows the welcome line. Calling
// it again only resizes.
func (s *Session) Start(width, height float64, now time.Time) {
	s.Resize(width, height)
	if s.started {
		return
	}
	s.started = true
	s.field.Initialize(s.width, s.height, s.cfg.Field.Initial)
	s.idle.Register(now)
	if s.cat.Welcome != "" {
		s.emit(Hint{Text: s.cat.Welcome, Source: SourceWelcome, At: now})
	}
}

func (s *Session) Resize(width, height float64) {
	s.field.Resize(width, height)
	s.width, s.height = s.field.Bounds()
}

func (s *Session) Attach(surface field.Surface) {
	if surface == nil {
		s.field.Detach()
		return
	}
	s.field.Attach(surface)
}

// Pointer handles a pointer move: it updates the parallax force, registers
// the interaction and feeds the classifier. A reading may surface a hint.
func (s *Session) Pointer(x, y float64, at time.Time) (motion.Reading, bool) {
	if !finite(x) || !finite(y) {
		return motion.Reading{}, false
	}
	s.field.SetForce(s.parallax(x, s.width), s.parallax(y, s.height))
	if !at.IsZero() {
		s.idle.Register(at)
	}

	r, ok := s.classifier.Sample(x, y, at)
	if !ok {
		return r, false
	}
	for _, o := range s.observers {
		o.OnReading(r)
	}
	if line, hit := s.classifier.Tick(r.Band); hit {
		s.emit(Hint{Text: line, Source: SourceMotion, Band: r.Band, At: at})
	}
	return r, true
}

func (s *Session) parallax(v, extent float64) float64 {
	if !(extent > 0) {
		return 0
	}
	return (clampTo(v/extent, 1) - 0.5) * s.cfg.Session.ForceScale
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// PointerLeave zeroes the force and forgets the reference sample so the
// re-entry point is not measured against the exit point.
func (s *Session) PointerLeave() {
	s.field.SetForce(0, 0)
	s.classifier.Reset()
}

// Interact registers a non-pointer interaction for the idle timer.
func (s *Session) Interact(at time.Time) { s.idle.Register(at) }

// Frame advances the field one display refresh and runs the idle trial.
func (s *Session) Frame(now time.Time) FrameInfo {
	scale := 1.0
	if s.cfg.Field.FrameScaling && !s.lastFrame.IsZero() {
		if dt := now.Sub(s.lastFrame); dt > 0 {
			scale = float64(dt) / float64(s.cfg.FrameTime())
		}
	}
	s.lastFrame = now
	if scale == 1 {
		s.field.Step()
	} else {
		s.field.StepScaled(scale)
	}
	s.frames++

	if line, ok := s.idle.Tick(now, s.classifier); ok {
		s.emit(Hint{Text: line, Source: SourceIdle, Band: motion.Pausa, At: now})
	}

	info := FrameInfo{Frame: s.frames, At: now, Scale: scale, Stats: s.field.Stats()}
	for _, o := range s.observers {
		o.OnFrame(info)
	}
	return info
}

// Cycle advances to the next fragment set of the current path and bursts
// at the cycle origin.
func (s *Session) Cycle(at time.Time) []string {
	s.cursor++
	s.idle.Register(at)
	x, y := s.cycleOrigin()
	s.field.Burst(x, y, s.cfg.Session.CycleBurst)
	return s.Fragments()
}

func (s *Session) cycleOrigin() (float64, float64) {
	return clampTo(s.cfg.Session.CycleX, s.width), clampTo(s.cfg.Session.CycleY, s.height)
}

func clampTo(v, extent float64) float64 {
	return math.Max(0, math.Min(v, extent))
}

// Fragments returns the current fragment set.
func (s *Session) Fragments() []string { return s.cat.FragmentSet(s.path, s.cursor) }

// SetPath switches the fragment path; the cursor carries over.
func (s *Session) SetPath(path string) error {
	if !s.cat.HasPath(path) {
		return fmt.Errorf("%w: %q", narrative.ErrUnknownPath, path)
	}
	s.path = path
	return nil
}

func (s *Session) Path() string { return s.path }

// SetMood switches the mood and rescales the halos from the next frame.
func (s *Session) SetMood(m Mood) error {
	if _, err := ParseMood(string(m)); err != nil {
		return err
	}
	s.applyMood(m)
	return nil
}

func (s *Session) applyMood(m Mood) {
	s.mood = m
	s.field.SetHaloGain(m.HaloGain())
}

func (s *Session) Mood() Mood { return s.mood }

// Discover reveals secret id once. The burst lands at the point plus the
// configured offset. Repeats and unknown ids return false and do nothing.
func (s *Session) Discover(id string, x, y float64, at time.Time) (string, bool) {
	if s.discovered[id] {
		return "", false
	}
	lines, ok := s.cat.Secret(id)
	if !ok {
		return "", false
	}
	s.discovered[id] = true
	s.idle.Register(at)

	line := lines[s.rng.Intn(len(lines))]
	s.remember(Entry{Text: line, Kind: "secreto", Path: s.path, At: at})
	off := s.cfg.Session.DiscoverOffset
	s.field.Burst(x+off, y+off, s.cfg.Session.DiscoverBurst)
	s.emit(Hint{Text: line, Source: SourceSecret, Band: s.classifier.Band(), At: at})
	return line, true
}

// DiscoverAt hit-tests (x, y) against the secret points within radius.
func (s *Session) DiscoverAt(x, y, radius float64, at time.Time) (string, bool) {
	for _, p := range s.SecretPoints() {
		if p.Found || math.Hypot(p.X-x, p.Y-y) > radius {
			continue
		}
		return s.Discover(p.ID, p.X, p.Y, at)
	}
	return "", false
}

// SecretPoint is a secret resolved to viewport coordinates.
type SecretPoint struct {
	ID    string
	X, Y  float64
	Found bool
}

func (s *Session) SecretPoints() []SecretPoint {
	pts := make([]SecretPoint, 0, len(s.cfg.Session.Secrets))
	for _, p := range s.cfg.Session.Secrets {
		pts = append(pts, SecretPoint{
			ID:    p.ID,
			X:     p.X * s.width,
			Y:     p.Y * s.height,
			Found: s.discovered[p.ID],
		})
	}
	return pts
}

func (s *Session) Discovered() int { return len(s.discovered) }

func (s *Session) remember(e Entry) {
	e.Mood = s.mood
	s.memory = append([]Entry{e}, s.memory...)
	if len(s.memory) > memoryCap {
		s.memory = s.memory[:memoryCap]
	}
}

// Memory returns the journal, newest first.
func (s *Session) Memory() []Entry {
	out := make([]Entry, len(s.memory))
	copy(out, s.memory)
	return out
}

func (s *Session) emit(h Hint) {
	s.hint = h
	for _, o := range s.observers {
		o.OnHint(h)
	}
}

// Hint is the line currently shown.
func (s *Session) Hint() Hint { return s.hint }

func (s *Session) Field() *field.Field { return s.field }

func (s *Session) Classifier() *motion.Classifier { return s.classifier }

func (s *Session) Idle() *motion.IdleWatcher { return s.idle }

func (s *Session) Bounds() (float64, float64) { return s.width, s.height }

func (s *Session) Frames() uint64 { return s.frames }

func (s *Session) Config() *config.Config { return s.cfg }
