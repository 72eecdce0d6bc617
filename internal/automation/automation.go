package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/san-kum/intervalo/internal/config"
	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/narrative"
	"github.com/san-kum/intervalo/internal/session"
	"github.com/san-kum/intervalo/internal/trace"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidStep   = errors.New("invalid step")
)

// Scenario is a scripted pointer session played headlessly
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	FPS         int     `yaml:"fps"`
	Seed        int64   `yaml:"seed"`
	Preset      string  `yaml:"preset"`
	Steps       []Step  `yaml:"steps"`
}

// Step is one action: move, hold, leave, cycle, discover, path or mood
type Step struct {
	Action   string        `yaml:"action"`
	From     []float64     `yaml:"from"`
	To       []float64     `yaml:"to"`
	Duration time.Duration `yaml:"duration"`
	ID       string        `yaml:"id"`
	At       []float64     `yaml:"at"`
	Path     string        `yaml:"path"`
	Mood     string        `yaml:"mood"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks every step before anything runs
func (sc *Scenario) Validate() error {
	for i, st := range sc.Steps {
		var err error
		switch st.Action {
		case "move":
			if len(st.From) != 2 || len(st.To) != 2 {
				err = fmt.Errorf("%w: move needs from and to as [x, y]", ErrInvalidStep)
			}
		case "hold":
			if st.Duration <= 0 {
				err = fmt.Errorf("%w: hold needs a positive duration", ErrInvalidStep)
			}
		case "discover":
			if st.ID == "" || (st.At != nil && len(st.At) != 2) {
				err = fmt.Errorf("%w: discover needs an id and optional at [x, y]", ErrInvalidStep)
			}
		case "path":
			if st.Path == "" {
				err = fmt.Errorf("%w: path step needs a path", ErrInvalidStep)
			}
		case "mood":
			if _, perr := session.ParseMood(st.Mood); perr != nil {
				err = fmt.Errorf("%w: %v", ErrInvalidStep, perr)
			}
		case "leave", "cycle":
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Apply returns a copy of base with the scenario's preset, viewport, rate
// and seed laid over it. Settings the preset does not name keep the base
// values. An unknown preset is ignored.
func (sc *Scenario) Apply(base *config.Config) *config.Config {
	c := *base
	c.Session.Secrets = append([]config.SecretPoint(nil), base.Session.Secrets...)
	cfg := &c
	if sc.Preset != "" {
		config.ApplyPreset(cfg, sc.Preset)
	}
	if sc.FPS > 0 {
		cfg.Render.FPS = sc.FPS
	}
	if sc.Width > 0 {
		cfg.Render.Width = int(sc.Width)
	}
	if sc.Height > 0 {
		cfg.Render.Height = int(sc.Height)
	}
	if sc.Seed != 0 {
		cfg.Seed = sc.Seed
	}
	return cfg
}

// Result summarizes a played scenario
type Result struct {
	Frames      uint64
	Elapsed     time.Duration
	End         time.Time
	Fragments   [][]string
	Discoveries []string
	Stats       field.Stats
}

// Run plays sc against sess at a fixed frame time starting at start. The
// session is started with the scenario viewport (or the config's).
func Run(ctx context.Context, sc *Scenario, sess *session.Session, start time.Time) (*Result, error) {
	cfg := sess.Config()
	ft := cfg.FrameTime()
	w, h := sc.Width, sc.Height
	if w <= 0 || h <= 0 {
		w, h = float64(cfg.Render.Width), float64(cfg.Render.Height)
	}

	now := start
	sess.Start(w, h, now)
	res := &Result{}

	frame := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		now = now.Add(ft)
		sess.Frame(now)
		res.Frames++
		return nil
	}

	for i, st := range sc.Steps {
		var err error
		switch st.Action {
		case "move":
			sess.Pointer(st.From[0], st.From[1], now)
			n := frames(st.Duration, ft)
			for k := 1; k <= n && err == nil; k++ {
				if err = frame(); err == nil {
					f := float64(k) / float64(n)
					sess.Pointer(lerp(st.From[0], st.To[0], f), lerp(st.From[1], st.To[1], f), now)
				}
			}
		case "hold":
			for k := frames(st.Duration, ft); k > 0 && err == nil; k-- {
				err = frame()
			}
		case "leave":
			sess.PointerLeave()
		case "cycle":
			res.Fragments = append(res.Fragments, sess.Cycle(now))
		case "discover":
			x, y, ok := secretPoint(sess, st)
			if !ok {
				break
			}
			if line, found := sess.Discover(st.ID, x, y, now); found {
				res.Discoveries = append(res.Discoveries, line)
			}
		case "path":
			err = sess.SetPath(st.Path)
		case "mood":
			err = sess.SetMood(session.Mood(st.Mood))
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
		}
		if err != nil {
			res.End, res.Elapsed = now, now.Sub(start)
			return res, fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}

	res.End, res.Elapsed = now, now.Sub(start)
	res.Stats = sess.Field().Stats()
	return res, nil
}

func secretPoint(sess *session.Session, st Step) (float64, float64, bool) {
	if len(st.At) == 2 {
		return st.At[0], st.At[1], true
	}
	for _, p := range sess.SecretPoints() {
		if p.ID == st.ID {
			return p.X, p.Y, true
		}
	}
	return 0, 0, false
}

func frames(d, ft time.Duration) int {
	if d <= 0 {
		return 1
	}
	return max(1, int(math.Round(float64(d)/float64(ft))))
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// TrialResult holds the outcome of one seeded replay
type TrialResult struct {
	Seed       int64
	Population int
	Hints      int
	Samples    int
	MeanSpeed  float64
}

// RunTrials replays sc with n consecutive seeds, one goroutine per trial.
// Results are in seed order; the first failing trial aborts the batch.
func RunTrials(ctx context.Context, sc *Scenario, base *config.Config, cat *narrative.Catalog, n int) ([]TrialResult, error) {
	results := make([]TrialResult, n)
	errs := make([]error, n)
	start := time.Unix(0, 0)

	var wg sync.WaitGroup
	for trial := 0; trial < n; trial++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := sc.Apply(base)
			cfg.Seed += int64(idx)

			sess, err := session.New(cfg, cat, rand.New(rand.NewSource(cfg.Seed)))
			if err != nil {
				errs[idx] = err
				return
			}
			rec := trace.NewRecorder(start)
			sess.Observe(rec)

			res, err := Run(ctx, sc, sess, start)
			if err != nil {
				errs[idx] = fmt.Errorf("trial %d: %w", idx+1, err)
				return
			}
			results[idx] = TrialResult{
				Seed:       cfg.Seed,
				Population: res.Stats.Population,
				Hints:      len(rec.Hints),
				Samples:    len(rec.Samples),
				MeanSpeed:  rec.Metrics()["mean_speed"],
			}
		}(trial)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
