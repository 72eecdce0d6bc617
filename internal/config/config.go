package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/motion"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInitial       = 100
	DefaultForceScale    = 0.2
	DefaultCycleBurst    = 15
	DefaultDiscoverBurst = 30
	DefaultFPS           = 60
	DefaultWidth         = 800
	DefaultHeight        = 600
	DefaultIdleAfter     = 10 * time.Second
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Seed    int64         `yaml:"seed"`
	Field   FieldConfig   `yaml:"field"`
	Motion  MotionConfig  `yaml:"motion"`
	Session SessionConfig `yaml:"session"`
	Render  RenderConfig  `yaml:"render"`
}

type FieldConfig struct {
	Initial      int         `yaml:"initial"`
	Floor        int         `yaml:"floor"`
	Damping      float64     `yaml:"damping"`
	ForceGain    float64     `yaml:"force_gain"`
	Margin       float64     `yaml:"margin"`
	TrailColor   string      `yaml:"trail_color"`
	TrailAlpha   float64     `yaml:"trail_alpha"`
	HaloScale    float64     `yaml:"halo_scale"`
	HaloAlpha    float64     `yaml:"halo_alpha"`
	Primary      string      `yaml:"primary"`
	Secondary    string      `yaml:"secondary"`
	Ambient      SpawnConfig `yaml:"ambient"`
	Burst        SpawnConfig `yaml:"burst"`
	FrameScaling bool        `yaml:"frame_scaling"`
}

// SpawnConfig describes one creation rule. Speed is the half-width of the
// per-component velocity range; Weight is the chance of the primary colour.
type SpawnConfig struct {
	Speed   float64     `yaml:"speed"`
	Radius  field.Range `yaml:"radius"`
	Opacity field.Range `yaml:"opacity"`
	Decay   field.Range `yaml:"decay"`
	Weight  float64     `yaml:"weight"`
}

type MotionConfig struct {
	Thresholds      motion.Thresholds `yaml:"thresholds"`
	Scale           float64           `yaml:"scale"`
	MaxSpeed        float64           `yaml:"max_speed"`
	GaugeGain       float64           `yaml:"gauge_gain"`
	HintChance      float64           `yaml:"hint_chance"`
	SuppressRepeats bool              `yaml:"suppress_repeats"`
	IdleAfter       time.Duration     `yaml:"idle_after"`
	IdleChance      float64           `yaml:"idle_chance"`
}

type SessionConfig struct {
	Path           string        `yaml:"path"`
	Narrative      string        `yaml:"narrative"`
	Mood           string        `yaml:"mood"`
	ForceScale     float64       `yaml:"force_scale"`
	CycleBurst     int           `yaml:"cycle_burst"`
	CycleX         float64       `yaml:"cycle_x"`
	CycleY         float64       `yaml:"cycle_y"`
	DiscoverBurst  int           `yaml:"discover_burst"`
	DiscoverOffset float64       `yaml:"discover_offset"`
	Secrets        []SecretPoint `yaml:"secrets"`
}

// SecretPoint places a discoverable fragment at a fraction of the viewport.
type SecretPoint struct {
	ID string  `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

type RenderConfig struct {
	FPS    int    `yaml:"fps"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Theme  string `yaml:"theme"`
	Data   string `yaml:"data"`
}

func DefaultConfig() *Config {
	amb := field.AmbientRule()
	burst := field.BurstRule()
	mp := motion.DefaultParams()
	return &Config{
		Field: FieldConfig{
			Initial:    DefaultInitial,
			Floor:      50,
			Damping:    0.99,
			ForceGain:  0.1,
			Margin:     100,
			TrailColor: "#050308",
			TrailAlpha: 0.05,
			HaloScale:  2,
			HaloAlpha:  0.3,
			Primary:    "#f9c55a",
			Secondary:  "#b1363c",
			Ambient:    spawnConfig(amb),
			Burst:      spawnConfig(burst),
		},
		Motion: MotionConfig{
			Thresholds: mp.Thresholds,
			Scale:      mp.Scale,
			MaxSpeed:   mp.MaxSpeed,
			GaugeGain:  mp.GaugeGain,
			HintChance: mp.HintChance,
			IdleAfter:  DefaultIdleAfter,
			IdleChance: 0.02,
		},
		Session: SessionConfig{
			Path:           "luz",
			Mood:           "silencio",
			ForceScale:     DefaultForceScale,
			CycleBurst:     DefaultCycleBurst,
			CycleX:         400,
			CycleY:         400,
			DiscoverBurst:  DefaultDiscoverBurst,
			DiscoverOffset: 20,
			Secrets: []SecretPoint{
				{ID: "1", X: 0.18, Y: 0.22},
				{ID: "2", X: 0.82, Y: 0.30},
				{ID: "3", X: 0.25, Y: 0.78},
				{ID: "4", X: 0.70, Y: 0.70},
			},
		},
		Render: RenderConfig{
			FPS:    DefaultFPS,
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Theme:  "intervalo",
			Data:   "data",
		},
	}
}

func spawnConfig(r field.SpawnRule) SpawnConfig {
	return SpawnConfig{
		Speed:   r.Velocity.Max,
		Radius:  r.Radius,
		Opacity: r.Opacity,
		Decay:   r.Decay,
		Weight:  r.Palette.Weight,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	f, m := c.Field, c.Motion
	switch {
	case f.Floor < 0 || f.Initial < 0:
		return fmt.Errorf("%w: negative population", ErrInvalid)
	case !(f.Damping > 0 && f.Damping <= 1):
		return fmt.Errorf("%w: damping %v outside (0,1]", ErrInvalid, f.Damping)
	case !(f.ForceGain >= 0) || math.IsInf(f.ForceGain, 0):
		return fmt.Errorf("%w: force gain %v", ErrInvalid, f.ForceGain)
	case !(f.Margin >= 0) || math.IsInf(f.Margin, 0):
		return fmt.Errorf("%w: margin %v", ErrInvalid, f.Margin)
	case !(f.HaloScale >= 0):
		return fmt.Errorf("%w: halo scale %v", ErrInvalid, f.HaloScale)
	case !unit(f.TrailAlpha) || !unit(f.HaloAlpha):
		return fmt.Errorf("%w: alpha outside [0,1]", ErrInvalid)
	case !unit(f.Ambient.Weight) || !unit(f.Burst.Weight):
		return fmt.Errorf("%w: palette weight outside [0,1]", ErrInvalid)
	case !m.Thresholds.Ordered():
		return fmt.Errorf("%w: thresholds %+v not strictly increasing", ErrInvalid, m.Thresholds)
	case !unit(m.HintChance) || !unit(m.IdleChance):
		return fmt.Errorf("%w: chance outside [0,1]", ErrInvalid)
	case !(m.Scale > 0) || math.IsInf(m.Scale, 0):
		return fmt.Errorf("%w: speed scale must be positive", ErrInvalid)
	case m.IdleAfter < 0:
		return fmt.Errorf("%w: negative idle_after", ErrInvalid)
	case !(c.Session.ForceScale >= 0) || math.IsInf(c.Session.ForceScale, 0):
		return fmt.Errorf("%w: force scale %v", ErrInvalid, c.Session.ForceScale)
	case c.Session.CycleBurst < 0 || c.Session.DiscoverBurst < 0:
		return fmt.Errorf("%w: negative burst size", ErrInvalid)
	case c.Render.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive", ErrInvalid)
	}
	for _, hex := range []string{f.TrailColor, f.Primary, f.Secondary} {
		if _, err := field.ParseColor(hex); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// FieldParams converts the field section. Colours must already be valid.
func (c *Config) FieldParams() field.Params {
	f := c.Field
	p := field.DefaultParams()
	p.Damping = f.Damping
	p.ForceGain = f.ForceGain
	p.Margin = f.Margin
	p.Floor = f.Floor
	p.TrailAlpha = f.TrailAlpha
	p.HaloScale = f.HaloScale
	p.HaloAlpha = f.HaloAlpha
	if col, err := field.ParseColor(f.TrailColor); err == nil {
		p.TrailColor = col
	}

	pal := field.Palette{Primary: field.Gold, Secondary: field.Crimson}
	if col, err := field.ParseColor(f.Primary); err == nil {
		pal.Primary = col
	}
	if col, err := field.ParseColor(f.Secondary); err == nil {
		pal.Secondary = col
	}
	p.Ambient = spawnRule(f.Ambient, pal)
	p.Burst = spawnRule(f.Burst, pal)
	return p
}

func spawnRule(s SpawnConfig, pal field.Palette) field.SpawnRule {
	pal.Weight = s.Weight
	return field.SpawnRule{
		Velocity: field.Symmetric(s.Speed),
		Radius:   s.Radius,
		Opacity:  s.Opacity,
		Decay:    s.Decay,
		Palette:  pal,
	}
}

func (c *Config) MotionParams() motion.Params {
	m := c.Motion
	return motion.Params{
		Thresholds:      m.Thresholds,
		Scale:           m.Scale,
		MaxSpeed:        m.MaxSpeed,
		HintChance:      m.HintChance,
		GaugeGain:       m.GaugeGain,
		SuppressRepeats: m.SuppressRepeats,
	}
}

// FrameTime is the nominal duration of one tick.
func (c *Config) FrameTime() time.Duration {
	fps := c.Render.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

func unit(v float64) bool { return v >= 0 && v <= 1 }
