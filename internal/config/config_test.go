package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/intervalo/internal/field"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Field.Initial != 100 || cfg.Field.Floor != 50 {
		t.Errorf("population = %d/%d, want 100/50", cfg.Field.Initial, cfg.Field.Floor)
	}
	if cfg.Motion.IdleAfter != 10*time.Second {
		t.Errorf("idle_after = %v", cfg.Motion.IdleAfter)
	}
	if cfg.Session.CycleBurst != 15 || cfg.Session.DiscoverBurst != 30 {
		t.Errorf("bursts = %d/%d", cfg.Session.CycleBurst, cfg.Session.DiscoverBurst)
	}
	if cfg.Session.Mood != "silencio" {
		t.Errorf("mood = %q, want silencio", cfg.Session.Mood)
	}
}

func TestFieldParamsMatchDefaults(t *testing.T) {
	got := DefaultConfig().FieldParams()
	want := field.DefaultParams()

	if got.Damping != want.Damping || got.ForceGain != want.ForceGain || got.Margin != want.Margin {
		t.Errorf("kinematics = %+v", got)
	}
	if got.TrailColor != want.TrailColor {
		t.Errorf("trail colour = %v, want %v", got.TrailColor, want.TrailColor)
	}
	if got.Ambient != want.Ambient {
		t.Errorf("ambient rule = %+v, want %+v", got.Ambient, want.Ambient)
	}
	if got.Burst != want.Burst {
		t.Errorf("burst rule = %+v, want %+v", got.Burst, want.Burst)
	}
}

func TestMotionParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Motion.SuppressRepeats = true
	p := cfg.MotionParams()

	if p.HintChance != 0.02 || p.Scale != 1000 || !p.SuppressRepeats {
		t.Errorf("motion params = %+v", p)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"thresholds", func(c *Config) { c.Motion.Thresholds.T2 = c.Motion.Thresholds.T3 }},
		{"hint chance", func(c *Config) { c.Motion.HintChance = 1.5 }},
		{"idle chance", func(c *Config) { c.Motion.IdleChance = -0.1 }},
		{"floor", func(c *Config) { c.Field.Floor = -1 }},
		{"damping", func(c *Config) { c.Field.Damping = 0 }},
		{"damping nan", func(c *Config) { c.Field.Damping = math.NaN() }},
		{"force gain nan", func(c *Config) { c.Field.ForceGain = math.NaN() }},
		{"force gain inf", func(c *Config) { c.Field.ForceGain = math.Inf(1) }},
		{"margin nan", func(c *Config) { c.Field.Margin = math.NaN() }},
		{"halo scale nan", func(c *Config) { c.Field.HaloScale = math.NaN() }},
		{"alpha nan", func(c *Config) { c.Field.HaloAlpha = math.NaN() }},
		{"speed scale nan", func(c *Config) { c.Motion.Scale = math.NaN() }},
		{"force scale nan", func(c *Config) { c.Session.ForceScale = math.NaN() }},
		{"colour", func(c *Config) { c.Field.Primary = "gold" }},
		{"fps", func(c *Config) { c.Render.FPS = 0 }},
		{"burst", func(c *Config) { c.Session.CycleBurst = -3 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", tt.name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intervalo.yaml")
	cfg := GetPreset("storm")
	cfg.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 42 || loaded.Field.Initial != cfg.Field.Initial {
		t.Errorf("loaded = %+v", loaded.Field)
	}
	if loaded.Motion.IdleAfter != cfg.Motion.IdleAfter {
		t.Errorf("idle_after = %v, want %v", loaded.Motion.IdleAfter, cfg.Motion.IdleAfter)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "motion:\n  idle_after: 3s\nfield:\n  floor: 7\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Motion.IdleAfter != 3*time.Second || cfg.Field.Floor != 7 {
		t.Errorf("overrides not applied: %v %d", cfg.Motion.IdleAfter, cfg.Field.Floor)
	}
	if cfg.Field.Initial != DefaultInitial || cfg.Motion.HintChance != 0.02 {
		t.Error("defaults lost on partial load")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := "motion:\n  thresholds: {t1: 0.2, t2: 0.1, t3: 0.3}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("calm")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Field.Initial != 60 {
		t.Errorf("expected initial 60, got %d", cfg.Field.Initial)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreIndependent(t *testing.T) {
	a := GetPreset("storm")
	a.Field.Initial = 1
	if b := GetPreset("storm"); b.Field.Initial == 1 {
		t.Error("preset shared state between calls")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"calm", "still", "storm"}
	if len(names) != len(want) {
		t.Fatalf("presets = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("presets[%d] = %s, want %s", i, names[i], want[i])
		}
		if err := GetPreset(names[i]).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", names[i], err)
		}
	}
}

func TestFrameTime(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.FrameTime(); got != time.Second/60 {
		t.Errorf("frame time = %v", got)
	}
}
