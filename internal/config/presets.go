package config

import (
	"sort"
	"time"

	"github.com/san-kum/intervalo/internal/field"
)

// Presets tweak the default config. Each call builds a fresh copy.
var Presets = map[string]func(*Config){
	"calm": func(c *Config) {
		c.Field.Initial = 60
		c.Field.Floor = 40
		c.Field.Damping = 0.995
		c.Field.Burst.Speed = 1
		c.Motion.HintChance = 0.01
		c.Motion.IdleAfter = 6 * time.Second
		c.Session.CycleBurst = 8
		c.Render.Theme = "luz"
	},
	"storm": func(c *Config) {
		c.Field.Initial = 400
		c.Field.Floor = 250
		c.Field.Damping = 0.97
		c.Field.ForceGain = 0.3
		c.Field.TrailAlpha = 0.02
		c.Field.Burst.Speed = 4
		c.Field.Burst.Decay = field.Range{Min: 0.005, Max: 0.015}
		c.Session.CycleBurst = 40
		c.Session.DiscoverBurst = 80
		c.Session.ForceScale = 0.5
		c.Render.Theme = "sombra"
	},
	"still": func(c *Config) {
		c.Field.Initial = 30
		c.Field.Floor = 20
		c.Field.Ambient.Speed = 0.05
		c.Field.TrailAlpha = 0.1
		c.Motion.HintChance = 0
		c.Motion.IdleAfter = 3 * time.Second
		c.Motion.IdleChance = 0.05
		c.Session.ForceScale = 0.05
	},
}

func GetPreset(name string) *Config {
	cfg := DefaultConfig()
	if !ApplyPreset(cfg, name) {
		return nil
	}
	return cfg
}

// ApplyPreset lays the named preset's tweaks over cfg in place. Sections
// the preset does not touch, such as the data dir, seed and narrative file,
// keep their values.
func ApplyPreset(cfg *Config, name string) bool {
	apply, ok := Presets[name]
	if !ok {
		return false
	}
	apply(cfg)
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
