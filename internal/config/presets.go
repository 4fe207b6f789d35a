package config

import "sort"

// Preset names a scenario size plus the handful of fields it tunes. Every
// other field is left as configured.
type Preset struct {
	Scenario  string
	Particles int
	Override  func(c *Config)
}

func preset(scenario string, particles int, override func(c *Config)) Preset {
	return Preset{Scenario: scenario, Particles: particles, Override: override}
}

// Apply writes the preset's fields onto c.
func (p Preset) Apply(c *Config) {
	c.Scenario = p.Scenario
	c.Particles = p.Particles
	if p.Override != nil {
		p.Override(c)
	}
}

var Presets = map[string]map[string]Preset{
	"basic": {
		"default": preset("basic", 4, nil),
		"fine": preset("basic", 4, func(c *Config) {
			c.Substeps = 50
			c.MaxIter = 1000
		}),
	},
	"crystal": {
		"small": preset("crystal", 9, func(c *Config) {
			c.Width, c.Height = 128, 128
		}),
		"lattice": preset("crystal", 25, nil),
		"large": preset("crystal", 100, func(c *Config) {
			c.Width, c.Height = 300, 300
			c.Dt = 1e-5
		}),
	},
	"collision": {
		"head-on": preset("collision", 20, func(c *Config) {
			c.UpdateScale = true
		}),
		"dense": preset("collision", 60, func(c *Config) {
			c.UpdateScale = true
			c.Dt = 1e-5
			c.Substeps = 20
		}),
	},
	"random": {
		"sparse": preset("random", 10, nil),
		"dense": preset("random", 200, func(c *Config) {
			c.Dt = 5e-6
		}),
	},
	"cloud": {
		"default": preset("cloud", 30, func(c *Config) {
			c.Colormap = "hsv"
		}),
	},
}

func lookupPreset(scenario, name string) (Preset, bool) {
	p, ok := Presets[scenario][name]
	return p, ok
}

// GetPreset returns the named preset applied to the defaults.
func GetPreset(scenario, name string) *Config {
	p, ok := lookupPreset(scenario, name)
	if !ok {
		return nil
	}
	c := DefaultConfig()
	p.Apply(c)
	return c
}

// ApplyPreset layers the named preset over cfg and reports whether it exists.
func ApplyPreset(cfg *Config, scenario, name string) bool {
	p, ok := lookupPreset(scenario, name)
	if !ok {
		return false
	}
	p.Apply(cfg)
	return true
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
