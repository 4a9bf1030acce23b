package config

// Named starting points for common setups. Presets are copied on
// lookup so callers can tweak them freely.
var presets = map[string]func() *Config{
	"bulk-srd": func() *Config {
		return DefaultConfig()
	},
	"bulk-at": func() *Config {
		cfg := DefaultConfig()
		cfg.Collide.Method = "at"
		return cfg
	},
	"slit-srd": func() *Config {
		cfg := DefaultConfig()
		cfg.Stream.Method = "bounceback"
		cfg.Stream.SlitGap = cfg.Box - 2*cfg.CellSize
		return cfg
	},
	"coupled": func() *Config {
		cfg := DefaultConfig()
		cfg.Solute.N = 50
		return cfg
	},
	"benchmark": func() *Config {
		cfg := DefaultConfig()
		cfg.N = 4000
		cfg.Collide.Period = 2
		return cfg
	},
}

// GetPreset returns a fresh copy of a named preset, or nil if the name
// is unknown.
func GetPreset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
