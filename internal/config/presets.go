package config

// Presets are named solver tunings for common workflows. "default" mirrors
// DefaultConfig; "precise" tightens tolerance for programmed moves;
// "fast" loosens it for high-rate jogging where per-tick latency matters
// more than the last half millimeter.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"precise": presetConfig(func(c *Config) {
		c.Solver.MaxIterations = 200
		c.Solver.Tolerance = 0.05
		c.Solver.Damping = 0.5
		c.Solver.MaxStep = 10
	}),
	"fast": presetConfig(func(c *Config) {
		c.Solver.MaxIterations = 30
		c.Solver.Tolerance = 1.0
		c.Solver.Damping = 4.0
		c.Jog.Hz = 60
	}),
	"stiff": presetConfig(func(c *Config) {
		// Heavy damping for operation close to the workspace boundary.
		c.Solver.Damping = 8.0
		c.Solver.MaxStep = 5
		c.Solver.MaxIterations = 150
	}),
}

func presetConfig(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
