package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/armkin/internal/ik"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Solver.MaxIterations <= 0 {
		t.Error("max iterations should be positive")
	}
	if cfg.Solver.Tolerance <= 0 {
		t.Error("tolerance should be positive")
	}
	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("expected addr %s, got %s", DefaultAddr, cfg.Serve.Addr)
	}
	if cfg.Jog.Hz != DefaultHz {
		t.Errorf("expected hz %d, got %d", DefaultHz, cfg.Jog.Hz)
	}
	if cfg.Robot != nil {
		t.Error("default config should use the stock arm")
	}
	if cfg.SolverParams() != ik.DefaultParams() {
		t.Error("default solver config diverged from solver defaults")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armkin.yaml")

	cfg := DefaultConfig()
	cfg.Solver.Tolerance = 0.123
	cfg.Solver.MaxIterations = 42
	cfg.Jog.Hz = 75
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Solver.Tolerance != 0.123 {
		t.Errorf("tolerance = %v", loaded.Solver.Tolerance)
	}
	if loaded.Solver.MaxIterations != 42 {
		t.Errorf("max iterations = %v", loaded.Solver.MaxIterations)
	}
	if loaded.Jog.Hz != 75 {
		t.Errorf("hz = %v", loaded.Jog.Hz)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	// A partial file only overrides what it names.
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  damping: 3.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Solver.Damping != 3.5 {
		t.Errorf("damping = %v", cfg.Solver.Damping)
	}
	if cfg.Solver.MaxIterations != DefaultConfig().Solver.MaxIterations {
		t.Error("unrelated field lost its default")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct{ name, body string }{
		{"zero iterations", "solver:\n  max_iterations: 0\n"},
		{"negative tolerance", "solver:\n  tolerance: -1\n"},
		{"zero hz", "jog:\n  hz: 0\n"},
	}
	for _, tc := range cases {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(tc.body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range []string{"default", "precise", "fast", "stiff"} {
		if GetPreset(name) == nil {
			t.Errorf("missing preset %q", name)
		}
	}
	if GetPreset("precise").Solver.Tolerance >= DefaultConfig().Solver.Tolerance {
		t.Error("precise preset should tighten tolerance")
	}
	if GetPreset("fast").Solver.MaxIterations >= DefaultConfig().Solver.MaxIterations {
		t.Error("fast preset should cut the iteration cap")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("got %d names for %d presets", len(names), len(Presets))
	}
}

func TestProfileFallback(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Profile()
	if p == nil {
		t.Fatal("nil profile")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("stock profile invalid: %v", err)
	}
}
