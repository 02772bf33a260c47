// Package config loads and saves armkin configuration: solver tuning, an
// optional custom robot profile, and the serve/jog surfaces.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/robot"
)

const (
	DefaultAddr = ":8460"
	DefaultHz   = 30
)

type Config struct {
	Solver SolverConfig   `yaml:"solver"`
	Serve  ServeConfig    `yaml:"serve"`
	Jog    JogConfig      `yaml:"jog"`
	Robot  *robot.Profile `yaml:"robot,omitempty"` // nil means the stock arm
}

type SolverConfig struct {
	MaxIterations      int     `yaml:"max_iterations"`
	Tolerance          float64 `yaml:"tolerance"`
	Damping            float64 `yaml:"damping"`
	FDEpsilon          float64 `yaml:"fd_epsilon"`
	MaxStep            float64 `yaml:"max_step"`
	OrientationWeight  float64 `yaml:"orientation_weight"`
	OutOfReachDistance float64 `yaml:"out_of_reach_distance"`
	SingularStreak     int     `yaml:"singular_streak"`
	CondLimit          float64 `yaml:"cond_limit"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

type JogConfig struct {
	Hz     int     `yaml:"hz"`
	StepMM float64 `yaml:"step_mm"`
}

func DefaultConfig() *Config {
	p := ik.DefaultParams()
	return &Config{
		Solver: SolverConfig{
			MaxIterations:      p.MaxIterations,
			Tolerance:          p.Tolerance,
			Damping:            p.Damping,
			FDEpsilon:          p.FDEpsilon,
			MaxStep:            p.MaxStep,
			OrientationWeight:  p.OrientationWeight,
			OutOfReachDistance: p.OutOfReachDistance,
			SingularStreak:     p.SingularStreak,
			CondLimit:          p.CondLimit,
		},
		Serve: ServeConfig{Addr: DefaultAddr},
		Jog:   JogConfig{Hz: DefaultHz, StepMM: 2.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
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

func (c *Config) validate() error {
	if c.Solver.MaxIterations <= 0 {
		return fmt.Errorf("config: max_iterations must be positive, got %d", c.Solver.MaxIterations)
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("config: tolerance must be positive, got %f", c.Solver.Tolerance)
	}
	if c.Solver.Damping <= 0 {
		return fmt.Errorf("config: damping must be positive, got %f", c.Solver.Damping)
	}
	if c.Jog.Hz <= 0 {
		return fmt.Errorf("config: jog hz must be positive, got %d", c.Jog.Hz)
	}
	if c.Robot != nil {
		if err := c.Robot.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SolverParams converts the yaml shape into solver tuning.
func (c *Config) SolverParams() ik.Params {
	return ik.Params{
		MaxIterations:      c.Solver.MaxIterations,
		Tolerance:          c.Solver.Tolerance,
		Damping:            c.Solver.Damping,
		FDEpsilon:          c.Solver.FDEpsilon,
		MaxStep:            c.Solver.MaxStep,
		OrientationWeight:  c.Solver.OrientationWeight,
		OutOfReachDistance: c.Solver.OutOfReachDistance,
		SingularStreak:     c.Solver.SingularStreak,
		CondLimit:          c.Solver.CondLimit,
	}
}

// Profile returns the configured robot profile, falling back to the stock
// arm.
func (c *Config) Profile() *robot.Profile {
	if c.Robot != nil {
		return c.Robot
	}
	return robot.DefaultProfile()
}
