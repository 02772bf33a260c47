// Package jog runs the fixed-rate tracking loop behind interactive jogging:
// every tick the target pose moves by a small Cartesian step and the solver
// re-solves, seeded from the previous result so consecutive solutions stay
// on the same branch.
package jog

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
)

// Axis selects which Cartesian component a jog moves.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisRX
	AxisRY
	AxisRZ
)

var axisLabels = [6]string{"X", "Y", "Z", "RX", "RY", "RZ"}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisLabels) {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisLabels[a]
}

// ParseAxis accepts the wire/CLI axis names, case-sensitive as printed.
func ParseAxis(s string) (Axis, error) {
	for i, l := range axisLabels {
		if s == l {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("jog: unknown axis %q", s)
}

// State is one tick's outcome, published to the UI.
type State struct {
	Tick      int
	Target    kinematics.Pose
	Joints    robot.JointAngles
	Result    ik.Result
	Timestamp time.Time
}

// Config tunes a tracking run.
type Config struct {
	Hz   int
	Axis Axis
	Step float64 // mm (or degrees for rotary axes) per tick
	Mask ik.AxisMask
}

// Tracker owns a private chain copy and the current joint configuration.
// It is not safe for concurrent Start calls; run one loop per tracker.
type Tracker struct {
	solver    *ik.Solver
	extractor *kinematics.Extractor
	chain     kinematics.Chain
	joints    robot.JointAngles
	cfg       Config

	stateCh chan State
}

// New builds a tracker starting from the given configuration.
func New(solver *ik.Solver, extractor *kinematics.Extractor, chain kinematics.Chain, start robot.JointAngles, cfg Config) (*Tracker, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	if !cfg.Mask.Any() {
		cfg.Mask = ik.AllAxes
	}
	return &Tracker{
		solver:    solver,
		extractor: extractor,
		chain:     chain.Clone(),
		joints:    start,
		cfg:       cfg,
		stateCh:   make(chan State, 1),
	}, nil
}

// States returns the channel of tick outcomes. Slow consumers see the most
// recent state; stale ones are dropped.
func (t *Tracker) States() <-chan State {
	return t.stateCh
}

// Joints returns the current configuration (last committed solve result).
func (t *Tracker) Joints() robot.JointAngles {
	return t.joints
}

// Start runs the loop until the context is canceled. A failed solve leaves
// the committed configuration untouched; the target keeps moving and the
// next tick retries from the last good seed.
func (t *Tracker) Start(ctx context.Context) error {
	if err := t.chain.SetAngles(t.joints.Slice()); err != nil {
		return err
	}
	target, err := t.extractor.Pose(t.chain)
	if err != nil {
		return fmt.Errorf("resolve start pose: %w", err)
	}

	ticker := time.NewTicker(time.Second / time.Duration(t.cfg.Hz))
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick++
			target = nudge(target, t.cfg.Axis, t.cfg.Step)
			res := t.solver.Solve(t.chain, t.joints, target, t.cfg.Mask)
			if res.Success {
				t.joints = res.Joints
			}
			t.publish(State{
				Tick:      tick,
				Target:    target,
				Joints:    t.joints,
				Result:    res,
				Timestamp: time.Now(),
			})
		}
	}
}

func (t *Tracker) publish(s State) {
	select {
	case t.stateCh <- s:
	default:
		// Drop the stale state, replace with the fresh one.
		select {
		case <-t.stateCh:
		default:
		}
		select {
		case t.stateCh <- s:
		default:
		}
	}
}

func nudge(p kinematics.Pose, axis Axis, step float64) kinematics.Pose {
	switch axis {
	case AxisX:
		p.X += step
	case AxisY:
		p.Y += step
	case AxisZ:
		p.Z += step
	case AxisRX:
		p.RX = kinematics.WrapDeg(p.RX + step)
	case AxisRY:
		p.RY = kinematics.WrapDeg(p.RY + step)
	case AxisRZ:
		p.RZ = kinematics.WrapDeg(p.RZ + step)
	}
	return p
}
