package jog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/robot"
)

func testTracker(t *testing.T, cfg Config) *Tracker {
	t.Helper()
	profile := robot.DefaultProfile()
	chain, err := profile.Chain()
	if err != nil {
		t.Fatal(err)
	}
	extractor := profile.Extractor()
	solver := ik.New(extractor, profile.LimitTable(), ik.DefaultParams())
	tr, err := New(solver, extractor, chain, robot.Home(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestParseAxis(t *testing.T) {
	for i, name := range []string{"X", "Y", "Z", "RX", "RY", "RZ"} {
		a, err := ParseAxis(name)
		if err != nil {
			t.Fatal(err)
		}
		if a != Axis(i) {
			t.Errorf("ParseAxis(%q) = %v", name, a)
		}
		if a.String() != name {
			t.Errorf("String() = %q, want %q", a.String(), name)
		}
	}
	if _, err := ParseAxis("W"); err == nil {
		t.Error("expected error for unknown axis")
	}
}

func TestTrackerTicksAndStaysInLimits(t *testing.T) {
	tr := testTracker(t, Config{Hz: 100, Axis: AxisZ, Step: 0.5})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- tr.Start(ctx) }()

	var states []State
	for len(states) < 5 {
		select {
		case s := <-tr.States():
			states = append(states, s)
		case <-ctx.Done():
			t.Fatalf("collected only %d states before timeout", len(states))
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Start returned %v", err)
	}

	last := 0
	for _, s := range states {
		if s.Tick <= last {
			t.Errorf("ticks not increasing: %d after %d", s.Tick, last)
		}
		last = s.Tick
		if !robot.InLimits(s.Joints) {
			t.Errorf("tick %d left limits: %v", s.Tick, s.Joints)
		}
	}
}

func TestTrackerMovesTarget(t *testing.T) {
	tr := testTracker(t, Config{Hz: 200, Axis: AxisX, Step: 1.0})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go func() { _ = tr.Start(ctx) }()

	var first, later State
	select {
	case first = <-tr.States():
	case <-ctx.Done():
		t.Fatal("no state before timeout")
	}
	deadline := time.After(150 * time.Millisecond)
	for later.Tick < first.Tick+3 {
		select {
		case later = <-tr.States():
		case <-deadline:
			t.Fatal("tracker stalled")
		}
	}

	if later.Target.X <= first.Target.X {
		t.Errorf("target did not advance along X: %v then %v", first.Target.X, later.Target.X)
	}
}

func TestTrackerDefaultsApplied(t *testing.T) {
	tr := testTracker(t, Config{Axis: AxisY, Step: 1})
	if tr.cfg.Hz != 30 {
		t.Errorf("default hz = %d", tr.cfg.Hz)
	}
	if tr.cfg.Mask != ik.AllAxes {
		t.Errorf("default mask = %v", tr.cfg.Mask)
	}
}

func TestTrackerKeepsJointsOnFailedSolve(t *testing.T) {
	// A huge per-tick step makes the target unreachable almost immediately;
	// the committed configuration must stay at the last good solve.
	tr := testTracker(t, Config{Hz: 100, Axis: AxisX, Step: 5000})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go func() { _ = tr.Start(ctx) }()

	sawFailure := false
	for !sawFailure {
		select {
		case s := <-tr.States():
			if !s.Result.Success {
				sawFailure = true
				if !robot.InLimits(s.Joints) {
					t.Errorf("failed tick left limits: %v", s.Joints)
				}
			}
		case <-ctx.Done():
			t.Skip("no failed solve observed within the window")
		}
	}
}
