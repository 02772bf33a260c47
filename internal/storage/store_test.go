package storage

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveLoadSuccess(t *testing.T) {
	s := testStore(t)

	target := kinematics.Pose{X: 100, Y: -50, Z: 300, RZ: 170}
	res := ik.Result{
		Success:    true,
		Joints:     robot.JointAngles{5, -80, 190, 10, -20, 250},
		Iterations: 12,
		Residual:   0.3,
	}
	trace := &ik.Trace{Samples: []ik.IterSample{
		{Iteration: 1, Residual: 45.2, PosError: 44.0, Cond: 12.5, Clamped: 0},
		{Iteration: 2, Residual: 10.1, PosError: 9.8, Cond: 14.0, Clamped: 1},
	}}

	id, err := s.Save("stock", target, ik.AllAxes, robot.Home(), res, trace)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != id || meta.Profile != "stock" {
		t.Errorf("metadata = %+v", meta)
	}
	if !meta.Success || meta.Reason != "" {
		t.Errorf("success run carries reason %q", meta.Reason)
	}
	if meta.Target != target.Array() {
		t.Errorf("target = %v", meta.Target)
	}
	if meta.Joints != [6]float64(res.Joints) {
		t.Errorf("joints = %v", meta.Joints)
	}
}

func TestSaveFailurePreservesReason(t *testing.T) {
	s := testStore(t)

	res := ik.Result{
		Iterations: 100,
		Residual:   900,
		Reason:     ik.ReasonOutOfReach,
	}
	id, err := s.Save("stock", kinematics.Pose{X: 1e6}, ik.PositionOnly, robot.Home(), res, nil)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Success {
		t.Error("failure run marked success")
	}
	if meta.Reason != "out_of_reach" {
		t.Errorf("reason = %q", meta.Reason)
	}
	if meta.Mask != ik.PositionOnly.Ints() {
		t.Errorf("mask = %v", meta.Mask)
	}
}

func TestLoadTraceRoundTrip(t *testing.T) {
	s := testStore(t)

	trace := &ik.Trace{Samples: []ik.IterSample{
		{Iteration: 1, Residual: 45.25, PosError: 44.5, Cond: 100, Clamped: 2},
		{Iteration: 2, Residual: 10.125, PosError: 9.75, Cond: 250, Clamped: 0},
		{Iteration: 3, Residual: 1.5, PosError: 1.25, Cond: 80, Clamped: 0},
	}}
	res := ik.Result{Success: true, Iterations: 4, Residual: 0.2}

	id, err := s.Save("stock", kinematics.Pose{}, ik.AllAxes, robot.Home(), res, trace)
	if err != nil {
		t.Fatal(err)
	}

	samples, err := s.LoadTrace(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != len(trace.Samples) {
		t.Fatalf("got %d samples, want %d", len(samples), len(trace.Samples))
	}
	for i, got := range samples {
		want := trace.Samples[i]
		if got.Iteration != want.Iteration || got.Clamped != want.Clamped {
			t.Errorf("sample %d: %+v, want %+v", i, got, want)
		}
		if math.Abs(got.Residual-want.Residual) > 1e-6 {
			t.Errorf("sample %d residual: %v vs %v", i, got.Residual, want.Residual)
		}
	}
}

func TestLoadTraceAbsent(t *testing.T) {
	s := testStore(t)

	id, err := s.Save("stock", kinematics.Pose{}, ik.AllAxes, robot.Home(),
		ik.Result{Success: true, Iterations: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	samples, err := s.LoadTrace(id)
	if err != nil {
		t.Fatal(err)
	}
	if samples != nil {
		t.Errorf("expected no trace, got %d samples", len(samples))
	}
}

func TestListSortedByTime(t *testing.T) {
	s := testStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.Save("stock", kinematics.Pose{X: float64(i)}, ik.AllAxes, robot.Home(),
			ik.Result{Success: true, Iterations: 1}, nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs", len(runs))
	}
	for i, run := range runs {
		if run.ID != ids[i] {
			t.Errorf("run %d = %s, want %s", i, run.ID, ids[i])
		}
	}
}

func TestListEmptyBase(t *testing.T) {
	s := New(t.TempDir() + "/missing")
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if runs != nil {
		t.Errorf("expected nil, got %v", runs)
	}
}
