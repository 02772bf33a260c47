package wire

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
)

func TestSolveRequestRoundTrip(t *testing.T) {
	target := kinematics.Pose{X: 100, Y: -50, Z: 300, RX: 10, RY: -20, RZ: 170}
	seed := robot.JointAngles{1, -90, 180, 2, 3, 200}
	req := NewSolveRequest(target, seed, ik.PositionOnly)

	gotTarget, err := req.TargetPose()
	if err != nil {
		t.Fatal(err)
	}
	if gotTarget != target {
		t.Errorf("target = %+v, want %+v", gotTarget, target)
	}

	gotSeed, err := req.SeedJoints()
	if err != nil {
		t.Fatal(err)
	}
	if gotSeed != seed {
		t.Errorf("seed = %v, want %v", gotSeed, seed)
	}

	gotMask, err := req.AxisMask()
	if err != nil {
		t.Fatal(err)
	}
	if gotMask != ik.PositionOnly {
		t.Errorf("mask = %v, want %v", gotMask, ik.PositionOnly)
	}
}

func TestAbsentMaskEnablesAllAxes(t *testing.T) {
	req := SolveRequest{
		Target: []float64{0, 0, 0, 0, 0, 0},
		Joints: robot.Home().Slice(),
	}
	mask, err := req.AxisMask()
	if err != nil {
		t.Fatal(err)
	}
	if mask != ik.AllAxes {
		t.Errorf("nil mask decoded to %v", mask)
	}
}

func TestBadLengths(t *testing.T) {
	req := SolveRequest{Target: []float64{1, 2, 3}}
	if _, err := req.TargetPose(); !errors.Is(err, ErrBadPose) {
		t.Errorf("short target: %v", err)
	}

	req = SolveRequest{Joints: []float64{1, 2}}
	if _, err := req.SeedJoints(); !errors.Is(err, ErrBadJoints) {
		t.Errorf("short joints: %v", err)
	}

	req = SolveRequest{Mask: []int{1, 0}}
	if _, err := req.AxisMask(); !errors.Is(err, ErrBadMask) {
		t.Errorf("short mask: %v", err)
	}

	req = SolveRequest{Mask: []int{1, 0, 0, 0, 0, 7}}
	if _, err := req.AxisMask(); !errors.Is(err, ErrBadMask) {
		t.Errorf("mask value 7: %v", err)
	}
}

func TestQuaternionOverridesEuler(t *testing.T) {
	req := SolveRequest{
		Target:     []float64{10, 20, 30, 99, 99, 99},
		Quaternion: []float64{0, 0, 0, 1}, // identity
	}
	pose, err := req.TargetPose()
	if err != nil {
		t.Fatal(err)
	}
	if pose.X != 10 || pose.Y != 20 || pose.Z != 30 {
		t.Errorf("position = (%v, %v, %v)", pose.X, pose.Y, pose.Z)
	}
	if math.Abs(pose.RX) > 1e-9 || math.Abs(pose.RY) > 1e-9 || math.Abs(pose.RZ) > 1e-9 {
		t.Errorf("identity quaternion decoded to (%v, %v, %v)", pose.RX, pose.RY, pose.RZ)
	}
}

func TestBadQuaternion(t *testing.T) {
	req := SolveRequest{
		Target:     []float64{0, 0, 0, 0, 0, 0},
		Quaternion: []float64{0, 0, 1},
	}
	if _, err := req.TargetPose(); !errors.Is(err, ErrBadQuat) {
		t.Errorf("short quaternion: %v", err)
	}

	req.Quaternion = []float64{0, 0, 0, math.NaN()}
	if _, err := req.TargetPose(); !errors.Is(err, ErrBadQuat) {
		t.Errorf("NaN quaternion: %v", err)
	}
}

func TestSolveResponseRoundTrip(t *testing.T) {
	success := ik.Result{
		Success:    true,
		Joints:     robot.JointAngles{5, -80, 190, 10, -20, 250},
		Iterations: 12,
		Residual:   0.3,
	}
	resp := NewSolveResponse(success)
	if resp.Reason != "" {
		t.Errorf("success response carries reason %q", resp.Reason)
	}
	back, err := resp.Result()
	if err != nil {
		t.Fatal(err)
	}
	if back != success {
		t.Errorf("round trip mismatch: %+v vs %+v", back, success)
	}

	failure := ik.Result{
		Iterations: 100,
		Residual:   80.5,
		Reason:     ik.ReasonOutOfReach,
	}
	resp = NewSolveResponse(failure)
	if resp.Joints != nil {
		t.Error("failure response carries joints")
	}
	if resp.Reason != "out_of_reach" {
		t.Errorf("reason = %q", resp.Reason)
	}
	back, err = resp.Result()
	if err != nil {
		t.Fatal(err)
	}
	if back != failure {
		t.Errorf("round trip mismatch: %+v vs %+v", back, failure)
	}
}

func TestSolveResponseRejectsUnknownReason(t *testing.T) {
	resp := SolveResponse{Success: false, Reason: "imploded"}
	if _, err := resp.Result(); err == nil {
		t.Error("expected error for unknown reason")
	}
}
