// Package wire defines the flat-array exchange format shared by the local
// solver, the HTTP endpoint, and remote peers implementing the same solve
// contract: pose as [X,Y,Z,RX,RY,RZ], joints as [J1..J6], axis mask as six
// ints of 0 or 1.
package wire

import (
	"errors"
	"fmt"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
)

var (
	ErrBadPose   = errors.New("wire: pose must have 6 elements")
	ErrBadJoints = errors.New("wire: joints must have 6 elements")
	ErrBadMask   = errors.New("wire: mask must have 6 elements of 0 or 1")
	ErrBadQuat   = errors.New("wire: quaternion must have 4 elements [x,y,z,w]")
)

// SolveRequest is the body of POST /solve. Target orientation may be given
// either as Euler angles inside Target or as Quaternion [x,y,z,w]; when both
// are present the quaternion wins.
type SolveRequest struct {
	Target     []float64 `json:"target"`
	Quaternion []float64 `json:"quaternion,omitempty"`
	Joints     []float64 `json:"joints"`
	Mask       []int     `json:"mask,omitempty"`
}

// SolveResponse mirrors ik.Result on the wire. Joints is present only on
// success; Reason only on failure.
type SolveResponse struct {
	Success    bool      `json:"success"`
	Joints     []float64 `json:"joints,omitempty"`
	Iterations int       `json:"iterations"`
	Residual   float64   `json:"residual"`
	Reason     string    `json:"reason,omitempty"`
}

// PoseRequest is the body of POST /pose: forward kinematics of a joint
// configuration.
type PoseRequest struct {
	Joints []float64 `json:"joints"`
}

// PoseResponse carries the extracted pose, or available=false when the
// chain's terminal link cannot be resolved yet.
type PoseResponse struct {
	Available bool      `json:"available"`
	Pose      []float64 `json:"pose,omitempty"`
}

// NewSolveRequest encodes solver inputs into the wire shape.
func NewSolveRequest(target kinematics.Pose, seed robot.JointAngles, mask ik.AxisMask) SolveRequest {
	t := target.Array()
	m := mask.Ints()
	return SolveRequest{
		Target: append([]float64(nil), t[:]...),
		Joints: seed.Slice(),
		Mask:   append([]int(nil), m[:]...),
	}
}

// TargetPose decodes the request target, resolving a quaternion orientation
// to the fixed ZXY Euler convention when one is supplied.
func (r *SolveRequest) TargetPose() (kinematics.Pose, error) {
	if len(r.Target) != 6 {
		return kinematics.Pose{}, fmt.Errorf("%w: got %d", ErrBadPose, len(r.Target))
	}
	var arr [6]float64
	copy(arr[:], r.Target)
	pose := kinematics.PoseFromArray(arr)

	if r.Quaternion != nil {
		if len(r.Quaternion) != 4 {
			return kinematics.Pose{}, fmt.Errorf("%w: got %d", ErrBadQuat, len(r.Quaternion))
		}
		q := kinematics.Quat{
			X: r.Quaternion[0],
			Y: r.Quaternion[1],
			Z: r.Quaternion[2],
			W: r.Quaternion[3],
		}
		if !q.IsFinite() {
			return kinematics.Pose{}, fmt.Errorf("%w: non-finite", ErrBadQuat)
		}
		pose.RX, pose.RY, pose.RZ = kinematics.EulerFromQuat(q)
	}
	return pose, nil
}

// SeedJoints decodes the request seed configuration.
func (r *SolveRequest) SeedJoints() (robot.JointAngles, error) {
	if len(r.Joints) != robot.NumJoints {
		return robot.JointAngles{}, fmt.Errorf("%w: got %d", ErrBadJoints, len(r.Joints))
	}
	return robot.AnglesFromSlice(r.Joints)
}

// AxisMask decodes the request mask; an absent mask enables every axis.
func (r *SolveRequest) AxisMask() (ik.AxisMask, error) {
	if r.Mask == nil {
		return ik.AllAxes, nil
	}
	if len(r.Mask) != 6 {
		return ik.AxisMask{}, fmt.Errorf("%w: got %d elements", ErrBadMask, len(r.Mask))
	}
	var ints [6]int
	copy(ints[:], r.Mask)
	mask, err := ik.MaskFromInts(ints)
	if err != nil {
		return ik.AxisMask{}, fmt.Errorf("%w: %v", ErrBadMask, err)
	}
	return mask, nil
}

// NewSolveResponse encodes a solver result into the wire shape.
func NewSolveResponse(res ik.Result) SolveResponse {
	out := SolveResponse{
		Success:    res.Success,
		Iterations: res.Iterations,
		Residual:   res.Residual,
	}
	if res.Success {
		out.Joints = res.Joints.Slice()
	} else {
		out.Reason = res.Reason.String()
	}
	return out
}

// Result decodes a wire response back into an ik.Result.
func (r *SolveResponse) Result() (ik.Result, error) {
	out := ik.Result{
		Success:    r.Success,
		Iterations: r.Iterations,
		Residual:   r.Residual,
	}
	if r.Success {
		joints, err := robot.AnglesFromSlice(r.Joints)
		if err != nil {
			return ik.Result{}, fmt.Errorf("%w: %v", ErrBadJoints, err)
		}
		out.Joints = joints
		return out, nil
	}
	reason, err := ik.ReasonFromString(r.Reason)
	if err != nil {
		return ik.Result{}, err
	}
	out.Reason = reason
	return out, nil
}
