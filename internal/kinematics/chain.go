package kinematics

import (
	"errors"
	"fmt"
)

// Domain errors for chain evaluation.
var (
	// ErrUnresolved means the chain's terminal link cannot be evaluated yet
	// (empty chain or a joint with a degenerate axis). Transient from the
	// caller's point of view: retry once the chain is fully described.
	ErrUnresolved = errors.New("kinematics: terminal link unresolved")

	// ErrDimension means a joint-angle slice does not match the chain.
	ErrDimension = errors.New("kinematics: angle count does not match chain")
)

// Joint is one revolute joint of a serial chain: a fixed translation from
// the parent frame followed by a rotation about a fixed local axis.
type Joint struct {
	Name   string
	Origin Vec3    // meters, in the parent frame
	Axis   Vec3    // unit rotation axis, local frame
	Angle  float64 // degrees
}

// Chain is an ordered serial chain of revolute joints. The chain's native
// frame is Y-up (viewport convention); the pose extractor converts to the
// controller's Z-up frame at the boundary.
//
// Chain is a value type: Clone before handing it to anything that sets
// angles if the original must stay untouched.
type Chain struct {
	Joints []Joint
}

// Clone returns a deep copy sharing no state with c.
func (c Chain) Clone() Chain {
	joints := make([]Joint, len(c.Joints))
	copy(joints, c.Joints)
	return Chain{Joints: joints}
}

// Angles returns the current joint angles in order, degrees.
func (c Chain) Angles() []float64 {
	out := make([]float64, len(c.Joints))
	for i := range c.Joints {
		out[i] = c.Joints[i].Angle
	}
	return out
}

// SetAngles replaces every joint angle. The slice length must match.
func (c *Chain) SetAngles(angles []float64) error {
	if len(angles) != len(c.Joints) {
		return fmt.Errorf("%w: got %d, chain has %d", ErrDimension, len(angles), len(c.Joints))
	}
	for i := range c.Joints {
		c.Joints[i].Angle = angles[i]
	}
	return nil
}

// SetAngle replaces a single joint angle by index.
func (c *Chain) SetAngle(i int, angle float64) error {
	if i < 0 || i >= len(c.Joints) {
		return fmt.Errorf("%w: joint index %d", ErrDimension, i)
	}
	c.Joints[i].Angle = angle
	return nil
}

// TerminalTransform resolves the world position (meters) and orientation of
// the last link by composing every joint transform in order. Returns
// ErrUnresolved when the chain cannot be evaluated.
func (c Chain) TerminalTransform() (Vec3, Quat, error) {
	if len(c.Joints) == 0 {
		return Vec3{}, Identity(), ErrUnresolved
	}

	pos := Vec3{}
	rot := Identity()
	for i := range c.Joints {
		j := &c.Joints[i]
		if _, ok := j.Axis.Normalized(); !ok {
			return Vec3{}, Identity(), fmt.Errorf("%w: joint %d has zero axis", ErrUnresolved, i)
		}
		pos = pos.Add(rot.Rotate(j.Origin))
		rot = rot.Mul(FromAxisAngle(j.Axis, j.Angle))
	}
	return pos, rot.Normalized(), nil
}
