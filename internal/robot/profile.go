// Package robot describes the 6-axis arm: joint identifiers, static limits,
// the home configuration, and the kinematic profile the solver runs against.
package robot

import (
	"fmt"
	"math"

	"github.com/san-kum/armkin/internal/kinematics"
)

// NumJoints is fixed: the arm is a 6-axis serial chain, J1..J6.
const NumJoints = 6

// JointAngles is an ordered joint configuration in degrees, J1 first.
type JointAngles [NumJoints]float64

// Slice copies the angles into a fresh slice.
func (a JointAngles) Slice() []float64 {
	out := make([]float64, NumJoints)
	copy(out, a[:])
	return out
}

// AnglesFromSlice converts a 6-element slice into JointAngles.
func AnglesFromSlice(s []float64) (JointAngles, error) {
	var a JointAngles
	if len(s) != NumJoints {
		return a, fmt.Errorf("robot: expected %d joint angles, got %d", NumJoints, len(s))
	}
	copy(a[:], s)
	return a, nil
}

func (a JointAngles) IsFinite() bool {
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Limit is a static per-joint range in degrees.
type Limit struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Clamp pins v into the limit range.
func (l Limit) Clamp(v float64) float64 {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// Limits is the controller's static joint limit table, degrees.
var Limits = [NumJoints]Limit{
	{Min: -123.046875, Max: 123.046875}, // J1
	{Min: -145.0088, Max: -3.375},       // J2
	{Min: 107.866, Max: 287.8675},       // J3
	{Min: -105.46975, Max: 105.46975},   // J4
	{Min: -90, Max: 90},                 // J5
	{Min: 0, Max: 360},                  // J6
}

// Clamp returns a with every joint pinned into its static limit.
func Clamp(a JointAngles) JointAngles {
	for i := range a {
		a[i] = Limits[i].Clamp(a[i])
	}
	return a
}

// InLimits reports whether every joint is within its static limit.
func InLimits(a JointAngles) bool {
	for i, v := range a {
		if v < Limits[i].Min || v > Limits[i].Max {
			return false
		}
	}
	return true
}

// Home is the arm's parked configuration.
func Home() JointAngles {
	return JointAngles{0, -90, 180, 0, 0, 180}
}

// JointSpec describes one joint of a profile: geometry plus limits.
type JointSpec struct {
	Name   string     `yaml:"name"`
	Origin [3]float64 `yaml:"origin"` // meters, parent frame
	Axis   [3]float64 `yaml:"axis"`   // local rotation axis
	Min    float64    `yaml:"min"`
	Max    float64    `yaml:"max"`
	Home   float64    `yaml:"home"`
}

// Profile is a full arm description: chain geometry, limits, tool offset.
// Profiles are plain data and yaml-serializable so alternative arms can be
// loaded from configuration.
type Profile struct {
	Name       string      `yaml:"name"`
	Joints     []JointSpec `yaml:"joints"`
	ToolOffset [3]float64  `yaml:"tool_offset"` // mm, terminal frame
}

// DefaultProfile is the stock 6-axis arm matching the controller's limit
// table and home configuration. Link lengths are the nominal arm geometry in
// the chain's native Y-up frame, meters.
func DefaultProfile() *Profile {
	home := Home()
	specs := []JointSpec{
		{Name: "J1", Origin: [3]float64{0, 0.0985, 0}, Axis: [3]float64{0, 1, 0}},
		{Name: "J2", Origin: [3]float64{0, 0.0405, 0}, Axis: [3]float64{1, 0, 0}},
		{Name: "J3", Origin: [3]float64{0, 0.210, 0}, Axis: [3]float64{1, 0, 0}},
		{Name: "J4", Origin: [3]float64{0, 0.0415, 0}, Axis: [3]float64{0, 1, 0}},
		{Name: "J5", Origin: [3]float64{0, 0.180, 0}, Axis: [3]float64{1, 0, 0}},
		{Name: "J6", Origin: [3]float64{0, 0.0615, 0}, Axis: [3]float64{0, 1, 0}},
	}
	for i := range specs {
		specs[i].Min = Limits[i].Min
		specs[i].Max = Limits[i].Max
		specs[i].Home = home[i]
	}
	return &Profile{
		Name:       "arm6",
		Joints:     specs,
		ToolOffset: [3]float64{kinematics.DefaultToolOffset.X, kinematics.DefaultToolOffset.Y, kinematics.DefaultToolOffset.Z},
	}
}

// Validate checks the profile is a usable 6-axis description.
func (p *Profile) Validate() error {
	if len(p.Joints) != NumJoints {
		return fmt.Errorf("robot: profile %q has %d joints, need %d", p.Name, len(p.Joints), NumJoints)
	}
	for i, j := range p.Joints {
		axis := kinematics.Vec3{X: j.Axis[0], Y: j.Axis[1], Z: j.Axis[2]}
		if _, ok := axis.Normalized(); !ok {
			return fmt.Errorf("robot: joint %d (%s) has zero axis", i, j.Name)
		}
		if j.Min > j.Max {
			return fmt.Errorf("robot: joint %d (%s) has min > max", i, j.Name)
		}
	}
	return nil
}

// Chain builds a kinematic chain at the profile's home configuration.
func (p *Profile) Chain() (kinematics.Chain, error) {
	if err := p.Validate(); err != nil {
		return kinematics.Chain{}, err
	}
	joints := make([]kinematics.Joint, len(p.Joints))
	for i, j := range p.Joints {
		joints[i] = kinematics.Joint{
			Name:   j.Name,
			Origin: kinematics.Vec3{X: j.Origin[0], Y: j.Origin[1], Z: j.Origin[2]},
			Axis:   kinematics.Vec3{X: j.Axis[0], Y: j.Axis[1], Z: j.Axis[2]},
			Angle:  j.Home,
		}
	}
	return kinematics.Chain{Joints: joints}, nil
}

// LimitTable returns the profile's per-joint limits in order.
func (p *Profile) LimitTable() [NumJoints]Limit {
	var out [NumJoints]Limit
	for i := 0; i < NumJoints && i < len(p.Joints); i++ {
		out[i] = Limit{Min: p.Joints[i].Min, Max: p.Joints[i].Max}
	}
	return out
}

// HomeAngles returns the profile's home configuration.
func (p *Profile) HomeAngles() JointAngles {
	var a JointAngles
	for i := 0; i < NumJoints && i < len(p.Joints); i++ {
		a[i] = p.Joints[i].Home
	}
	return a
}

// Extractor returns a pose extractor configured with the profile's tool
// offset.
func (p *Profile) Extractor() *kinematics.Extractor {
	return &kinematics.Extractor{ToolOffset: kinematics.Vec3{
		X: p.ToolOffset[0], Y: p.ToolOffset[1], Z: p.ToolOffset[2],
	}}
}
