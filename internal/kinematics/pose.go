package kinematics

import "math"

// Pose is a Cartesian tool pose in the controller's frame: position in
// millimeters, orientation in degrees (ZXY Euler, controller convention).
type Pose struct {
	X, Y, Z    float64
	RX, RY, RZ float64
}

// Array returns the flat wire order [X, Y, Z, RX, RY, RZ].
func (p Pose) Array() [6]float64 {
	return [6]float64{p.X, p.Y, p.Z, p.RX, p.RY, p.RZ}
}

// PoseFromArray builds a Pose from the flat wire order.
func PoseFromArray(a [6]float64) Pose {
	return Pose{X: a[0], Y: a[1], Z: a[2], RX: a[3], RY: a[4], RZ: a[5]}
}

func (p Pose) IsFinite() bool {
	for _, f := range p.Array() {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Calibration constants mapping the chain's Y-up frame and raw ZXY angles to
// the robot controller's own pose convention. Determined empirically against
// the physical controller; treat as calibration data, not geometry.
const (
	rxSign, rySign, rzSign       = -1.0, -1.0, 1.0
	rxOffset, ryOffset, rzOffset = 0.0, 90.0, -180.0
)

// frameCorrection rotates the Y-up chain frame into the controller's Z-up
// frame. A fixed rotation about world X; the single place where the two
// coordinate systems meet.
var frameCorrection = FromAxisAngle(Vec3{X: 1}, 90)

// DefaultToolOffset is the tool center point offset from the terminal frame,
// millimeters.
var DefaultToolOffset = Vec3{X: 47, Y: 0, Z: -62}

// Extractor computes the tool center point pose of a chain. It is a pure
// read: the chain is never mutated. Cheap enough to call per frame and per
// solver iteration.
type Extractor struct {
	// ToolOffset is expressed in the terminal link's local frame, mm.
	ToolOffset Vec3
}

// NewExtractor returns an extractor with the default tool offset.
func NewExtractor() *Extractor {
	return &Extractor{ToolOffset: DefaultToolOffset}
}

// Pose resolves the chain's terminal transform and reports the tool pose in
// the controller frame. Returns ErrUnresolved (wrapped) when the terminal
// link cannot be resolved; callers should treat that as "try again later".
func (e *Extractor) Pose(c Chain) (Pose, error) {
	pos, rot, err := c.TerminalTransform()
	if err != nil {
		return Pose{}, err
	}

	// Tool point: link position (m -> mm) plus the rotated local offset.
	tool := pos.Scale(1000).Add(rot.Rotate(e.ToolOffset))
	tool = frameCorrection.Rotate(tool)

	rx, ry, rz := EulerZXY(frameCorrection.Mul(rot).Mat3())

	return Pose{
		X:  tool.X,
		Y:  tool.Y,
		Z:  tool.Z,
		RX: WrapDeg(rxSign*rx + rxOffset),
		RY: WrapDeg(rySign*ry + ryOffset),
		RZ: WrapDeg(rzSign*rz + rzOffset),
	}, nil
}
