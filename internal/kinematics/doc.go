// Package kinematics provides the geometric core for a serial revolute arm:
//
//   - [Vec3], [Quat]: minimal 3D vector and rotation primitives
//   - [Chain]: ordered revolute joints mapping joint angles to a terminal
//     world transform
//   - [Extractor]: forward kinematics of the tool center point, reported as
//     a [Pose] in the controller's frame (millimeters / degrees)
//
// Rotations are composed as quaternions internally. Euler angles appear only
// at the boundary, extracted in a fixed ZXY order with calibration offsets
// matching the robot controller's RX/RY/RZ definitions.
//
// # Gimbal lock
//
// ZXY extraction is singular where |sin(RX)| approaches 1. Near that
// configuration the decomposition is not unique and the extractor falls back
// to a conventional branch (RY = 0). Callers that sweep orientations through
// the singularity will observe the usual Euler discontinuity; this is part of
// the controller contract, not a defect to paper over.
package kinematics
