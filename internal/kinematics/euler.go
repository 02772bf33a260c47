package kinematics

import "math"

// gimbalEps bounds |sin(rx)| beyond which the ZXY decomposition is treated
// as degenerate and the RY=0 branch is taken.
const gimbalEps = 1 - 1e-7

// EulerZXY decomposes a rotation matrix as R = Rz(rz) * Rx(rx) * Ry(ry) and
// returns the angles in degrees. The order is fixed: changing it changes the
// decomposition, so every boundary in this module uses ZXY.
//
// At gimbal lock (|sin(rx)| ~ 1) the split between rz and ry is not unique;
// the fallback picks ry = 0 and folds the remaining rotation into rz.
func EulerZXY(m [3][3]float64) (rx, ry, rz float64) {
	sx := m[2][1]
	if sx > 1 {
		sx = 1
	} else if sx < -1 {
		sx = -1
	}
	rx = Degrees(math.Asin(sx))

	if math.Abs(sx) < gimbalEps {
		ry = Degrees(math.Atan2(-m[2][0], m[2][2]))
		rz = Degrees(math.Atan2(-m[0][1], m[1][1]))
		return rx, ry, rz
	}

	// Degenerate: rz and ry rotate about the same world axis. With ry
	// pinned to zero the remaining rotation folds into rz.
	ry = 0
	if sx > 0 {
		rz = Degrees(math.Atan2(m[0][2], m[0][0]))
	} else {
		rz = Degrees(math.Atan2(-m[0][2], m[0][0]))
	}
	return rx, ry, rz
}

// EulerFromQuat decomposes a unit quaternion in the fixed ZXY order.
func EulerFromQuat(q Quat) (rx, ry, rz float64) {
	return EulerZXY(q.Normalized().Mat3())
}

// WrapDeg normalizes an angle in degrees to (-180, 180].
func WrapDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// AngleDiff returns the shortest signed angular distance a-b in degrees.
func AngleDiff(a, b float64) float64 {
	return WrapDeg(a - b)
}
