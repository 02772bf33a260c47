package ik

import (
	"fmt"
	"strings"
)

// axisNames is the fixed Cartesian axis order shared with the wire format.
var axisNames = [6]string{"X", "Y", "Z", "RX", "RY", "RZ"}

// AxisMask selects which Cartesian degrees of freedom a solve must satisfy.
// Disabled axes contribute nothing to the step or the convergence check,
// leaving them free as slack.
type AxisMask [6]bool

// AllAxes enables every degree of freedom.
var AllAxes = AxisMask{true, true, true, true, true, true}

// PositionOnly enables X, Y, Z and leaves orientation free.
var PositionOnly = AxisMask{true, true, true, false, false, false}

// Any reports whether at least one axis is enabled.
func (m AxisMask) Any() bool {
	for _, b := range m {
		if b {
			return true
		}
	}
	return false
}

// Count returns the number of enabled axes.
func (m AxisMask) Count() int {
	n := 0
	for _, b := range m {
		if b {
			n++
		}
	}
	return n
}

// Ints returns the wire form: 6 ints of 0/1.
func (m AxisMask) Ints() [6]int {
	var out [6]int
	for i, b := range m {
		if b {
			out[i] = 1
		}
	}
	return out
}

// MaskFromInts parses the wire form. Values other than 0 or 1 are rejected.
func MaskFromInts(v [6]int) (AxisMask, error) {
	var m AxisMask
	for i, x := range v {
		switch x {
		case 0:
		case 1:
			m[i] = true
		default:
			return AxisMask{}, fmt.Errorf("ik: mask element %d must be 0 or 1, got %d", i, x)
		}
	}
	return m, nil
}

func (m AxisMask) String() string {
	var on []string
	for i, b := range m {
		if b {
			on = append(on, axisNames[i])
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, "+")
}
