package ik

import (
	"fmt"

	"github.com/san-kum/armkin/internal/robot"
)

// Reason classifies a failed solve. Iteration-cap exhaustion is always
// classified; a non-converged configuration is never passed off as a result.
type Reason int

const (
	ReasonNone Reason = iota

	// ReasonOutOfReach: the final masked position error stayed beyond the
	// reach threshold; the target is plainly outside the workspace.
	ReasonOutOfReach

	// ReasonSingular: the Jacobian stayed near-singular for several
	// consecutive iterations without position progress (degenerate
	// configuration, e.g. a wrist-aligned singularity).
	ReasonSingular

	// ReasonInvalidInput: non-finite target or structurally invalid seed;
	// returned without iterating.
	ReasonInvalidInput

	// ReasonDidNotConverge: ran out of iterations while still making some
	// progress.
	ReasonDidNotConverge
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonOutOfReach:
		return "out_of_reach"
	case ReasonSingular:
		return "singular"
	case ReasonInvalidInput:
		return "invalid_input"
	case ReasonDidNotConverge:
		return "did_not_converge"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// ReasonFromString parses the wire form of a failure reason.
func ReasonFromString(s string) (Reason, error) {
	switch s {
	case "":
		return ReasonNone, nil
	case "out_of_reach":
		return ReasonOutOfReach, nil
	case "singular":
		return ReasonSingular, nil
	case "invalid_input":
		return ReasonInvalidInput, nil
	case "did_not_converge":
		return ReasonDidNotConverge, nil
	}
	return ReasonNone, fmt.Errorf("ik: unknown failure reason %q", s)
}

// Result is the outcome of one solve. Joints is meaningful only when
// Success is true; Reason only when it is false. Residual is the weighted
// masked error norm at the last evaluated configuration.
type Result struct {
	Success    bool
	Joints     robot.JointAngles
	Iterations int
	Residual   float64
	Reason     Reason
}

// IterSample records one iteration for diagnostics and plotting.
type IterSample struct {
	Iteration int
	Residual  float64
	PosError  float64 // masked position error, mm
	Cond      float64 // Jacobian condition estimate
	Clamped   int     // joints pinned to a limit this iteration
}

// Trace is the per-iteration history of a solve.
type Trace struct {
	Samples []IterSample
}

// Residuals extracts the residual series, oldest first.
func (t *Trace) Residuals() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Residual
	}
	return out
}
