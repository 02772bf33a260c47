package ik

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
)

// Params tunes the damped least squares iteration. Zero values are not
// meaningful; start from DefaultParams.
type Params struct {
	// MaxIterations caps the iteration loop. Together with the 7 pose
	// evaluations per iteration (1 baseline + 6 perturbations) this is the
	// primary performance lever.
	MaxIterations int

	// Tolerance is the weighted masked error norm below which a solve
	// converges.
	Tolerance float64

	// Damping is the initial lambda of (J*Jt + lambda^2*I). Lambda adapts
	// during the solve: it shrinks toward Gauss-Newton steps while
	// iterations keep reducing the residual and grows when a step fails
	// to, so a stiff start still converges quickly once the iterate is in
	// the target's basin.
	Damping float64

	// FDEpsilon is the joint perturbation, degrees, for the
	// finite-difference Jacobian.
	FDEpsilon float64

	// MaxStep clamps the per-joint step magnitude per iteration, degrees,
	// preventing divergence on large initial errors.
	MaxStep float64

	// OrientationWeight scales orientation error (degrees) relative to
	// position error (mm). Raw mm and degrees are not commensurate; the
	// scale is explicit rather than implied.
	OrientationWeight float64

	// OutOfReachDistance is the masked position error, mm, beyond which an
	// exhausted solve is classified as out of reach.
	OutOfReachDistance float64

	// SingularStreak is how many consecutive near-singular iterations
	// without position progress classify an exhausted solve as singular.
	SingularStreak int

	// CondLimit is the Jacobian condition estimate above which an
	// iteration counts as near-singular.
	CondLimit float64
}

// DefaultParams returns the tuning used by the interactive front end.
func DefaultParams() Params {
	return Params{
		MaxIterations:      100,
		Tolerance:          0.5,
		Damping:            1.0,
		FDEpsilon:          0.25,
		MaxStep:            15,
		OrientationWeight:  1.0,
		OutOfReachDistance: 50,
		SingularStreak:     5,
		CondLimit:          1e6,
	}
}

// Damping adaptation bounds and factors. At lambdaMin the step is close to
// pure Gauss-Newton; lambdaMax keeps a stiffened step finite near
// singularities.
const (
	lambdaMin    = 1e-3
	lambdaMax    = 1e3
	lambdaShrink = 1.0 / 3.0
	lambdaGrow   = 4.0
	lambdaTries  = 8
)

// Solver finds joint configurations whose extracted pose matches a target on
// the enabled axes. Solves are deterministic and leave the caller's chain
// untouched: the solver works on a private clone.
type Solver struct {
	params    Params
	extractor *kinematics.Extractor
	limits    [robot.NumJoints]robot.Limit
}

// New builds a solver for a given extractor and limit table.
func New(extractor *kinematics.Extractor, limits [robot.NumJoints]robot.Limit, params Params) *Solver {
	return &Solver{params: params, extractor: extractor, limits: limits}
}

// NewDefault builds a solver with the default tool offset, the controller's
// static limit table, and default tuning.
func NewDefault() *Solver {
	return New(kinematics.NewExtractor(), robot.Limits, DefaultParams())
}

// Params returns the solver's tuning.
func (s *Solver) Params() Params {
	return s.params
}

// Solve runs one damped least squares solve seeded from seed. The seed is
// clamped into limits before iterating, and every intermediate configuration
// stays within limits, so the solver never explores a physically invalid
// configuration.
func (s *Solver) Solve(chain kinematics.Chain, seed robot.JointAngles, target kinematics.Pose, mask AxisMask) Result {
	return s.solve(chain, seed, target, mask, nil)
}

// SolveTraced is Solve plus a per-iteration trace for diagnostics.
func (s *Solver) SolveTraced(chain kinematics.Chain, seed robot.JointAngles, target kinematics.Pose, mask AxisMask) (Result, *Trace) {
	trace := &Trace{}
	res := s.solve(chain, seed, target, mask, trace)
	return res, trace
}

func (s *Solver) solve(chain kinematics.Chain, seed robot.JointAngles, target kinematics.Pose, mask AxisMask, trace *Trace) Result {
	if !target.IsFinite() || !seed.IsFinite() || len(chain.Joints) != robot.NumJoints {
		return Result{Reason: ReasonInvalidInput}
	}

	joints := s.clamp(seed)
	if !mask.Any() {
		// Nothing to drive: the seed already satisfies an empty constraint.
		return Result{Success: true, Joints: joints}
	}

	enabled := enabledAxes(mask)
	work := chain.Clone()
	lambda := s.params.Damping

	streak := 0
	prevPosErr := math.Inf(1)
	var residual, posErr float64

	for it := 1; it <= s.params.MaxIterations; it++ {
		if err := work.SetAngles(joints.Slice()); err != nil {
			return Result{Iterations: it - 1, Reason: ReasonInvalidInput}
		}
		cur, err := s.extractor.Pose(work)
		if err != nil {
			return Result{Iterations: it - 1, Reason: ReasonInvalidInput}
		}

		errVec := s.poseError(target, cur)
		reduced := selectAxes(errVec, enabled)
		residual = norm(reduced)
		posErr = maskedPositionError(errVec, mask)

		if residual < s.params.Tolerance {
			return Result{Success: true, Joints: joints, Iterations: it, Residual: residual}
		}

		jac, jerr := s.jacobian(&work, joints, cur, enabled)
		if jerr != nil {
			return Result{Iterations: it, Residual: residual, Reason: ReasonInvalidInput}
		}

		cond := conditionEstimate(jac)
		progressing := posErr < prevPosErr-1e-9
		if cond > s.params.CondLimit && !progressing {
			streak++
		} else {
			streak = 0
		}
		prevPosErr = posErr

		// Levenberg-Marquardt damping update: take the step at the current
		// lambda only if it reduces the residual; otherwise stiffen and
		// retry against the same Jacobian. Purely multiplicative, so solves
		// stay deterministic.
		accepted := false
		clamped := 0
		for try := 0; try < lambdaTries; try++ {
			step, ok := dlsStep(jac, reduced, lambda*lambda)
			if !ok {
				lambda = math.Min(lambda*lambdaGrow, lambdaMax)
				continue
			}

			cand := joints
			candClamped := 0
			for i := range cand {
				d := step[i]
				if d > s.params.MaxStep {
					d = s.params.MaxStep
				} else if d < -s.params.MaxStep {
					d = -s.params.MaxStep
				}
				next := cand[i] + d
				pinned := s.limits[i].Clamp(next)
				if pinned != next {
					candClamped++
				}
				cand[i] = pinned
			}

			candResidual, rerr := s.residualAt(&work, cand, target, enabled)
			if rerr != nil {
				return Result{Iterations: it, Residual: residual, Reason: ReasonInvalidInput}
			}
			if candResidual < residual {
				joints = cand
				clamped = candClamped
				lambda = math.Max(lambda*lambdaShrink, lambdaMin)
				accepted = true
				break
			}
			lambda = math.Min(lambda*lambdaGrow, lambdaMax)
		}
		if !accepted {
			// No damping level produced a descending step; the
			// configuration stays and the iteration counts as degenerate.
			streak++
		}

		if trace != nil {
			trace.Samples = append(trace.Samples, IterSample{
				Iteration: it,
				Residual:  residual,
				PosError:  posErr,
				Cond:      cond,
				Clamped:   clamped,
			})
		}
	}

	reason := ReasonDidNotConverge
	switch {
	case posErr > s.params.OutOfReachDistance:
		reason = ReasonOutOfReach
	case streak >= s.params.SingularStreak:
		reason = ReasonSingular
	}
	return Result{Iterations: s.params.MaxIterations, Residual: residual, Reason: reason}
}

// residualAt evaluates the masked residual norm at a candidate configuration.
func (s *Solver) residualAt(work *kinematics.Chain, joints robot.JointAngles, target kinematics.Pose, enabled []int) (float64, error) {
	if err := work.SetAngles(joints.Slice()); err != nil {
		return 0, err
	}
	pose, err := s.extractor.Pose(*work)
	if err != nil {
		return 0, err
	}
	return norm(selectAxes(s.poseError(target, pose), enabled)), nil
}

func (s *Solver) clamp(a robot.JointAngles) robot.JointAngles {
	for i := range a {
		a[i] = s.limits[i].Clamp(a[i])
	}
	return a
}

// poseError is target minus current per axis: mm for position, weighted
// wrapped degrees for orientation.
func (s *Solver) poseError(target, cur kinematics.Pose) [6]float64 {
	w := s.params.OrientationWeight
	return [6]float64{
		target.X - cur.X,
		target.Y - cur.Y,
		target.Z - cur.Z,
		kinematics.AngleDiff(target.RX, cur.RX) * w,
		kinematics.AngleDiff(target.RY, cur.RY) * w,
		kinematics.AngleDiff(target.RZ, cur.RZ) * w,
	}
}

// jacobian estimates d(pose)/d(joint) by central-free forward differences:
// one extra pose evaluation per joint. Rows are restricted to the enabled
// axes. Every perturbation is restored before the function returns, also on
// error paths, so the working chain is never left perturbed.
func (s *Solver) jacobian(work *kinematics.Chain, joints robot.JointAngles, base kinematics.Pose, enabled []int) (*mat.Dense, error) {
	eps := s.params.FDEpsilon
	w := s.params.OrientationWeight
	jac := mat.NewDense(len(enabled), robot.NumJoints, nil)

	for j := 0; j < robot.NumJoints; j++ {
		if err := work.SetAngle(j, joints[j]+eps); err != nil {
			return nil, err
		}
		perturbed, err := s.extractor.Pose(*work)
		if restoreErr := work.SetAngle(j, joints[j]); restoreErr != nil {
			return nil, restoreErr
		}
		if err != nil {
			return nil, err
		}

		col := [6]float64{
			(perturbed.X - base.X) / eps,
			(perturbed.Y - base.Y) / eps,
			(perturbed.Z - base.Z) / eps,
			kinematics.AngleDiff(perturbed.RX, base.RX) * w / eps,
			kinematics.AngleDiff(perturbed.RY, base.RY) * w / eps,
			kinematics.AngleDiff(perturbed.RZ, base.RZ) * w / eps,
		}
		for r, axis := range enabled {
			jac.Set(r, j, col[axis])
		}
	}
	return jac, nil
}

// dlsStep solves delta = Jt * (J*Jt + lambda^2*I)^-1 * e. The damped normal
// matrix is symmetric positive definite for lambda > 0, so Cholesky applies.
func dlsStep(jac *mat.Dense, e []float64, lambda2 float64) ([robot.NumJoints]float64, bool) {
	var step [robot.NumJoints]float64
	m, _ := jac.Dims()

	var jjt mat.Dense
	jjt.Mul(jac, jac.T())

	normal := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			v := jjt.At(i, j)
			if i == j {
				v += lambda2
			}
			normal.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(normal); !ok {
		return step, false
	}
	y := mat.NewVecDense(m, nil)
	if err := chol.SolveVecTo(y, mat.NewVecDense(m, e)); err != nil {
		return step, false
	}

	var delta mat.VecDense
	delta.MulVec(jac.T(), y)
	for i := 0; i < robot.NumJoints; i++ {
		step[i] = delta.AtVec(i)
	}
	return step, true
}

// conditionEstimate is the ratio of extreme singular values of the reduced
// Jacobian; +Inf when the smallest vanishes or the factorization fails.
func conditionEstimate(jac *mat.Dense) float64 {
	var svd mat.SVD
	if ok := svd.Factorize(jac, mat.SVDNone); !ok {
		return math.Inf(1)
	}
	vals := svd.Values(nil)
	if len(vals) == 0 {
		return math.Inf(1)
	}
	smallest := vals[len(vals)-1]
	if smallest < 1e-12 {
		return math.Inf(1)
	}
	return vals[0] / smallest
}

func enabledAxes(mask AxisMask) []int {
	out := make([]int, 0, 6)
	for i, b := range mask {
		if b {
			out = append(out, i)
		}
	}
	return out
}

func selectAxes(full [6]float64, enabled []int) []float64 {
	out := make([]float64, len(enabled))
	for i, axis := range enabled {
		out[i] = full[axis]
	}
	return out
}

func maskedPositionError(errVec [6]float64, mask AxisMask) float64 {
	sum := 0.0
	for i := 0; i < 3; i++ {
		if mask[i] {
			sum += errVec[i] * errVec[i]
		}
	}
	return math.Sqrt(sum)
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
