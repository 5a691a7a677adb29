package kinematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// JacobianPseudoInverse solves with damped least squares,
// Δθ = Jᵀ(JJᵀ + λ²I)⁻¹e, which stays well-conditioned near singular poses.
//
// The damping adapts in the Levenberg-Marquardt manner: a step is applied only
// when it brings the end effector closer to the target, after which λ halves.
// Otherwise λ doubles and the step is retried, up to Retries times. An
// iteration that finds no improving step leaves the arm unchanged.
type JacobianPseudoInverse struct {
	MaxIterations int
	Tolerance     float64
	MaxStep       float64 // radians

	Damping    float64
	MinDamping float64
	MaxDamping float64
	Retries    int
}

// NewJacobianPseudoInverse returns a solver with default tuning.
func NewJacobianPseudoInverse() *JacobianPseudoInverse {
	return &JacobianPseudoInverse{
		MaxIterations: 250,
		Tolerance:     0.01,
		MaxStep:       0.5,
		Damping:       0.5,
		MinDamping:    0.01,
		MaxDamping:    100,
		Retries:       12,
	}
}

func (s *JacobianPseudoInverse) Algorithm() Algorithm { return AlgorithmJacobianPseudoInverse }

func (s *JacobianPseudoInverse) Defaults() Params {
	return Params{MaxIterations: s.MaxIterations, Tolerance: s.Tolerance}
}

// Solve iterates until the end effector is within tolerance of target or the
// budget is spent. Damping state is local to the call.
func (s *JacobianPseudoInverse) Solve(arm *Arm, target r2.Vec, p Params) (Result, error) {
	p = p.withDefaults(s.Defaults())
	lambda := s.Damping
	return iterate(s.Algorithm(), arm, target, p, func() {
		lambda = s.step(arm, target, lambda)
	})
}

// step tries damped steps with increasing λ until one reduces the distance.
// It returns the damping to use for the next iteration.
func (s *JacobianPseudoInverse) step(arm *Arm, target r2.Vec, lambda float64) float64 {
	d0 := arm.DistanceTo(target)
	theta := arm.anglesRad()
	j := jacobian(arm.positions)
	e := errorVec(arm.EndEffector(), target)

	for try := 0; try < s.Retries; try++ {
		delta, err := dampedStep(j, e, lambda)
		if err == nil {
			cand := arm.clampAll(addScaled(theta, 1, limitStep(delta, s.MaxStep)))
			if r2.Norm(r2.Sub(target, endEffector(arm.links, cand))) < d0 {
				arm.setAngles(cand)
				return math.Max(lambda/2, s.MinDamping)
			}
		}
		lambda = math.Min(lambda*2, s.MaxDamping)
	}
	return lambda
}

// dampedStep computes Jᵀ(JJᵀ + λ²I)⁻¹e.
func dampedStep(j *mat.Dense, e *mat.VecDense, lambda float64) ([]float64, error) {
	var a mat.Dense
	a.Mul(j, j.T())
	l2 := lambda * lambda
	a.Set(0, 0, a.At(0, 0)+l2)
	a.Set(1, 1, a.At(1, 1)+l2)

	var y mat.VecDense
	if err := y.SolveVec(&a, e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNumericalInstability, err)
	}
	var delta mat.VecDense
	delta.MulVec(j.T(), &y)

	out := vecData(&delta)
	for _, v := range out {
		if !finite(v) {
			return nil, ErrNumericalInstability
		}
	}
	return out, nil
}
