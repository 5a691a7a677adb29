package kinematics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// JacobianTranspose moves joints along Jᵀe, the direction of steepest descent
// of the squared end effector error. Steps use the adaptive gain
// α = ⟨e, JJᵀe⟩ / ‖JJᵀe‖², which shrinks as the error does, and are capped
// so no joint turns more than MaxStep radians per iteration.
type JacobianTranspose struct {
	MaxIterations int
	Tolerance     float64
	MaxStep       float64 // radians
}

// NewJacobianTranspose returns a solver with default tuning.
func NewJacobianTranspose() *JacobianTranspose {
	return &JacobianTranspose{
		MaxIterations: 1000,
		Tolerance:     0.01,
		MaxStep:       0.2,
	}
}

func (s *JacobianTranspose) Algorithm() Algorithm { return AlgorithmJacobianTranspose }

func (s *JacobianTranspose) Defaults() Params {
	return Params{MaxIterations: s.MaxIterations, Tolerance: s.Tolerance}
}

// Solve iterates until the end effector is within tolerance of target or the
// budget is spent.
func (s *JacobianTranspose) Solve(arm *Arm, target r2.Vec, p Params) (Result, error) {
	p = p.withDefaults(s.Defaults())
	return iterate(s.Algorithm(), arm, target, p, func() { s.step(arm, target) })
}

func (s *JacobianTranspose) step(arm *Arm, target r2.Vec) {
	j := jacobian(arm.positions)
	e := errorVec(arm.EndEffector(), target)

	var g, jg mat.VecDense
	g.MulVec(j.T(), e)
	jg.MulVec(j, &g)

	den := mat.Dot(&jg, &jg)
	if den < 1e-12 {
		return
	}
	alpha := mat.Dot(e, &jg) / den
	g.ScaleVec(alpha, &g)

	delta := limitStep(vecData(&g), s.MaxStep)
	arm.setAngles(addScaled(arm.anglesRad(), 1, delta))
}
