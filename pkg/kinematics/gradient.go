package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// GradientDescent minimises L(θ) = ‖FK(θ) − target‖² using a central finite
// difference gradient. Each iteration backtracks, halving the learning rate
// until the loss does not increase, and grows it again after an accepted step.
type GradientDescent struct {
	MaxIterations int
	Tolerance     float64
	MaxStep       float64 // radians

	LearningRate    float64
	MaxLearningRate float64
	Growth          float64
	Epsilon         float64 // finite difference step, radians
}

// NewGradientDescent returns a solver with default tuning.
func NewGradientDescent() *GradientDescent {
	return &GradientDescent{
		MaxIterations:   1500,
		Tolerance:       0.01,
		MaxStep:         0.2,
		LearningRate:    0.01,
		MaxLearningRate: 1.0,
		Growth:          1.1,
		Epsilon:         1e-6,
	}
}

// minLearningRate ends backtracking; the step is accepted as is below it.
const minLearningRate = 1e-9

func (s *GradientDescent) Algorithm() Algorithm { return AlgorithmGradientDescent }

func (s *GradientDescent) Defaults() Params {
	return Params{MaxIterations: s.MaxIterations, Tolerance: s.Tolerance}
}

// Solve iterates until the end effector is within tolerance of target or the
// budget is spent.
func (s *GradientDescent) Solve(arm *Arm, target r2.Vec, p Params) (Result, error) {
	p = p.withDefaults(s.Defaults())
	lr := s.LearningRate
	return iterate(s.Algorithm(), arm, target, p, func() {
		lr = s.step(arm, target, lr)
	})
}

func (s *GradientDescent) step(arm *Arm, target r2.Vec, lr float64) float64 {
	theta := arm.anglesRad()
	loss := func(angles []float64) float64 {
		d := r2.Sub(endEffector(arm.links, angles), target)
		return r2.Dot(d, d)
	}
	l0 := loss(theta)
	grad := s.gradient(theta, loss)

	for {
		cand := arm.clampAll(addScaled(theta, 1, limitStep(scaled(grad, -lr), s.MaxStep)))
		if loss(cand) <= l0 || lr < minLearningRate {
			arm.setAngles(cand)
			return math.Min(lr*s.Growth, s.MaxLearningRate)
		}
		lr *= 0.5
	}
}

func (s *GradientDescent) gradient(theta []float64, loss func([]float64) float64) []float64 {
	grad := make([]float64, len(theta))
	shifted := make([]float64, len(theta))
	for i := range theta {
		copy(shifted, theta)
		shifted[i] = theta[i] + s.Epsilon
		up := loss(shifted)
		shifted[i] = theta[i] - s.Epsilon
		down := loss(shifted)
		grad[i] = (up - down) / (2 * s.Epsilon)
	}
	return grad
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = k * v[i]
	}
	return out
}
