package kinematics

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Algorithm names an inverse kinematics strategy.
type Algorithm string

// Available algorithms.
const (
	AlgorithmJacobianTranspose     Algorithm = "jacobian_transpose"
	AlgorithmJacobianPseudoInverse Algorithm = "jacobian_pseudoinverse"
	AlgorithmGradientDescent       Algorithm = "gradient_descent"
	AlgorithmFABRIK                Algorithm = "fabrik"
)

// DefaultAlgorithm is used when a caller does not choose one.
// Damped least squares converges in the fewest iterations on typical arms.
const DefaultAlgorithm = AlgorithmJacobianPseudoInverse

// aliases accepts the short names used by older clients.
var aliases = map[string]Algorithm{
	"jt":                 AlgorithmJacobianTranspose,
	"transpose":          AlgorithmJacobianTranspose,
	"jpi":                AlgorithmJacobianPseudoInverse,
	"pinv":               AlgorithmJacobianPseudoInverse,
	"pseudoinverse":      AlgorithmJacobianPseudoInverse,
	"dls":                AlgorithmJacobianPseudoInverse,
	"sgd":                AlgorithmGradientDescent,
	"gd":                 AlgorithmGradientDescent,
	"jacobian_transpose": AlgorithmJacobianTranspose,
	"gradient_descent":   AlgorithmGradientDescent,
	"fabrik":             AlgorithmFABRIK,

	"jacobian_pseudoinverse": AlgorithmJacobianPseudoInverse,
}

// Algorithms lists every algorithm in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmJacobianTranspose,
		AlgorithmJacobianPseudoInverse,
		AlgorithmGradientDescent,
		AlgorithmFABRIK,
	}
}

// ParseAlgorithm resolves a full or short algorithm name, case-insensitively.
// An empty name yields DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultAlgorithm, nil
	}
	if alg, ok := aliases[name]; ok {
		return alg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Outcome is the terminal state of a solve.
type Outcome int

const (
	// Converged means the end effector is within tolerance of the target.
	Converged Outcome = iota
	// MaxIterationsReached means the budget ran out; the closest configuration is kept.
	MaxIterationsReached
	// Diverged means the distance stopped improving for Params.Patience iterations.
	Diverged
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max_iterations_reached"
	case Diverged:
		return "diverged"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Params bounds a single solve.
type Params struct {
	// MaxIterations is the iteration budget. Zero selects the solver default.
	MaxIterations int

	// Tolerance is the accepted end effector distance. Zero selects the solver default.
	Tolerance float64

	// Patience stops the solve as Diverged after this many iterations without
	// improvement. Zero disables the check.
	Patience int

	// OnIteration, when set, is called after every applied step.
	OnIteration func(iteration int, state State)
}

func (p Params) withDefaults(d Params) Params {
	if p.MaxIterations <= 0 {
		p.MaxIterations = d.MaxIterations
	}
	if p.Tolerance <= 0 {
		p.Tolerance = d.Tolerance
	}
	return p
}

// Result summarises a solve.
type Result struct {
	Algorithm  Algorithm     `json:"algorithm"`
	Outcome    Outcome       `json:"outcome"`
	Iterations int           `json:"iterations"`
	Distance   float64       `json:"distance"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Converged reports whether the target was reached.
func (r Result) Converged() bool {
	return r.Outcome == Converged
}

// Err returns ErrNotConverged or ErrDiverged for unsuccessful outcomes, nil otherwise.
// The arm keeps its best-effort configuration either way.
func (r Result) Err() error {
	switch r.Outcome {
	case MaxIterationsReached:
		return fmt.Errorf("%w: %s stopped %.4f from target after %d iterations",
			ErrNotConverged, r.Algorithm, r.Distance, r.Iterations)
	case Diverged:
		return fmt.Errorf("%w: %s stalled %.4f from target after %d iterations",
			ErrDiverged, r.Algorithm, r.Distance, r.Iterations)
	default:
		return nil
	}
}

// Solver moves an arm's end effector toward a target by iteratively updating
// its joint angles in place. Every applied step keeps all joints within their
// limits, so the arm is valid whatever the outcome.
//
// Solve fails only with ErrInvalidTarget, before touching the arm.
type Solver interface {
	Algorithm() Algorithm
	Defaults() Params
	Solve(arm *Arm, target r2.Vec, p Params) (Result, error)
}

// CheckTarget returns ErrInvalidTarget when either coordinate is not finite.
func CheckTarget(target r2.Vec) error {
	if !finite(target.X) || !finite(target.Y) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidTarget, target.X, target.Y)
	}
	return nil
}

// NewSolver returns a solver with default tuning for alg.
func NewSolver(alg Algorithm) (Solver, error) {
	switch alg {
	case AlgorithmJacobianTranspose:
		return NewJacobianTranspose(), nil
	case AlgorithmJacobianPseudoInverse:
		return NewJacobianPseudoInverse(), nil
	case AlgorithmGradientDescent:
		return NewGradientDescent(), nil
	case AlgorithmFABRIK:
		return NewFABRIK(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
	}
}

// improvementEpsilon is the smallest distance decrease that resets patience.
const improvementEpsilon = 1e-9

// iterate runs the loop shared by all solvers. step applies one update to the
// arm; it must clamp and recompute positions before returning.
func iterate(alg Algorithm, arm *Arm, target r2.Vec, p Params, step func()) (Result, error) {
	if err := CheckTarget(target); err != nil {
		return Result{Algorithm: alg, Outcome: MaxIterationsReached}, err
	}
	start := time.Now()
	res := Result{Algorithm: alg, Outcome: MaxIterationsReached}

	best := arm.DistanceTo(target)
	stalled := 0
	for it := 0; it < p.MaxIterations; it++ {
		if d := arm.DistanceTo(target); d <= p.Tolerance {
			res.Outcome = Converged
			break
		}

		step()
		res.Iterations = it + 1
		if p.OnIteration != nil {
			p.OnIteration(res.Iterations, arm.State())
		}

		if p.Patience > 0 {
			if d := arm.DistanceTo(target); d < best-improvementEpsilon {
				best = d
				stalled = 0
			} else if stalled++; stalled >= p.Patience {
				res.Outcome = Diverged
				break
			}
		}
	}

	res.Distance = arm.DistanceTo(target)
	if res.Outcome == MaxIterationsReached && res.Distance <= p.Tolerance {
		res.Outcome = Converged
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// limitStep scales delta so that no component exceeds max in magnitude.
// A non-finite component zeroes the whole step.
func limitStep(delta []float64, max float64) []float64 {
	for _, d := range delta {
		if !finite(d) {
			for i := range delta {
				delta[i] = 0
			}
			return delta
		}
	}
	if max <= 0 {
		return delta
	}
	var largest float64
	for _, d := range delta {
		if d < 0 {
			d = -d
		}
		if d > largest {
			largest = d
		}
	}
	if largest > max {
		scale := max / largest
		for i := range delta {
			delta[i] *= scale
		}
	}
	return delta
}

func addScaled(theta []float64, scale float64, delta []float64) []float64 {
	out := make([]float64, len(theta))
	for i := range theta {
		out[i] = theta[i] + scale*delta[i]
	}
	return out
}
