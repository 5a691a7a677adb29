// Package arm serialises access to a kinematic arm.
//
// A Controller owns one kinematics.Arm. Joint commands and solves take a
// write lock; state reads take a read lock, so callers always observe
// positions that match the angles. Observers registered with OnChange are
// called after every mutation, outside the arm lock and in mutation order.
package arm

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-planar-arm/internal/log"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
	"github.com/teslashibe/go-planar-arm/pkg/metrics"
)

// Policy decides what a joint command beyond a limit does.
type Policy string

const (
	// PolicyReject refuses the command and leaves the arm unchanged.
	PolicyReject Policy = "reject"
	// PolicyClamp moves the joint as far as its limit allows.
	PolicyClamp Policy = "clamp"
)

// ParsePolicy validates a policy name. Empty selects PolicyReject.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyClamp:
		return PolicyClamp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Options configures a Controller.
type Options struct {
	Policy    Policy
	Algorithm kinematics.Algorithm // default for MoveTo, empty means kinematics.DefaultAlgorithm

	// Params override solver defaults when non-zero.
	Params kinematics.Params

	Logger *slog.Logger
}

// Controller is a thread-safe handle on an Arm.
type Controller struct {
	mu  sync.RWMutex
	arm *kinematics.Arm

	policy    Policy
	algorithm kinematics.Algorithm
	params    kinematics.Params
	solvers   map[kinematics.Algorithm]kinematics.Solver

	seq uint64 // mutation count, guarded by mu

	obsMu     sync.RWMutex
	observers []func(kinematics.State)

	notifyMu sync.Mutex
	notified uint64 // last seq delivered to observers

	log *slog.Logger
}

// NewController wraps a. The controller takes ownership; a must not be used
// directly afterwards.
func NewController(a *kinematics.Arm, opts Options) (*Controller, error) {
	policy, err := ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	alg, err := kinematics.ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}

	solvers := make(map[kinematics.Algorithm]kinematics.Solver)
	for _, name := range kinematics.Algorithms() {
		s, err := kinematics.NewSolver(name)
		if err != nil {
			return nil, err
		}
		solvers[name] = s
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.For("controller")
	}

	return &Controller{
		arm:       a,
		policy:    policy,
		algorithm: alg,
		params:    opts.Params,
		solvers:   solvers,
		log:       logger,
	}, nil
}

// Policy returns the manual control policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Algorithm returns the default solver used by MoveTo.
func (c *Controller) Algorithm() kinematics.Algorithm {
	return c.algorithm
}

// OnChange registers fn to be called with the new state after each mutation.
// Calls are serialised and never deliver an older state after a newer one,
// so fn must not mutate the controller.
func (c *Controller) OnChange(fn func(kinematics.State)) {
	c.obsMu.Lock()
	c.observers = append(c.observers, fn)
	c.obsMu.Unlock()
}

// State returns a consistent snapshot of positions and angles.
func (c *Controller) State() kinematics.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arm.State()
}

// Joints returns the number of joints.
func (c *Controller) Joints() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arm.Joints()
}

// Limits returns the joint limits in degrees.
func (c *Controller) Limits() []kinematics.Limit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arm.Limits()
}

// ChangeJoint moves joint index by delta degrees.
//
// Under PolicyReject a move past the joint limit fails with
// kinematics.ErrConstraintViolation and the arm is unchanged. Under
// PolicyClamp the joint stops at its limit.
func (c *Controller) ChangeJoint(index int, delta float64) error {
	c.mu.Lock()
	if index < 0 || index >= c.arm.Joints() {
		n := c.arm.Joints()
		c.mu.Unlock()
		metrics.RecordJointCommand(metrics.ResultInvalid)
		return fmt.Errorf("%w: %d not in [0, %d)", kinematics.ErrJointIndex, index, n)
	}

	var ok bool
	if c.policy == PolicyClamp {
		ok = c.arm.ClampSet(index, delta)
	} else {
		ok = c.arm.TrySet(index, delta)
	}
	if !ok {
		angle := c.arm.Angles()[index]
		limit := c.arm.Limits()[index]
		c.mu.Unlock()
		metrics.RecordJointCommand(metrics.ResultRejected)
		c.log.Debug("joint command rejected",
			"joint", index, "delta", delta, "angle", angle, "min", limit.Min, "max", limit.Max)
		return fmt.Errorf("%w: joint %d at %.2f by %.2f outside [%.2f, %.2f]",
			kinematics.ErrConstraintViolation, index, angle, delta, limit.Min, limit.Max)
	}
	c.seq++
	seq, state := c.seq, c.arm.State()
	c.mu.Unlock()

	metrics.RecordJointCommand(metrics.ResultApplied)
	c.log.Debug("joint moved", "joint", index, "delta", delta, "angle", state.Angles[index])
	c.notify(seq, state)
	return nil
}

// MoveTo solves for target with alg, or the controller default when alg is
// empty. A solve that does not converge is not an error: the arm keeps its
// best-effort configuration and the result reports the outcome. A target with
// a NaN or infinite coordinate fails with kinematics.ErrInvalidTarget and
// leaves the arm unchanged.
func (c *Controller) MoveTo(target r2.Vec, alg kinematics.Algorithm) (kinematics.Result, error) {
	return c.MoveToWith(target, alg, kinematics.Params{})
}

// MoveToWith is MoveTo with per-call parameter overrides. Zero fields fall
// back to the controller params, then to the solver defaults.
func (c *Controller) MoveToWith(target r2.Vec, alg kinematics.Algorithm, p kinematics.Params) (kinematics.Result, error) {
	if alg == "" {
		alg = c.algorithm
	}
	solver, ok := c.solvers[alg]
	if !ok {
		return kinematics.Result{}, fmt.Errorf("%w: %q", kinematics.ErrUnknownAlgorithm, string(alg))
	}

	if err := kinematics.CheckTarget(target); err != nil {
		return kinematics.Result{}, err
	}

	p = c.merge(p)

	c.mu.Lock()
	res, err := solver.Solve(c.arm, target, p)
	if err != nil {
		c.mu.Unlock()
		return res, err
	}
	c.seq++
	seq, state := c.seq, c.arm.State()
	c.mu.Unlock()

	metrics.RecordSolve(string(res.Algorithm), res.Outcome.String(), res.Iterations, res.Distance, res.Elapsed)
	c.log.Info("solve finished",
		"algorithm", res.Algorithm,
		"target", [2]float64{target.X, target.Y},
		"outcome", res.Outcome.String(),
		"iterations", res.Iterations,
		"distance", res.Distance,
		"elapsed", res.Elapsed)

	c.notify(seq, state)
	return res, nil
}

func (c *Controller) merge(p kinematics.Params) kinematics.Params {
	if p.MaxIterations <= 0 {
		p.MaxIterations = c.params.MaxIterations
	}
	if p.Tolerance <= 0 {
		p.Tolerance = c.params.Tolerance
	}
	if p.Patience <= 0 {
		p.Patience = c.params.Patience
	}
	if p.OnIteration == nil {
		p.OnIteration = c.params.OnIteration
	}
	return p
}

// publish sends the current state to observers as a mutation of its own.
func (c *Controller) publish() {
	c.mu.Lock()
	c.seq++
	seq, state := c.seq, c.arm.State()
	c.mu.Unlock()
	c.notify(seq, state)
}

// notify delivers state unless a later mutation has already been delivered.
func (c *Controller) notify(seq uint64, state kinematics.State) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.notified {
		return
	}
	c.notified = seq

	c.obsMu.RLock()
	observers := make([]func(kinematics.State), len(c.observers))
	copy(observers, c.observers)
	c.obsMu.RUnlock()

	for _, fn := range observers {
		fn(state)
	}
}
