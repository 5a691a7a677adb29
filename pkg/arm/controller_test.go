package arm

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

func newController(t *testing.T, opts Options) *Controller {
	t.Helper()
	a, err := DefaultSpec().Build()
	require.NoError(t, err)
	c, err := NewController(a, opts)
	require.NoError(t, err)
	return c
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	p, err = ParsePolicy("Clamp")
	require.NoError(t, err)
	assert.Equal(t, PolicyClamp, p)

	_, err = ParsePolicy("ignore")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestNewControllerDefaults(t *testing.T) {
	c := newController(t, Options{})
	assert.Equal(t, PolicyReject, c.Policy())
	assert.Equal(t, kinematics.AlgorithmJacobianPseudoInverse, c.Algorithm())
	assert.Equal(t, 5, c.Joints())

	a, err := DefaultSpec().Build()
	require.NoError(t, err)
	_, err = NewController(a, Options{Algorithm: "ccd"})
	assert.ErrorIs(t, err, kinematics.ErrUnknownAlgorithm)
}

func TestChangeJointReject(t *testing.T) {
	c := newController(t, Options{})
	before := c.State()

	err := c.ChangeJoint(0, 200)
	assert.ErrorIs(t, err, kinematics.ErrConstraintViolation)
	assert.Equal(t, before, c.State())

	err = c.ChangeJoint(4, 5)
	assert.ErrorIs(t, err, kinematics.ErrConstraintViolation)
	assert.Equal(t, before, c.State())

	err = c.ChangeJoint(7, 1)
	assert.ErrorIs(t, err, kinematics.ErrJointIndex)

	require.NoError(t, c.ChangeJoint(1, 30))
	assert.InDelta(t, -60, c.State().Angles[1], 1e-9)
}

func TestChangeJointClamp(t *testing.T) {
	c := newController(t, Options{Policy: PolicyClamp})

	require.NoError(t, c.ChangeJoint(0, 500))
	assert.InDelta(t, 180, c.State().Angles[0], 1e-9)

	require.NoError(t, c.ChangeJoint(4, 5))
	assert.Equal(t, 0.0, c.State().Angles[4])
}

func TestMoveTo(t *testing.T) {
	c := newController(t, Options{})
	target := r2.Vec{X: 6, Y: 6}

	res, err := c.MoveTo(target, "")
	require.NoError(t, err)
	assert.Equal(t, kinematics.AlgorithmJacobianPseudoInverse, res.Algorithm)
	assert.Equal(t, kinematics.Converged, res.Outcome)

	tip := c.State().Positions[5]
	assert.InDelta(t, 6, tip[0], 0.01)
	assert.InDelta(t, 6, tip[1], 0.01)

	_, err = c.MoveTo(target, "ccd")
	assert.ErrorIs(t, err, kinematics.ErrUnknownAlgorithm)
}

func TestMoveToWithOverrides(t *testing.T) {
	c := newController(t, Options{Params: kinematics.Params{MaxIterations: 3}})

	res, err := c.MoveTo(r2.Vec{X: 12, Y: 9}, kinematics.AlgorithmGradientDescent)
	require.NoError(t, err)
	assert.Equal(t, kinematics.MaxIterationsReached, res.Outcome)
	assert.Equal(t, 3, res.Iterations)

	res, err = c.MoveToWith(r2.Vec{X: 12, Y: 9}, kinematics.AlgorithmGradientDescent, kinematics.Params{MaxIterations: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Iterations)
}

func TestOnChange(t *testing.T) {
	c := newController(t, Options{})
	var got []kinematics.State
	c.OnChange(func(s kinematics.State) { got = append(got, s) })

	require.NoError(t, c.ChangeJoint(1, 10))
	require.Error(t, c.ChangeJoint(0, 500))
	_, err := c.MoveTo(r2.Vec{X: 5.3, Y: 2.1}, kinematics.AlgorithmFABRIK)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, c.State(), got[1])
}

func TestMoveToRejectsNonFiniteTarget(t *testing.T) {
	targets := []r2.Vec{
		{X: math.NaN(), Y: 1},
		{X: 1, Y: math.Inf(1)},
		{X: math.Inf(-1), Y: math.NaN()},
	}
	for _, alg := range kinematics.Algorithms() {
		t.Run(string(alg), func(t *testing.T) {
			c := newController(t, Options{})
			calls := 0
			c.OnChange(func(kinematics.State) { calls++ })
			before := c.State()

			for _, target := range targets {
				_, err := c.MoveTo(target, alg)
				assert.ErrorIs(t, err, kinematics.ErrInvalidTarget)
			}
			assert.Equal(t, before, c.State())
			assert.Zero(t, calls)

			// Joint commands are still checked against the limits.
			assert.ErrorIs(t, c.ChangeJoint(0, 500), kinematics.ErrConstraintViolation)
		})
	}
}

func TestChangeJointNonFiniteDelta(t *testing.T) {
	for _, policy := range []Policy{PolicyReject, PolicyClamp} {
		t.Run(string(policy), func(t *testing.T) {
			c := newController(t, Options{Policy: policy})
			before := c.State()
			for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
				assert.ErrorIs(t, c.ChangeJoint(1, d), kinematics.ErrConstraintViolation)
			}
			assert.Equal(t, before, c.State())
		})
	}
}

func TestOnChangeDeliversInOrder(t *testing.T) {
	c := newController(t, Options{Policy: PolicyClamp})

	var mu sync.Mutex
	var seen []float64
	c.OnChange(func(s kinematics.State) {
		mu.Lock()
		seen = append(seen, s.Angles[1])
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				assert.NoError(t, c.ChangeJoint(1, 1))
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "state %d delivered after a newer one", i)
	}
	assert.InDelta(t, c.State().Angles[1], seen[len(seen)-1], 1e-9)
	assert.InDelta(t, -50, seen[len(seen)-1], 1e-9)
}

func TestController_ThreadSafe(t *testing.T) {
	c := newController(t, Options{Policy: PolicyClamp})
	limits := c.Limits()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = c.ChangeJoint(j%4, float64(i-4)*7)
				if j%5 == 0 {
					_, _ = c.MoveTo(r2.Vec{X: float64(i - 4), Y: 5}, kinematics.AlgorithmFABRIK)
				}
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := c.State()
				assert.Len(t, s.Positions, 6)
				for k, a := range s.Angles {
					assert.GreaterOrEqual(t, a, limits[k].Min-1e-6)
					assert.LessOrEqual(t, a, limits[k].Max+1e-6)
				}
			}
		}()
	}
	wg.Wait()
}
