package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-9

// referenceArm returns the default five joint arm:
// a pure rotation point followed by links of 4, 3, 2 and 1.
func referenceArm(t *testing.T, limits []Limit) *Arm {
	t.Helper()
	a, err := New([]float64{0, 4, 3, 2, 1}, []float64{45, -90, 45, 20, 0}, limits)
	require.NoError(t, err)
	return a
}

func freeLimits() []Limit {
	l := UnconstrainedLimits(5)
	l[4] = Fixed(0)
	return l
}

func restLimits() []Limit {
	return []Limit{
		{Min: 0, Max: 180},
		{Min: -120, Max: 120},
		{Min: -120, Max: 120},
		{Min: -120, Max: 120},
		Fixed(0),
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		links  []float64
		angles []float64
		limits []Limit
		want   error
		joint  int
	}{
		{"empty", nil, nil, nil, ErrEmptyArm, -1},
		{"length mismatch", []float64{1, 2}, []float64{0}, UnconstrainedLimits(2), ErrLengthMismatch, -1},
		{"limit count mismatch", []float64{1, 2}, []float64{0, 0}, UnconstrainedLimits(1), ErrLengthMismatch, -1},
		{"negative link", []float64{1, -2}, []float64{0, 0}, UnconstrainedLimits(2), ErrInvalidLink, 1},
		{"nan link", []float64{math.NaN()}, []float64{0}, UnconstrainedLimits(1), ErrInvalidLink, 0},
		{"zero reach", []float64{0, 0}, []float64{0, 0}, UnconstrainedLimits(2), ErrInvalidLink, -1},
		{"inverted limit", []float64{1}, []float64{0}, []Limit{{Min: 10, Max: -10}}, ErrInvalidLimit, 0},
		{"angle below limit", []float64{1, 1}, []float64{0, -5}, []Limit{Unconstrained(), {Min: 0, Max: 90}}, ErrAngleOutOfRange, 1},
		{"angle above fixed", []float64{1}, []float64{1}, []Limit{Fixed(0)}, ErrAngleOutOfRange, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.links, tt.angles, tt.limits)
			require.Error(t, err)
			assert.Nil(t, a)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrConstruction)

			var ce *ConstructionError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.joint, ce.Joint)
		})
	}
}

func TestNewComputesPositions(t *testing.T) {
	a, err := New([]float64{1, 1}, []float64{90, -90}, UnconstrainedLimits(2))
	require.NoError(t, err)

	pos := a.Positions()
	require.Len(t, pos, 3)
	assert.Equal(t, r2.Vec{}, pos[0])
	assert.InDelta(t, 0, pos[1].X, eps)
	assert.InDelta(t, 1, pos[1].Y, eps)
	assert.InDelta(t, 1, pos[2].X, eps)
	assert.InDelta(t, 1, pos[2].Y, eps)
	assert.Equal(t, 2.0, a.Reach())
}

func TestForwardKinematicsIsPure(t *testing.T) {
	links := []float64{0, 4, 3, 2, 1}
	angles := []float64{Radians(45), Radians(-90), Radians(45), Radians(20), 0}

	first := ForwardKinematics(links, angles)
	second := ForwardKinematics(links, angles)
	assert.Equal(t, first, second)
	assert.Equal(t, first[len(first)-1], endEffector(links, angles))

	// Zero-length link leaves the joint in place.
	assert.Equal(t, first[0], first[1])
}

func TestReferenceArmPositions(t *testing.T) {
	a := referenceArm(t, freeLimits())
	pos := a.Positions()

	// Link headings: 45, -45, 0, 20, 20 degrees.
	s := math.Sqrt2 / 2
	c, n := math.Cos(Radians(20)), math.Sin(Radians(20))
	want := []r2.Vec{
		{},
		{},
		{X: 4 * s, Y: -4 * s},
		{X: 4*s + 3, Y: -4 * s},
		{X: 4*s + 3 + 2*c, Y: -4*s + 2*n},
		{X: 4*s + 3 + 3*c, Y: -4*s + 3*n},
	}
	for i, w := range want {
		assert.InDelta(t, w.X, pos[i].X, eps, "joint %d x", i)
		assert.InDelta(t, w.Y, pos[i].Y, eps, "joint %d y", i)
	}
}

func TestTrySetRejectsViolation(t *testing.T) {
	a := referenceArm(t, restLimits())
	before := a.State()

	assert.False(t, a.TrySet(0, 200))
	assert.False(t, a.TrySet(0, -46))
	assert.False(t, a.TrySet(4, 1))
	assert.False(t, a.TrySet(5, 1))
	assert.False(t, a.TrySet(-1, 1))
	assert.False(t, a.TrySet(1, math.Inf(1)))
	assert.Equal(t, before, a.State())
}

func TestTrySetApplies(t *testing.T) {
	a := referenceArm(t, restLimits())

	require.True(t, a.TrySet(0, 135))
	assert.InDelta(t, 180, a.Angles()[0], eps)

	require.True(t, a.TrySet(1, 10))
	assert.InDelta(t, -80, a.Angles()[1], eps)

	// Positions follow the new angles.
	assert.Equal(t, ForwardKinematics(a.links, a.angles), a.Positions())
}

func TestClampSet(t *testing.T) {
	a := referenceArm(t, restLimits())

	require.True(t, a.ClampSet(1, -500))
	assert.InDelta(t, -120, a.Angles()[1], eps)

	require.True(t, a.ClampSet(4, 30))
	assert.Equal(t, 0.0, a.Angles()[4])

	assert.False(t, a.ClampSet(9, 1))
	assert.False(t, a.ClampSet(0, math.NaN()))
}

func TestClamp(t *testing.T) {
	a := referenceArm(t, restLimits())
	assert.InDelta(t, 180, a.Clamp(0, 270), eps)
	assert.InDelta(t, 0, a.Clamp(0, -10), eps)
	assert.InDelta(t, 30, a.Clamp(2, 30), eps)
	assert.Equal(t, 0.0, a.Clamp(4, 12))
}

func TestCloneIsIndependent(t *testing.T) {
	a := referenceArm(t, freeLimits())
	c := a.Clone()
	require.True(t, c.TrySet(1, 30))
	assert.NotEqual(t, a.State(), c.State())
	assert.InDelta(t, -90, a.Angles()[1], eps)
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{2*math.Pi + 1, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, wrapAngle(tt.in), eps, "wrap(%v)", tt.in)
	}
}

func TestLimitHelpers(t *testing.T) {
	assert.True(t, Unconstrained().Contains(1e300))
	assert.True(t, Fixed(3).IsFixed())
	assert.False(t, Limit{Min: 0, Max: 1}.IsFixed())
	assert.Equal(t, 1.0, Limit{Min: 0, Max: 1}.Clamp(5))
	assert.False(t, Limit{Min: math.NaN(), Max: 1}.valid())
}
