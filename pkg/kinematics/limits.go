package kinematics

import "math"

// Limit is an inclusive joint range [Min, Max].
// Limits passed to and returned from the public API are in degrees.
type Limit struct {
	Min float64
	Max float64
}

// Unconstrained returns a limit that accepts every angle.
func Unconstrained() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Fixed returns a limit that pins a joint to a single angle.
func Fixed(angle float64) Limit {
	return Limit{Min: angle, Max: angle}
}

// UnconstrainedLimits returns n unconstrained limits.
func UnconstrainedLimits(n int) []Limit {
	limits := make([]Limit, n)
	for i := range limits {
		limits[i] = Unconstrained()
	}
	return limits
}

// Contains reports whether v lies within the limit.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Clamp returns v restricted to the limit.
func (l Limit) Clamp(v float64) float64 {
	return clamp(v, l.Min, l.Max)
}

// fit returns the angle equivalent to a modulo 2π that lies within the limit
// (radians). Among several equivalents the one nearest ref wins. When none
// lies within the limit, a is clamped.
func (l Limit) fit(a, ref float64) float64 {
	if l.Contains(a) {
		return a
	}
	const turn = 2 * math.Pi
	if math.IsInf(l.Min, -1) {
		// Equivalents run downward from the largest one below Max.
		top := a - turn*math.Ceil((a-l.Max)/turn)
		k := math.Max(0, math.Round((top-ref)/turn))
		return top - k*turn
	}
	low := a + turn*math.Ceil((l.Min-a)/turn)
	if !l.Contains(low) {
		return l.Clamp(a)
	}
	k := math.Round((ref - low) / turn)
	k = math.Max(0, math.Min(k, math.Floor((l.Max-low)/turn)))
	return low + k*turn
}

// IsFixed reports whether the limit admits exactly one angle.
func (l Limit) IsFixed() bool {
	return l.Min == l.Max
}

func (l Limit) valid() bool {
	return !math.IsNaN(l.Min) && !math.IsNaN(l.Max) && l.Min <= l.Max
}

func (l Limit) radians() Limit {
	return Limit{Min: Radians(l.Min), Max: Radians(l.Max)}
}

func (l Limit) degrees() Limit {
	return Limit{Min: Degrees(l.Min), Max: Degrees(l.Max)}
}
