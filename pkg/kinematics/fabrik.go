package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// degenerate is the distance below which two joints are treated as coincident.
const degenerate = 1e-12

// FABRIK is Forward And Backward Reaching Inverse Kinematics.
//
// Each iteration pulls the chain tip onto the target and walks back to the
// base (backward pass), then re-anchors the base and walks out again (forward
// pass), preserving link lengths. Joint limits are respected while placing
// each link in both passes, using the 2π equivalent of a relative angle that
// lies inside its limit; joint angles are then recovered from the new
// positions and the arm is clamped and recomputed.
type FABRIK struct {
	MaxIterations int
	Tolerance     float64
}

// NewFABRIK returns a solver with default tuning.
func NewFABRIK() *FABRIK {
	return &FABRIK{
		MaxIterations: 500,
		Tolerance:     0.01,
	}
}

func (s *FABRIK) Algorithm() Algorithm { return AlgorithmFABRIK }

func (s *FABRIK) Defaults() Params {
	return Params{MaxIterations: s.MaxIterations, Tolerance: s.Tolerance}
}

// Solve iterates until the end effector is within tolerance of target or the
// budget is spent. An unreachable target leaves the arm stretched toward it.
func (s *FABRIK) Solve(arm *Arm, target r2.Vec, p Params) (Result, error) {
	p = p.withDefaults(s.Defaults())
	return iterate(s.Algorithm(), arm, target, p, func() { s.step(arm, target) })
}

func (s *FABRIK) step(arm *Arm, target r2.Vec) {
	n := arm.Joints()
	links, limits := arm.links, arm.limits
	pos := arm.Positions()
	base := pos[0]

	// Absolute link headings, used when a link collapses onto a point.
	heading := make([]float64, n)
	var sum float64
	for i, th := range arm.angles {
		sum += th
		heading[i] = sum
	}

	// Backward: tip to base.
	pos[n] = target
	next := math.NaN()
	for i := n - 1; i >= 0; i-- {
		if links[i] == 0 {
			pos[i] = pos[i+1]
			continue
		}
		dir := heading[i]
		if v := r2.Sub(pos[i+1], pos[i]); r2.Norm(v) >= degenerate {
			dir = angleOf(v)
		}
		if !math.IsNaN(next) {
			rel := limits[i+1].fit(wrapAngle(next-dir), arm.angles[i+1])
			dir = next - rel
		}
		pos[i] = r2.Sub(pos[i+1], r2.Scale(links[i], direction(dir)))
		next = dir
	}

	// Forward: base to tip.
	pos[0] = base
	angles := make([]float64, n)
	var prev float64
	for i := 0; i < n; i++ {
		var want float64
		if links[i] == 0 {
			want = prev + arm.angles[i]
			for j := i + 1; j <= n; j++ {
				if v := r2.Sub(pos[j], pos[i]); r2.Norm(v) >= degenerate {
					want = angleOf(v)
					break
				}
			}
		} else {
			want = heading[i]
			if v := r2.Sub(pos[i+1], pos[i]); r2.Norm(v) >= degenerate {
				want = angleOf(v)
			}
		}
		rel := limits[i].fit(wrapAngle(want-prev), arm.angles[i])
		prev += rel
		pos[i+1] = r2.Add(pos[i], r2.Scale(links[i], direction(prev)))
		angles[i] = rel
	}

	arm.setAngles(angles)
}
