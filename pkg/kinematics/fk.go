package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ForwardKinematics returns the N+1 joint positions of a planar serial chain.
//
// Position 0 is the base at the origin. Each joint angle (radians) is relative
// to the previous link, so link k points along the cumulative sum of
// angles[0..k]. The last position is the end effector.
func ForwardKinematics(links, angles []float64) []r2.Vec {
	positions := make([]r2.Vec, len(links)+1)
	var heading float64
	for i, l := range links {
		heading += angles[i]
		positions[i+1] = r2.Add(positions[i], r2.Scale(l, direction(heading)))
	}
	return positions
}

// endEffector computes only the tip of the chain.
func endEffector(links, angles []float64) r2.Vec {
	var tip r2.Vec
	var heading float64
	for i, l := range links {
		heading += angles[i]
		tip = r2.Add(tip, r2.Scale(l, direction(heading)))
	}
	return tip
}

// direction returns the unit vector at the given heading.
func direction(heading float64) r2.Vec {
	return r2.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
}

// angleOf returns the angle of v measured from the x axis.
func angleOf(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}
