package kinematics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// jacobian returns the 2×N positional Jacobian of the end effector.
//
// Column i is the derivative of the end effector with respect to joint i:
// the lever arm from joint i to the tip rotated by +90°.
func jacobian(positions []r2.Vec) *mat.Dense {
	n := len(positions) - 1
	tip := positions[n]
	j := mat.NewDense(2, n, nil)
	for i := 0; i < n; i++ {
		r := r2.Sub(tip, positions[i])
		j.Set(0, i, -r.Y)
		j.Set(1, i, r.X)
	}
	return j
}

// errorVec returns target minus the end effector as a gonum vector.
func errorVec(tip, target r2.Vec) *mat.VecDense {
	e := r2.Sub(target, tip)
	return mat.NewVecDense(2, []float64{e.X, e.Y})
}

// vecData copies a gonum vector into a plain slice.
func vecData(v mat.Vector) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
