// Package kinematics models a planar articulated arm and solves its inverse kinematics.
//
// An Arm is a chain of rigid links joined by revolute joints, each with an
// inclusive angle limit. Joint angles are the only mutable state: positions
// are recomputed from them on every change and cannot be set directly.
//
// Angles and limits are expressed in degrees at the package boundary and kept
// in radians internally. An Arm is not safe for concurrent use; wrap it in
// arm.Controller when it is shared.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// boundaryTolerance absorbs degree/radian rounding when a joint command lands
// exactly on a limit.
const boundaryTolerance = 1e-9

// Arm is a planar serial chain anchored at the origin.
type Arm struct {
	links     []float64
	angles    []float64 // radians
	limits    []Limit   // radians
	positions []r2.Vec  // derived from angles, len(links)+1
	reach     float64
}

// State is a snapshot of the arm suitable for serialisation.
type State struct {
	Positions [][2]float64 `json:"positions"`
	Angles    []float64    `json:"angles"` // degrees
}

// New builds an arm from link lengths, initial angles and joint limits.
// Angles and limits are in degrees. Link i connects joint i to joint i+1.
//
// Construction fails with a *ConstructionError when the slices differ in
// length, a link is negative or not finite, a limit is malformed, or an
// initial angle lies outside its limit.
func New(links, angles []float64, limits []Limit) (*Arm, error) {
	n := len(links)
	if n == 0 {
		return nil, constructionErr(-1, ErrEmptyArm)
	}
	if len(angles) != n || len(limits) != n {
		return nil, constructionErr(-1, ErrLengthMismatch)
	}

	a := &Arm{
		links:  make([]float64, n),
		angles: make([]float64, n),
		limits: make([]Limit, n),
	}
	for i := 0; i < n; i++ {
		l := links[i]
		if l < 0 || !finite(l) {
			return nil, constructionErr(i, ErrInvalidLink)
		}
		if !limits[i].valid() {
			return nil, constructionErr(i, ErrInvalidLimit)
		}
		if !finite(angles[i]) || !limits[i].Contains(angles[i]) {
			return nil, constructionErr(i, ErrAngleOutOfRange)
		}
		a.links[i] = l
		a.reach += l
		a.angles[i] = Radians(angles[i])
		a.limits[i] = limits[i].radians()
	}
	if a.reach == 0 {
		return nil, constructionErr(-1, ErrInvalidLink)
	}

	a.positions = ForwardKinematics(a.links, a.angles)
	return a, nil
}

// Joints returns the number of joints.
func (a *Arm) Joints() int {
	return len(a.links)
}

// Links returns a copy of the link lengths.
func (a *Arm) Links() []float64 {
	out := make([]float64, len(a.links))
	copy(out, a.links)
	return out
}

// Angles returns the joint angles in degrees.
func (a *Arm) Angles() []float64 {
	out := make([]float64, len(a.angles))
	for i, th := range a.angles {
		out[i] = Degrees(th)
	}
	return out
}

// Limits returns the joint limits in degrees.
func (a *Arm) Limits() []Limit {
	out := make([]Limit, len(a.limits))
	for i, l := range a.limits {
		out[i] = l.degrees()
	}
	return out
}

// Positions returns a copy of the N+1 joint positions, base first.
func (a *Arm) Positions() []r2.Vec {
	out := make([]r2.Vec, len(a.positions))
	copy(out, a.positions)
	return out
}

// EndEffector returns the tip of the last link.
func (a *Arm) EndEffector() r2.Vec {
	return a.positions[len(a.positions)-1]
}

// Reach returns the total length of the arm.
func (a *Arm) Reach() float64 {
	return a.reach
}

// DistanceTo returns the Euclidean distance from the end effector to target.
func (a *Arm) DistanceTo(target r2.Vec) float64 {
	return r2.Norm(r2.Sub(target, a.EndEffector()))
}

// State returns a serialisable snapshot of positions and angles.
func (a *Arm) State() State {
	s := State{
		Positions: make([][2]float64, len(a.positions)),
		Angles:    a.Angles(),
	}
	for i, p := range a.positions {
		s.Positions[i] = [2]float64{p.X, p.Y}
	}
	return s
}

// Clone returns an independent copy of the arm.
func (a *Arm) Clone() *Arm {
	c := &Arm{
		links:     make([]float64, len(a.links)),
		angles:    make([]float64, len(a.angles)),
		limits:    make([]Limit, len(a.limits)),
		positions: make([]r2.Vec, len(a.positions)),
		reach:     a.reach,
	}
	copy(c.links, a.links)
	copy(c.angles, a.angles)
	copy(c.limits, a.limits)
	copy(c.positions, a.positions)
	return c
}

// Clamp returns proposed (degrees) restricted to the limit of joint.
// joint must be in [0, Joints()).
func (a *Arm) Clamp(joint int, proposed float64) float64 {
	return Degrees(a.limits[joint].Clamp(Radians(proposed)))
}

// TrySet moves joint by delta degrees only if the result stays within its
// limit. It reports whether the move was applied; on false the arm is unchanged.
func (a *Arm) TrySet(joint int, delta float64) bool {
	if joint < 0 || joint >= len(a.angles) {
		return false
	}
	if !finite(delta) {
		return false
	}
	limit := a.limits[joint]
	proposed := a.angles[joint] + Radians(delta)
	if proposed < limit.Min-boundaryTolerance || proposed > limit.Max+boundaryTolerance {
		return false
	}
	a.setAngle(joint, limit.Clamp(proposed))
	return true
}

// ClampSet moves joint by delta degrees, stopping at its limit.
// It returns false only for an invalid joint or a non-finite delta.
func (a *Arm) ClampSet(joint int, delta float64) bool {
	if joint < 0 || joint >= len(a.angles) || !finite(delta) {
		return false
	}
	a.setAngle(joint, a.limits[joint].Clamp(a.angles[joint]+Radians(delta)))
	return true
}

func (a *Arm) setAngle(joint int, angle float64) {
	a.angles[joint] = angle
	a.positions = ForwardKinematics(a.links, a.angles)
}

// setAngles clamps every proposed angle (radians) to its limit, applies them
// and recomputes positions. A non-finite proposal leaves that joint as is.
func (a *Arm) setAngles(proposed []float64) {
	for i, th := range proposed {
		if !finite(th) {
			continue
		}
		a.angles[i] = a.limits[i].Clamp(th)
	}
	a.positions = ForwardKinematics(a.links, a.angles)
}

// clampAll returns a clamped copy of proposed without touching the arm.
// Non-finite proposals keep the current angle.
func (a *Arm) clampAll(proposed []float64) []float64 {
	out := make([]float64, len(proposed))
	for i, th := range proposed {
		if !finite(th) {
			th = a.angles[i]
		}
		out[i] = a.limits[i].Clamp(th)
	}
	return out
}

// anglesRad returns a copy of the joint angles in radians.
func (a *Arm) anglesRad() []float64 {
	out := make([]float64, len(a.angles))
	copy(out, a.angles)
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
