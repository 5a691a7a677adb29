package kinematics

import (
	"errors"
	"fmt"
)

// Sentinel errors for arm construction, joint control and solving.
var (
	// ErrConstruction matches every ConstructionError via errors.Is.
	ErrConstruction = errors.New("kinematics: invalid arm")

	// ErrEmptyArm is returned when an arm has no joints.
	ErrEmptyArm = errors.New("kinematics: arm has no joints")

	// ErrLengthMismatch is returned when links, angles and limits differ in length.
	ErrLengthMismatch = errors.New("kinematics: links, angles and limits must have the same length")

	// ErrInvalidLink is returned for negative, NaN or infinite link lengths.
	ErrInvalidLink = errors.New("kinematics: invalid link length")

	// ErrInvalidLimit is returned when a limit has min > max or a NaN bound.
	ErrInvalidLimit = errors.New("kinematics: invalid joint limit")

	// ErrAngleOutOfRange is returned when an initial angle violates its limit.
	ErrAngleOutOfRange = errors.New("kinematics: angle outside joint limit")

	// ErrJointIndex is returned for a joint index outside [0, N).
	ErrJointIndex = errors.New("kinematics: joint index out of range")

	// ErrConstraintViolation is returned when a joint command would leave its limit.
	// The arm is left untouched.
	ErrConstraintViolation = errors.New("kinematics: joint constraint violated")

	// ErrInvalidTarget is returned when a target coordinate is NaN or infinite.
	// The arm is left untouched.
	ErrInvalidTarget = errors.New("kinematics: target must be finite")

	// ErrUnknownAlgorithm is returned for an unrecognised solver name.
	ErrUnknownAlgorithm = errors.New("kinematics: unknown algorithm")

	// ErrNotConverged reports a solve that exhausted its iteration budget.
	ErrNotConverged = errors.New("kinematics: target not reached within iteration budget")

	// ErrDiverged reports a solve that stopped improving within its patience window.
	ErrDiverged = errors.New("kinematics: solver stopped improving")

	// ErrNumericalInstability is raised internally when the damped system cannot be solved.
	// The pseudo-inverse solver reacts by increasing damping; it never reaches callers.
	ErrNumericalInstability = errors.New("kinematics: numerically unstable step")
)

// ConstructionError describes why an arm could not be built.
type ConstructionError struct {
	// Joint is the offending joint index, or -1 when the error is not joint specific.
	Joint int

	// Err is one of the construction sentinels.
	Err error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	if e.Joint < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (joint %d)", e.Err, e.Joint)
}

// Unwrap returns the underlying sentinel.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// Is makes every ConstructionError match ErrConstruction.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

func constructionErr(joint int, err error) error {
	return &ConstructionError{Joint: joint, Err: err}
}
