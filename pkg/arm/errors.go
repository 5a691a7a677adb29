package arm

import "errors"

// Sentinel errors for arm lifecycle.
var (
	ErrNotInitialized     = errors.New("arm has not been initialized")
	ErrAlreadyInitialized = errors.New("arm already initialized")
	ErrInvalidPolicy      = errors.New("invalid control policy")
)
