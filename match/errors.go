package match

import "errors"

var (
	// ErrInvalidProfile is returned when a profile lacks its identity.
	ErrInvalidProfile = errors.New("invalid profile: missing id")
	// ErrNotFound is returned for operations on an unknown profile id.
	ErrNotFound = errors.New("profile not found")
	// ErrSelfConnection is returned when connecting a profile to itself.
	ErrSelfConnection = errors.New("cannot connect a profile to itself")
)
