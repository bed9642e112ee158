package master

import "errors"

var (
	// ErrCreateRejected is returned when the provider does not accept the
	// create request.
	ErrCreateRejected = errors.New("instance creation rejected")

	// ErrActionFailed is returned when a provider action reports an error.
	ErrActionFailed = errors.New("provider action failed")

	// ErrInstanceNotFound is returned when the listing has no instance with
	// the created ID.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrNoAddress is returned when the instance has no public IPv4 address.
	ErrNoAddress = errors.New("instance has no public IPv4 address")
)
