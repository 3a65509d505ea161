package access

import "errors"

var (
	// ErrHouseholdNotFound indicates the household does not exist.
	ErrHouseholdNotFound = errors.New("household not found")

	// ErrMembershipNotFound indicates no membership row for the
	// (household, user) pair.
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrForbidden indicates the caller may not see or control the
	// target device.
	ErrForbidden = errors.New("forbidden")
)
