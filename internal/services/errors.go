package services

import "errors"

var (
	// ErrValidation covers client-side-preventable input errors: missing
	// fields, past-dated schedules, bad enum values.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned for role mismatches and access to entities
	// the caller is not a party to.
	ErrForbidden = errors.New("forbidden")

	// ErrEmailTaken is returned for duplicate registration.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotConfirmed is returned when logging in before confirming.
	ErrEmailNotConfirmed = errors.New("email not confirmed")

	// ErrAlreadyApplied is returned when a walker applies twice to the
	// same request.
	ErrAlreadyApplied = errors.New("already applied to this request")

	// ErrRequestNotOpen is returned when applying to or accepting on a
	// request that has left the OPEN state.
	ErrRequestNotOpen = errors.New("walk request is not open")

	// ErrRequestNotMatched is returned when completing or chatting on a
	// request that is not in the MATCHED state.
	ErrRequestNotMatched = errors.New("walk request is not matched")
)
