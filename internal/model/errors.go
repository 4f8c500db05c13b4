package model

import "errors"

// Domain rule violations share one vocabulary so callers branch with
// errors.Is instead of matching message text. Anything not listed here is a
// storage error and is reported generically.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUsernameTaken    = errors.New("username taken")
	ErrBadCredentials   = errors.New("bad credentials")
	ErrAlreadyLoggedIn  = errors.New("already logged in")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrNotAuthorized    = errors.New("operation not allowed for this role")
	ErrNotFound         = errors.New("not found")
	ErrUnknownVaccine   = errors.New("unknown vaccine")
	ErrOutOfStock       = errors.New("out of stock")
	ErrNoAvailability   = errors.New("no caregiver available")
	ErrDuplicateBooking = errors.New("already booked that day")
	ErrSlotTaken        = errors.New("slot no longer available")
	ErrIDTaken          = errors.New("appointment id already in use")
	ErrIDSpaceExhausted = errors.New("appointment id space exhausted")
)
