// Package repository defines sentinel error values reused across the
// repositories. Handlers use these to distinguish failure scenarios and map
// them onto HTTP responses without inspecting SQL errors themselves.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as a trainer reading the roster of a
// class assigned to someone else. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned on registration when the email address is
// already taken. Handlers translate this into 409.
var ErrEmailExists = errors.New("email already exists")

// ErrClassNotFound is returned when a class id does not resolve to an
// existing class session. Handlers translate this into 404.
var ErrClassNotFound = errors.New("class not found")

// ErrClassFull is returned by the booking writer when the class has no
// free slots left. This is a terminal, user-visible outcome; the service
// never retries it. Handlers translate this into 409.
var ErrClassFull = errors.New("class is full")

// ErrAlreadyBooked is returned when the caller already holds a live
// booking for the class. Handlers translate this into 409.
var ErrAlreadyBooked = errors.New("already booked for this class")

// ErrBookingNotFound is returned when a booking id does not exist or does
// not belong to the caller. The two cases are deliberately not
// distinguished so callers cannot probe other accounts' bookings.
var ErrBookingNotFound = errors.New("booking not found")
