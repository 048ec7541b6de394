// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure scenarios:
// ErrTableUnavailable signals the expected write-time conflict when a
// table was taken between the availability read and the booking
// commit, while ErrForbidden indicates that the current user is not
// authorized to act on a resource owned by someone else.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrRestaurantNotFound is returned when a restaurant id does not
// resolve to an active restaurant.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrTableNotFound is returned when a table id does not exist or does
// not belong to the expected restaurant.
var ErrTableNotFound = errors.New("table not found")

// ErrReservationNotFound is returned when a reservation cannot be
// located (or is not visible to the caller).
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTableUnavailable is returned by the guarded insert when another
// active reservation already holds the table for an overlapping
// window. Handlers translate this into HTTP 409; under concurrent
// load this is an expected condition, not an exceptional one.
var ErrTableUnavailable = errors.New("table unavailable for the requested window")

// ErrDuplicateReview is returned when a second review is submitted for
// the same reservation. Callers should treat it as success-adjacent.
var ErrDuplicateReview = errors.New("reservation already reviewed")
