// Package repository implements MySQL persistence for the booking
// engine: schedules, grams limits, products, reservations and the
// per-slot counters that back the capacity check.  Sentinel errors
// defined here let handlers distinguish failure scenarios without
// inspecting SQL errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// reservation owned by someone else.  Handlers translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
