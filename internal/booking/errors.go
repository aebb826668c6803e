package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the ledger and lifecycle.  Handlers
// translate these into HTTP responses; none of them is fatal to the
// process.
var (
	// ErrSlotUnavailable means the schedule no longer offers the
	// requested (date, time) slot, e.g. staff replaced the week
	// between the client's availability read and the booking write.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrSlotFull means the slot exists but its capacity is exhausted.
	// Callers must re-query availability before resubmitting; the
	// engine never retries on their behalf.
	ErrSlotFull = errors.New("slot full")

	// ErrNoLineItems rejects a reservation request without products.
	ErrNoLineItems = errors.New("reservation has no line items")

	// ErrReservationNotFound is returned by lifecycle transitions for
	// unknown reservation IDs.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrUnavailable wraps transient persistence failures (timeouts,
	// lost connections).  The commit it interrupted left no partial
	// state, so the caller may re-query availability and retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// QuotaViolationError wraps a quota error so callers can distinguish
// "your order breaks a limit" from slot or stock rejections while the
// underlying detail stays reachable through errors.As.
type QuotaViolationError struct {
	Err error
}

func (e *QuotaViolationError) Error() string { return "quota violation: " + e.Err.Error() }
func (e *QuotaViolationError) Unwrap() error { return e.Err }

// InsufficientStockError aborts the whole commit when any single
// product cannot cover its requested quantity.  No partial stock
// decrement survives the rollback.
type InsufficientStockError struct {
	ProductID uint64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %dg available, %dg requested",
		e.ProductID, e.Available, e.Requested)
}

// UnknownProductError reports a line item referencing a product the
// club does not sell.
type UnknownProductError struct {
	ProductID uint64
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %d", e.ProductID)
}

// InvalidTransitionError reports a lifecycle transition the state
// graph forbids.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// AlreadyInTerminalStateError reports a repeated transition into the
// state the reservation already occupies.  Repeats are rejected, not
// silently accepted, so callers notice double submissions.
type AlreadyInTerminalStateError struct {
	Status string
}

func (e *AlreadyInTerminalStateError) Error() string {
	return fmt.Sprintf("reservation already %s", e.Status)
}

// isDomainError reports whether err is one of the deterministic,
// caller-recoverable kinds above (as opposed to a transient storage
// failure that should surface as ErrUnavailable).
func isDomainError(err error) bool {
	if errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrSlotFull) ||
		errors.Is(err, ErrNoLineItems) || errors.Is(err, ErrReservationNotFound) {
		return true
	}
	var (
		qv *QuotaViolationError
		is *InsufficientStockError
		up *UnknownProductError
		it *InvalidTransitionError
		ts *AlreadyInTerminalStateError
	)
	return errors.As(err, &qv) || errors.As(err, &is) || errors.As(err, &up) ||
		errors.As(err, &it) || errors.As(err, &ts)
}

// wrapTransient passes domain errors through untouched and folds
// anything else into ErrUnavailable.
func wrapTransient(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
