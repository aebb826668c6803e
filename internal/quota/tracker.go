// Package quota checks proposed reservations against a club's
// grams-per-order bounds and per-member monthly cap.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/greenleaf/club-reservation/internal/model"
)

// LimitSource loads a club's configured grams limits.  A nil limit
// (with nil error) means the club imposes none.
type LimitSource interface {
	LimitForClub(ctx context.Context, clubID uint64) (*model.GramsLimit, error)
}

// UsageSource reports a member's grams across non-canceled
// reservations whose requested date falls in [monthStart, monthEnd).
type UsageSource interface {
	MonthlyGrams(ctx context.Context, memberID uint64, monthStart, monthEnd time.Time) (int, error)
}

// BelowMinimumError reports an order smaller than the club's minimum.
type BelowMinimumError struct {
	Min       int
	Requested int
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order of %dg is below the club minimum of %dg", e.Requested, e.Min)
}

// AboveMaximumError reports an order larger than the club's per-order maximum.
type AboveMaximumError struct {
	Max       int
	Requested int
}

func (e *AboveMaximumError) Error() string {
	return fmt.Sprintf("order of %dg exceeds the club maximum of %dg", e.Requested, e.Max)
}

// MonthlyLimitExceededError reports an order that would push the
// member past the club's monthly cap.  All four figures are carried so
// the caller can render a precise message.
type MonthlyLimitExceededError struct {
	Limit     int
	Used      int
	Available int
	Requested int
}

func (e *MonthlyLimitExceededError) Error() string {
	return fmt.Sprintf("monthly limit of %dg exceeded: %dg used, %dg available, %dg requested",
		e.Limit, e.Used, e.Available, e.Requested)
}

// Tracker recomputes monthly usage on demand; it is never stored, so
// the reservation ledger stays the single source of truth.
type Tracker struct {
	limits LimitSource
	usage  UsageSource
}

// NewTracker wires a Tracker to its limit and usage sources.
func NewTracker(limits LimitSource, usage UsageSource) *Tracker {
	return &Tracker{limits: limits, usage: usage}
}

// CheckOrder validates requestedGrams against the club's limits for
// the calendar month containing date.  Checks run in priority order:
// the cheap structural bounds first, the rolling monthly cap last.
// The first violated check is returned.  used + requested == limit
// passes; only exceeding the cap fails.
func (t *Tracker) CheckOrder(ctx context.Context, memberID, clubID uint64, requestedGrams int, date time.Time) error {
	limit, err := t.limits.LimitForClub(ctx, clubID)
	if err != nil {
		return err
	}
	if limit == nil {
		return nil
	}
	// An inverted min > max pair would reject every order, one bound or
	// the other.  Treat such a misconfiguration as no per-order bounds;
	// the monthly cap below still applies.
	boundsValid := limit.MinPerOrder == nil || limit.MaxPerOrder == nil ||
		*limit.MinPerOrder <= *limit.MaxPerOrder
	if boundsValid {
		if limit.MinPerOrder != nil && requestedGrams < *limit.MinPerOrder {
			return &BelowMinimumError{Min: *limit.MinPerOrder, Requested: requestedGrams}
		}
		if limit.MaxPerOrder != nil && requestedGrams > *limit.MaxPerOrder {
			return &AboveMaximumError{Max: *limit.MaxPerOrder, Requested: requestedGrams}
		}
	}
	if limit.MonthlyMax != nil {
		monthStart, monthEnd := MonthBounds(date)
		used, err := t.usage.MonthlyGrams(ctx, memberID, monthStart, monthEnd)
		if err != nil {
			return err
		}
		if used+requestedGrams > *limit.MonthlyMax {
			return &MonthlyLimitExceededError{
				Limit:     *limit.MonthlyMax,
				Used:      used,
				Available: *limit.MonthlyMax - used,
				Requested: requestedGrams,
			}
		}
	}
	return nil
}

// MonthBounds returns the half-open [first of month, first of next
// month) range containing date, in UTC.  The monthly cap resets at
// calendar-month boundaries.
func MonthBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
