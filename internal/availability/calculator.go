// Package availability derives bookable slots from a club's weekly
// schedule.  Absence of data degrades to "no slots", never an error:
// a club without a configured schedule is a valid state.
package availability

import (
	"context"
	"time"

	"github.com/greenleaf/club-reservation/internal/clock"
	"github.com/greenleaf/club-reservation/internal/model"
)

// ScheduleSource resolves the active window for one club and weekday.
// A nil window (with nil error) means the day is not configured.
type ScheduleSource interface {
	WindowForDay(ctx context.Context, clubID uint64, dayOfWeek int) (*model.ScheduleWindow, error)
}

// SlotUsageSource reports active (non-canceled) reservation counts per
// slot start for one club and date.
type SlotUsageSource interface {
	ActiveCounts(ctx context.Context, clubID uint64, date time.Time) (map[int]int, error)
}

// Calculator turns schedule windows into concrete day/time slots.
// Counts read here are eventually consistent with in-flight commits;
// the ledger re-checks capacity under a row lock before persisting.
type Calculator struct {
	schedules ScheduleSource
	usage     SlotUsageSource
	clk       clock.Clock
}

// NewCalculator wires a Calculator to its schedule and usage sources.
func NewCalculator(schedules ScheduleSource, usage SlotUsageSource, clk clock.Clock) *Calculator {
	return &Calculator{schedules: schedules, usage: usage, clk: clk}
}

// horizon returns the inclusive [today, today+1 month] booking range.
func (c *Calculator) horizon() (time.Time, time.Time) {
	now := c.clk.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today, today.AddDate(0, 1, 0)
}

// Horizon exposes the current booking range, inclusive on both ends.
func (c *Calculator) Horizon() (from, to time.Time) {
	return c.horizon()
}

// inHorizon reports whether date is bookable at all: not in the past
// and not beyond the configured horizon of one month.
func (c *Calculator) inHorizon(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	from, to := c.horizon()
	return !day.Before(from) && !day.After(to)
}

// SlotsFor returns the bookable slots for one club and date, ordered
// by start time.  One slot is emitted per whole-hour boundary in
// [start, end); the boundary at end itself is never offered since it
// has no duration before closing.  Dates outside the booking horizon,
// missing windows and inactive windows all yield an empty result.
func (c *Calculator) SlotsFor(ctx context.Context, clubID uint64, date time.Time) ([]model.Slot, error) {
	if !c.inHorizon(date) {
		return nil, nil
	}
	w, err := c.schedules.WindowForDay(ctx, clubID, model.DayOfWeek(date))
	if err != nil {
		return nil, err
	}
	if w == nil || !w.IsActive {
		return nil, nil
	}
	counts, err := c.usage.ActiveCounts(ctx, clubID, date)
	if err != nil {
		return nil, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	var slots []model.Slot
	for start := hourBoundaryAtOrAfter(w.StartMin); start < w.EndMin; start += 60 {
		end := start + 60
		if end > w.EndMin {
			end = w.EndMin
		}
		remaining := w.MaxCapacity - counts[start]
		if remaining < 0 {
			remaining = 0
		}
		slots = append(slots, model.Slot{
			ClubID:    clubID,
			Date:      day,
			StartMin:  start,
			EndMin:    end,
			Capacity:  w.MaxCapacity,
			Remaining: remaining,
		})
	}
	return slots, nil
}

// SlotAt resolves the single slot starting at startMin on date, or nil
// when the schedule does not offer it.  The ledger calls this inside
// its commit transaction to detect schedules changed between the
// client's availability read and the booking write.
func (c *Calculator) SlotAt(ctx context.Context, clubID uint64, date time.Time, startMin int) (*model.Slot, error) {
	slots, err := c.SlotsFor(ctx, clubID, date)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].StartMin == startMin {
			return &slots[i], nil
		}
	}
	return nil, nil
}

// DaysDisabled returns the set of dates in [from, to] (inclusive, ISO
// "2006-01-02" keys) on which the club offers no slots: dates outside
// the booking horizon and weekdays without an active window.
func (c *Calculator) DaysDisabled(ctx context.Context, clubID uint64, from, to time.Time) (map[string]bool, error) {
	disabled := make(map[string]bool)

	// Resolve each weekday's window once; the range may span months.
	active := make(map[int]bool, 7)
	for d := 1; d <= 7; d++ {
		w, err := c.schedules.WindowForDay(ctx, clubID, d)
		if err != nil {
			return nil, err
		}
		active[d] = w != nil && w.IsActive
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !c.inHorizon(day) || !active[model.DayOfWeek(day)] {
			disabled[day.Format("2006-01-02")] = true
		}
	}
	return disabled, nil
}

// hourBoundaryAtOrAfter rounds a minute of day up to the next whole
// hour, leaving exact boundaries untouched.
func hourBoundaryAtOrAfter(min int) int {
	if min%60 == 0 {
		return min
	}
	return (min/60 + 1) * 60
}
