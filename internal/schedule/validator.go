// Package schedule validates a club's weekly dispensing schedule.
// A club always submits its full week as one replacement set; the
// validator checks the set's structural invariants and reports every
// violation it finds so staff can fix the whole form in one pass.
package schedule

import (
	"fmt"
	"sort"

	"github.com/greenleaf/club-reservation/internal/model"
)

// Club-wide policy window.  Windows must open and close inside these
// wall-clock bounds regardless of the club's own preferences.
const (
	PolicyOpenMin  = 8 * 60  // 08:00
	PolicyCloseMin = 16 * 60 // 16:00
)

// DuplicateDayError reports two or more windows sharing a day-of-week.
type DuplicateDayError struct {
	DayOfWeek int
}

func (e *DuplicateDayError) Error() string {
	return fmt.Sprintf("duplicate window for day %d", e.DayOfWeek)
}

// OutOfPolicyHoursError reports a window whose start or end falls
// outside the club-wide policy window.
type OutOfPolicyHoursError struct {
	DayOfWeek int
	StartMin  int
	EndMin    int
}

func (e *OutOfPolicyHoursError) Error() string {
	return fmt.Sprintf("day %d window %s-%s outside policy hours %s-%s",
		e.DayOfWeek, model.FormatHHMM(e.StartMin), model.FormatHHMM(e.EndMin),
		model.FormatHHMM(PolicyOpenMin), model.FormatHHMM(PolicyCloseMin))
}

// InvertedRangeError reports a window that closes at or before it opens.
type InvertedRangeError struct {
	DayOfWeek int
	StartMin  int
	EndMin    int
}

func (e *InvertedRangeError) Error() string {
	return fmt.Sprintf("day %d window ends (%s) at or before it starts (%s)",
		e.DayOfWeek, model.FormatHHMM(e.EndMin), model.FormatHHMM(e.StartMin))
}

// OverlapError reports two same-day windows with intersecting
// [start, end) ranges.  With the one-window-per-day rule in force any
// same-day pair is already a duplicate; the check stays so a future
// multi-window-per-day schema keeps the guard.
type OverlapError struct {
	DayOfWeek int
	AStartMin int
	AEndMin   int
	BStartMin int
	BEndMin   int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("day %d windows %s-%s and %s-%s overlap",
		e.DayOfWeek,
		model.FormatHHMM(e.AStartMin), model.FormatHHMM(e.AEndMin),
		model.FormatHHMM(e.BStartMin), model.FormatHHMM(e.BEndMin))
}

// Validate checks a full replacement window set for one club and
// returns every violation found, in check order: duplicate days,
// out-of-policy hours, inverted ranges, overlaps.  A nil result means
// the set may be stored.  Capacity and day-of-week range are expected
// to be enforced at bind time by the transport layer.
func Validate(windows []model.ScheduleWindow) []error {
	var violations []error

	// Duplicate days, reported once per offending day.
	byDay := make(map[int][]model.ScheduleWindow, len(windows))
	for _, w := range windows {
		byDay[w.DayOfWeek] = append(byDay[w.DayOfWeek], w)
	}
	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)
	for _, d := range days {
		if len(byDay[d]) > 1 {
			violations = append(violations, &DuplicateDayError{DayOfWeek: d})
		}
	}

	for _, w := range windows {
		if w.StartMin < PolicyOpenMin || w.StartMin > PolicyCloseMin ||
			w.EndMin < PolicyOpenMin || w.EndMin > PolicyCloseMin {
			violations = append(violations, &OutOfPolicyHoursError{
				DayOfWeek: w.DayOfWeek, StartMin: w.StartMin, EndMin: w.EndMin,
			})
		}
	}

	for _, w := range windows {
		if w.EndMin <= w.StartMin {
			violations = append(violations, &InvertedRangeError{
				DayOfWeek: w.DayOfWeek, StartMin: w.StartMin, EndMin: w.EndMin,
			})
		}
	}

	for _, d := range days {
		group := byDay[d]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.StartMin < b.EndMin && b.StartMin < a.EndMin {
					violations = append(violations, &OverlapError{
						DayOfWeek: d,
						AStartMin: a.StartMin, AEndMin: a.EndMin,
						BStartMin: b.StartMin, BEndMin: b.EndMin,
					})
				}
			}
		}
	}

	return violations
}
