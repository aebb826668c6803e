package schedule

import (
	"errors"
	"testing"

	"github.com/greenleaf/club-reservation/internal/model"
)

func window(day, startMin, endMin int) model.ScheduleWindow {
	return model.ScheduleWindow{
		ClubID:      1,
		DayOfWeek:   day,
		StartMin:    startMin,
		EndMin:      endMin,
		MaxCapacity: 4,
		IsActive:    true,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a full valid week", func(t *testing.T) {
		var week []model.ScheduleWindow
		for d := 1; d <= 7; d++ {
			week = append(week, window(d, 9*60, 13*60))
		}
		if errs := Validate(week); len(errs) != 0 {
			t.Fatalf("expected no violations, got %v", errs)
		}
	})

	t.Run("accepts windows touching the policy bounds", func(t *testing.T) {
		if errs := Validate([]model.ScheduleWindow{window(1, PolicyOpenMin, PolicyCloseMin)}); len(errs) != 0 {
			t.Fatalf("expected no violations, got %v", errs)
		}
	})

	t.Run("rejects duplicate days", func(t *testing.T) {
		errs := Validate([]model.ScheduleWindow{
			window(3, 9*60, 11*60),
			window(3, 13*60, 15*60),
		})
		var dup *DuplicateDayError
		if !findErr(errs, &dup) {
			t.Fatalf("expected DuplicateDayError, got %v", errs)
		}
		if dup.DayOfWeek != 3 {
			t.Fatalf("expected day 3, got %d", dup.DayOfWeek)
		}
	})

	t.Run("rejects hours outside policy window", func(t *testing.T) {
		errs := Validate([]model.ScheduleWindow{window(1, 7*60, 12*60)})
		var oop *OutOfPolicyHoursError
		if !findErr(errs, &oop) {
			t.Fatalf("expected OutOfPolicyHoursError, got %v", errs)
		}
		errs = Validate([]model.ScheduleWindow{window(1, 10*60, 17*60)})
		if !findErr(errs, &oop) {
			t.Fatalf("expected OutOfPolicyHoursError for late close, got %v", errs)
		}
	})

	t.Run("rejects inverted and empty ranges", func(t *testing.T) {
		var inv *InvertedRangeError
		errs := Validate([]model.ScheduleWindow{window(2, 14*60, 10*60)})
		if !findErr(errs, &inv) {
			t.Fatalf("expected InvertedRangeError, got %v", errs)
		}
		errs = Validate([]model.ScheduleWindow{window(2, 12*60, 12*60)})
		if !findErr(errs, &inv) {
			t.Fatalf("expected InvertedRangeError for zero-length window, got %v", errs)
		}
	})

	t.Run("reports same-day overlap", func(t *testing.T) {
		errs := Validate([]model.ScheduleWindow{
			window(5, 9*60, 12*60),
			window(5, 11*60, 14*60),
		})
		var ov *OverlapError
		if !findErr(errs, &ov) {
			t.Fatalf("expected OverlapError, got %v", errs)
		}
		if ov.DayOfWeek != 5 {
			t.Fatalf("expected overlap on day 5, got %d", ov.DayOfWeek)
		}
	})

	t.Run("collects every violation instead of short-circuiting", func(t *testing.T) {
		errs := Validate([]model.ScheduleWindow{
			window(1, 7*60, 6*60),  // out of policy and inverted
			window(4, 9*60, 12*60), // fine
			window(4, 9*60, 12*60), // duplicate of day 4
		})
		var (
			dup *DuplicateDayError
			oop *OutOfPolicyHoursError
			inv *InvertedRangeError
		)
		if !findErr(errs, &dup) || !findErr(errs, &oop) || !findErr(errs, &inv) {
			t.Fatalf("expected duplicate, policy and inverted violations together, got %v", errs)
		}
	})
}

// findErr scans a violation list for the first error matching target's type.
func findErr(errs []error, target any) bool {
	for _, e := range errs {
		if errors.As(e, target) {
			return true
		}
	}
	return false
}
