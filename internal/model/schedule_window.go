package model

import (
	"fmt"
	"time"
)

// ScheduleWindow defines one dispensing window in a club's weekly
// schedule.  At most one window exists per (club, day-of-week); the
// whole week is replaced atomically when club staff resubmit their
// schedule.  Times are wall-clock minutes from midnight so that no
// timezone conversion happens below the transport layer.
//
// Fields:
//
//	ID          – primary key identifier.
//	ClubID      – club owning this window.
//	DayOfWeek   – 1=Monday .. 7=Sunday.
//	StartMin    – opening minute of day (inclusive).
//	EndMin      – closing minute of day (exclusive).
//	MaxCapacity – maximum concurrent reservations per derived slot.
//	IsActive    – whether the window currently produces slots.
//	CreatedAt   – creation timestamp.
type ScheduleWindow struct {
	ID          uint64    // schedule_windows.id
	ClubID      uint64    // schedule_windows.club_id
	DayOfWeek   int       // schedule_windows.day_of_week
	StartMin    int       // schedule_windows.start_min
	EndMin      int       // schedule_windows.end_min
	MaxCapacity int       // schedule_windows.max_capacity
	IsActive    bool      // schedule_windows.is_active
	CreatedAt   time.Time // schedule_windows.created_at
}

// DayOfWeek converts a calendar date to the schedule convention
// (1=Monday .. 7=Sunday).  time.Weekday puts Sunday at 0.
func DayOfWeek(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ParseHHMM parses a wall-clock "HH:MM" string into minutes from
// midnight.  Seconds and timezone designators are rejected.
func ParseHHMM(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatHHMM renders minutes from midnight as "HH:MM".
func FormatHHMM(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
