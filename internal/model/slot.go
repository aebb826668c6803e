package model

import "time"

// Slot is a derived, never-persisted value: one bookable time range
// on a concrete date, computed on demand from the schedule window
// matching the date's weekday.  Remaining is eventually consistent
// with concurrent bookings; the authoritative capacity check happens
// again inside the ledger's commit transaction.
type Slot struct {
	ClubID    uint64    `json:"-"`
	Date      time.Time `json:"-"`
	StartMin  int       `json:"-"`
	EndMin    int       `json:"-"`
	Capacity  int       `json:"-"`
	Remaining int       `json:"remaining_capacity"`
}

// Start renders the slot start as "HH:MM".
func (s Slot) Start() string { return FormatHHMM(s.StartMin) }

// End renders the slot end as "HH:MM".
func (s Slot) End() string { return FormatHHMM(s.EndMin) }
