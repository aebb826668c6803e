package model

import (
	"testing"
	"time"
)

func TestParseHHMM(t *testing.T) {
	t.Parallel()

	valid := map[string]int{
		"00:00": 0,
		"08:00": 480,
		"09:30": 570,
		"16:00": 960,
		"23:59": 1439,
	}
	for in, want := range valid {
		got, err := ParseHHMM(in)
		if err != nil {
			t.Errorf("ParseHHMM(%q): unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseHHMM(%q) = %d, want %d", in, got, want)
		}
	}

	invalid := []string{"", "9:00", "09:5", "24:00", "12:60", "09-30", "09:30:00", "ab:cd"}
	for _, in := range invalid {
		if _, err := ParseHHMM(in); err == nil {
			t.Errorf("ParseHHMM(%q): expected error, got none", in)
		}
	}
}

func TestFormatHHMM(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		0:    "00:00",
		480:  "08:00",
		570:  "09:30",
		1439: "23:59",
	}
	for in, want := range cases {
		if got := FormatHHMM(in); got != want {
			t.Errorf("FormatHHMM(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDayOfWeek(t *testing.T) {
	t.Parallel()

	// 2025-06-02 is a Monday.
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		want := i + 1
		if got := DayOfWeek(monday.AddDate(0, 0, i)); got != want {
			t.Errorf("DayOfWeek(%s) = %d, want %d", monday.AddDate(0, 0, i).Format("2006-01-02"), got, want)
		}
	}
}
