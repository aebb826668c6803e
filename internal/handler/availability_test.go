package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/availability"
	"github.com/greenleaf/club-reservation/internal/clock"
)

func disabledDaysContext(rawQuery string) echo.Context {
	e := echo.New()
	target := "/v1/clubs/1/availability/disabled"
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/clubs/:id/availability/disabled")
	c.SetParamNames("id")
	c.SetParamValues("1")
	return c
}

func TestDayRangeClampedToHorizon(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewAvailabilityHandler(availability.NewCalculator(nil, nil, clock.NewFixed(now)))
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	horizonEnd := today.AddDate(0, 1, 0)

	t.Run("defaults to horizon", func(t *testing.T) {
		t.Parallel()
		from, to, err := h.dayRange(disabledDaysContext(""))
		if err != nil {
			t.Fatalf("dayRange: %v", err)
		}
		if !from.Equal(today) || !to.Equal(horizonEnd) {
			t.Errorf("range = [%s, %s], want [%s, %s]", from, to, today, horizonEnd)
		}
	})

	t.Run("oversized range clamps", func(t *testing.T) {
		t.Parallel()
		from, to, err := h.dayRange(disabledDaysContext("from=0001-01-01&to=9999-12-31"))
		if err != nil {
			t.Fatalf("dayRange: %v", err)
		}
		if !from.Equal(today) || !to.Equal(horizonEnd) {
			t.Errorf("range = [%s, %s], want clamped to [%s, %s]", from, to, today, horizonEnd)
		}
	})

	t.Run("range inside horizon untouched", func(t *testing.T) {
		t.Parallel()
		from, to, err := h.dayRange(disabledDaysContext("from=2025-06-05&to=2025-06-10"))
		if err != nil {
			t.Fatalf("dayRange: %v", err)
		}
		if !from.Equal(time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)) ||
			!to.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("range = [%s, %s], want [2025-06-05, 2025-06-10]", from, to)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		t.Parallel()
		if _, _, err := h.dayRange(disabledDaysContext("from=2025-06-10&to=2025-06-05")); err == nil {
			t.Error("expected error for inverted range")
		}
	})

	t.Run("range entirely in the past collapses", func(t *testing.T) {
		t.Parallel()
		from, to, err := h.dayRange(disabledDaysContext("from=2025-01-01&to=2025-01-31"))
		if err != nil {
			t.Fatalf("dayRange: %v", err)
		}
		if !to.Before(from) {
			t.Errorf("range = [%s, %s], want an empty (from > to) range", from, to)
		}
	})
}
