package handler

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/availability"
)

// AvailabilityHandler exposes the derived slot calendar.  Slots are
// computed on demand from the weekly schedule and current reservation
// counts; nothing here writes state.
type AvailabilityHandler struct {
	Calc *availability.Calculator
}

func NewAvailabilityHandler(calc *availability.Calculator) *AvailabilityHandler {
	if calc == nil {
		panic("nil calculator passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Calc: calc}
}

type slotView struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
}

// GetSlots handles GET /v1/clubs/:id/availability?date=YYYY-MM-DD.  The
// response is an empty slot list for closed, past or out-of-horizon
// days rather than an error; the calendar UI treats those identically.
func (h *AvailabilityHandler) GetSlots(c echo.Context) error {
	clubID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	slots, err := h.Calc.SlotsFor(c.Request().Context(), clubID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute availability"})
	}
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, slotView{
			Start:     s.Start(),
			End:       s.End(),
			Capacity:  s.Capacity,
			Remaining: s.Remaining,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  date.Format("2006-01-02"),
		"slots": views,
	})
}

// GetDisabledDays handles GET /v1/clubs/:id/availability/disabled with
// optional from/to query params, defaulting to the booking horizon.
// It returns the dates a calendar should grey out: closed weekdays,
// inactive windows, past days and days beyond the horizon.
func (h *AvailabilityHandler) GetDisabledDays(c echo.Context) error {
	clubID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	from, to, err := h.dayRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	disabled, err := h.Calc.DaysDisabled(c.Request().Context(), clubID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute disabled days"})
	}
	days := make([]string, 0, len(disabled))
	for d, off := range disabled {
		if off {
			days = append(days, d)
		}
	}
	sort.Strings(days)
	return c.JSON(http.StatusOK, echo.Map{"disabled": days})
}

// dayRange resolves the from/to query params, defaulting to the
// booking horizon.  The requested range is clamped to the horizon:
// days outside it are never bookable, and the clamp keeps a hostile
// from/to pair from driving the per-day scan across centuries.
func (h *AvailabilityHandler) dayRange(c echo.Context) (time.Time, time.Time, error) {
	hFrom, hTo := h.Calc.Horizon()
	from, to := hFrom, hTo
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not precede from")
	}
	if from.Before(hFrom) {
		from = hFrom
	}
	if to.After(hTo) {
		to = hTo
	}
	// A range entirely outside the horizon clamps to from > to, which
	// yields an empty disabled list downstream.
	return from, to, nil
}
