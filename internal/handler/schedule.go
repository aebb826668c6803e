package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/model"
	"github.com/greenleaf/club-reservation/internal/repository"
	"github.com/greenleaf/club-reservation/internal/schedule"
)

// ScheduleHandler manages a club's weekly dispensing schedule.  The
// replace endpoint is staff-only; members read the schedule indirectly
// through availability.
type ScheduleHandler struct {
	Schedules *repository.ScheduleRepo
}

// NewScheduleHandler constructs a ScheduleHandler and panics if the
// repository is nil.
func NewScheduleHandler(schedules *repository.ScheduleRepo) *ScheduleHandler {
	if schedules == nil {
		panic("nil repository passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Schedules: schedules}
}

// scheduleWindowBody is one day's window as sent over the wire.  Times
// use "HH:MM"; day_of_week runs 1 (Monday) through 7 (Sunday).
type scheduleWindowBody struct {
	DayOfWeek   int    `json:"day_of_week"`
	Start       string `json:"start"`
	End         string `json:"end"`
	MaxCapacity int    `json:"max_capacity"`
	IsActive    *bool  `json:"is_active"`
}

type scheduleWindowView struct {
	DayOfWeek   int    `json:"day_of_week"`
	Start       string `json:"start"`
	End         string `json:"end"`
	MaxCapacity int    `json:"max_capacity"`
	IsActive    bool   `json:"is_active"`
}

// ReplaceSchedule handles PUT /v1/clubs/:id/schedule.  The request
// replaces the club's whole week at once.  Malformed input returns 400;
// a parseable week that violates schedule rules returns 422 carrying
// every violation so staff can fix the week in one round trip.
func (h *ScheduleHandler) ReplaceSchedule(c echo.Context) error {
	clubID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	var body struct {
		Windows []scheduleWindowBody `json:"windows"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	windows := make([]model.ScheduleWindow, 0, len(body.Windows))
	for _, w := range body.Windows {
		if w.DayOfWeek < 1 || w.DayOfWeek > 7 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "day_of_week must be 1..7"})
		}
		startMin, err := model.ParseHHMM(w.Start)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start time: " + w.Start})
		}
		endMin, err := model.ParseHHMM(w.End)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end time: " + w.End})
		}
		if w.MaxCapacity < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_capacity must be positive"})
		}
		active := true
		if w.IsActive != nil {
			active = *w.IsActive
		}
		windows = append(windows, model.ScheduleWindow{
			ClubID:      clubID,
			DayOfWeek:   w.DayOfWeek,
			StartMin:    startMin,
			EndMin:      endMin,
			MaxCapacity: w.MaxCapacity,
			IsActive:    active,
		})
	}

	if violations := schedule.Validate(windows); len(violations) > 0 {
		msgs := make([]string, 0, len(violations))
		for _, v := range violations {
			msgs = append(msgs, v.Error())
		}
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":      "schedule validation failed",
			"violations": msgs,
		})
	}

	if err := h.Schedules.ReplaceWeek(c.Request().Context(), clubID, windows); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store schedule"})
	}
	return c.JSON(http.StatusOK, echo.Map{"windows": viewWindows(windows)})
}

// GetSchedule handles GET /v1/clubs/:id/schedule.
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	clubID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	windows, err := h.Schedules.WindowsByClub(c.Request().Context(), clubID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedule"})
	}
	return c.JSON(http.StatusOK, echo.Map{"windows": viewWindows(windows)})
}

func viewWindows(windows []model.ScheduleWindow) []scheduleWindowView {
	out := make([]scheduleWindowView, 0, len(windows))
	for _, w := range windows {
		out = append(out, scheduleWindowView{
			DayOfWeek:   w.DayOfWeek,
			Start:       model.FormatHHMM(w.StartMin),
			End:         model.FormatHHMM(w.EndMin),
			MaxCapacity: w.MaxCapacity,
			IsActive:    w.IsActive,
		})
	}
	return out
}
