package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/booking"
	"github.com/greenleaf/club-reservation/internal/middleware"
	"github.com/greenleaf/club-reservation/internal/model"
	"github.com/greenleaf/club-reservation/internal/queue"
	"github.com/greenleaf/club-reservation/internal/repository"
	"github.com/greenleaf/club-reservation/internal/utils"
)

// LifecycleHandler moves reservations out of PENDING.  Completion is a
// staff action performed at pickup; cancellation is open to the owning
// member and to staff.  Both transitions are terminal.
type LifecycleHandler struct {
	Lifecycle    *booking.Lifecycle
	Reservations *repository.ReservationRepo
}

func NewLifecycleHandler(lifecycle *booking.Lifecycle, reservations *repository.ReservationRepo) *LifecycleHandler {
	if lifecycle == nil || reservations == nil {
		panic("nil dependency passed to NewLifecycleHandler")
	}
	return &LifecycleHandler{Lifecycle: lifecycle, Reservations: reservations}
}

// Complete handles POST /v1/reservations/:id/complete.  Staff may send
// the member's pickup code in the body; when present it must match the
// stored hash or the request fails with 403 before any state changes.
func (h *LifecycleHandler) Complete(c echo.Context) error {
	resID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		PickupCode string `json:"pickup_code"`
	}
	// Body is optional; ignore bind errors from an empty payload.
	_ = c.Bind(&body)

	ctx := c.Request().Context()
	if body.PickupCode != "" {
		res, err := h.Reservations.GetByID(ctx, resID)
		if err != nil {
			return lifecycleErrorResponse(c, err)
		}
		if !utils.CheckPickupCode(res.PickupCodeHash, body.PickupCode) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "pickup code mismatch"})
		}
	}

	res, err := h.Lifecycle.Transition(ctx, resID, model.StatusCompleted)
	if err != nil {
		return lifecycleErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": viewReservation(res)})
}

// Cancel handles POST /v1/reservations/:id/cancel.  Members may only
// cancel their own reservations; staff may cancel any.  Cancellation
// releases the slot seat and restores product stock atomically with
// the status change, and the freed grams no longer count against the
// member's monthly quota.
func (h *LifecycleHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx := c.Request().Context()
	if getRole(c) != middleware.RoleStaff {
		if _, err := h.Reservations.GetForMember(ctx, resID, userID); err != nil {
			if errors.Is(err, repository.ErrForbidden) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return lifecycleErrorResponse(c, err)
		}
	}

	res, err := h.Lifecycle.Transition(ctx, resID, model.StatusCanceled)
	if err != nil {
		return lifecycleErrorResponse(c, err)
	}

	go publishEvent(queue.ReservationCanceledQueue, res)

	return c.JSON(http.StatusOK, echo.Map{"reservation": viewReservation(res)})
}

// lifecycleErrorResponse maps transition errors onto HTTP responses.
// Both terminal-state rejections are 409 conflicts; a repeated request
// additionally reports the state the reservation already reached so
// double submissions are visible to the caller.
func lifecycleErrorResponse(c echo.Context, err error) error {
	var (
		terminalErr   *booking.AlreadyInTerminalStateError
		transitionErr *booking.InvalidTransitionError
	)
	switch {
	case errors.Is(err, booking.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.As(err, &terminalErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  "reservation already in terminal state",
			"status": terminalErr.Status,
		})
	case errors.As(err, &transitionErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid transition",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.Is(err, booking.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking temporarily unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
