package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/booking"
	"github.com/greenleaf/club-reservation/internal/model"
	"github.com/greenleaf/club-reservation/internal/queue"
	"github.com/greenleaf/club-reservation/internal/quota"
	"github.com/greenleaf/club-reservation/internal/repository"
	queue_publisher "github.com/greenleaf/club-reservation/internal/service"
)

// ReservationHandler accepts booking requests from members and lists
// their reservations.  The ledger does all checking and persisting in
// one transaction; this layer only binds, maps errors to status codes
// and publishes the created event.
type ReservationHandler struct {
	Ledger       *booking.Ledger
	Reservations *repository.ReservationRepo
}

func NewReservationHandler(ledger *booking.Ledger, reservations *repository.ReservationRepo) *ReservationHandler {
	if ledger == nil || reservations == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Ledger: ledger, Reservations: reservations}
}

type reservationItemBody struct {
	ProductID uint64 `json:"product_id"`
	Grams     int    `json:"grams"`
}

type reservationItemView struct {
	ProductID         uint64 `json:"product_id"`
	Grams             int    `json:"grams"`
	PricePerGramCents uint32 `json:"price_per_gram_cents"`
}

type reservationView struct {
	ID              uint64                `json:"id"`
	ClubID          uint64                `json:"club_id"`
	Date            string                `json:"date"`
	SlotStart       string                `json:"slot_start"`
	Status          string                `json:"status"`
	TotalGrams      int                   `json:"total_grams"`
	TotalPriceCents uint32                `json:"total_price_cents"`
	Comment         string                `json:"comment,omitempty"`
	Items           []reservationItemView `json:"items"`
	CreatedAt       string                `json:"created_at"`
}

func viewReservation(res *model.Reservation) reservationView {
	items := make([]reservationItemView, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, reservationItemView{
			ProductID:         it.ProductID,
			Grams:             it.Grams,
			PricePerGramCents: it.PricePerGramCents,
		})
	}
	return reservationView{
		ID:              res.ID,
		ClubID:          res.ClubID,
		Date:            res.Date.Format("2006-01-02"),
		SlotStart:       model.FormatHHMM(res.SlotStartMin),
		Status:          res.Status,
		TotalGrams:      res.TotalGrams(),
		TotalPriceCents: res.TotalPriceCents,
		Comment:         res.Comment,
		Items:           items,
		CreatedAt:       res.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/clubs/:id/reservations.  On success it
// responds 201 with the stored reservation and the plaintext pickup
// code, which is never retrievable again.  Rejections map to:
// malformed input 400, unknown product 404, capacity or stock
// conflicts 409, quota violations 422, storage trouble 503.
func (h *ReservationHandler) Create(c echo.Context) error {
	memberID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	clubID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid club id"})
	}
	var body struct {
		Date      string                `json:"date"`
		SlotStart string                `json:"slot_start"`
		Items     []reservationItemBody `json:"items"`
		Comment   string                `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	startMin, err := model.ParseHHMM(body.SlotStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_start must be HH:MM"})
	}

	req := booking.ReservationRequest{
		MemberID: memberID,
		ClubID:   clubID,
		Date:     date,
		StartMin: startMin,
		Comment:  body.Comment,
	}
	for _, it := range body.Items {
		req.Items = append(req.Items, booking.RequestItem{ProductID: it.ProductID, Grams: it.Grams})
	}

	res, pickupCode, err := h.Ledger.Commit(c.Request().Context(), req)
	if err != nil {
		return bookingErrorResponse(c, err)
	}

	go publishEvent(queue.ReservationCreatedQueue, res)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": viewReservation(res),
		"pickup_code": pickupCode,
	})
}

// ListMine handles GET /v1/my-reservations.  Returns all of the
// member's reservations, newest first; an empty array when none exist.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	memberID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Reservations.ListByMember(c.Request().Context(), memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	views := make([]reservationView, 0, len(list))
	for i := range list {
		views = append(views, viewReservation(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// bookingErrorResponse maps ledger and lifecycle errors onto HTTP
// responses.  Domain rejections carry their detail as machine-readable
// fields so the client can adjust the request; transient storage
// failures become 503 so callers know to retry.
func bookingErrorResponse(c echo.Context, err error) error {
	var (
		quotaErr   *booking.QuotaViolationError
		minErr     *quota.BelowMinimumError
		maxErr     *quota.AboveMaximumError
		monthlyErr *quota.MonthlyLimitExceededError
		stockErr   *booking.InsufficientStockError
		productErr *booking.UnknownProductError
	)
	switch {
	case errors.Is(err, booking.ErrNoLineItems):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one item with positive grams is required"})
	case errors.Is(err, booking.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot is not available on that date"})
	case errors.Is(err, booking.ErrSlotFull):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot is fully booked"})
	case errors.As(err, &productErr):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":      "unknown product",
			"product_id": productErr.ProductID,
		})
	case errors.As(err, &stockErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		})
	// QuotaViolationError unwraps to its concrete quota type, so the
	// specific branches must run before the generic fallback.
	case errors.As(err, &monthlyErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":     "monthly limit exceeded",
			"limit":     monthlyErr.Limit,
			"used":      monthlyErr.Used,
			"available": monthlyErr.Available,
			"requested": monthlyErr.Requested,
		})
	case errors.As(err, &minErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":     "below minimum order",
			"min":       minErr.Min,
			"requested": minErr.Requested,
		})
	case errors.As(err, &maxErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":     "above maximum order",
			"max":       maxErr.Max,
			"requested": maxErr.Requested,
		})
	case errors.As(err, &quotaErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "quota violation",
			"detail": quotaErr.Error(),
		})
	case errors.Is(err, booking.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking temporarily unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// publishEvent emits a reservation lifecycle event.  Best effort; the
// reservation is already committed, so a broker outage only costs the
// notification.
func publishEvent(queueName string, res *model.Reservation) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	items := make([]queue.EventItem, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, queue.EventItem{ProductID: it.ProductID, Grams: it.Grams})
	}
	_ = queue_publisher.PublishReservationEvent(ctx, queueName, queue.ReservationEvent{
		ReservationID:   res.ID,
		MemberID:        res.MemberID,
		ClubID:          res.ClubID,
		Date:            res.Date.Format("2006-01-02"),
		SlotStart:       model.FormatHHMM(res.SlotStartMin),
		Status:          res.Status,
		TotalGrams:      res.TotalGrams(),
		TotalPriceCents: res.TotalPriceCents,
		Items:           items,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	})
}
