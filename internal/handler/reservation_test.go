package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/booking"
	"github.com/greenleaf/club-reservation/internal/quota"
)

func errorResponse(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/clubs/1/reservations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if respErr := bookingErrorResponse(c, err); respErr != nil {
		t.Fatalf("bookingErrorResponse returned error: %v", respErr)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return rec.Code, body
}

func TestBookingErrorResponseMonthlyLimitFields(t *testing.T) {
	t.Parallel()

	err := &booking.QuotaViolationError{Err: &quota.MonthlyLimitExceededError{
		Limit:     50,
		Used:      45,
		Available: 5,
		Requested: 10,
	}}
	code, body := errorResponse(t, err)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", code, http.StatusUnprocessableEntity)
	}
	want := map[string]float64{"limit": 50, "used": 45, "available": 5, "requested": 10}
	for field, v := range want {
		got, ok := body[field].(float64)
		if !ok || got != v {
			t.Errorf("body[%q] = %v, want %v", field, body[field], v)
		}
	}
}

func TestBookingErrorResponsePerOrderBoundFields(t *testing.T) {
	t.Parallel()

	t.Run("below minimum", func(t *testing.T) {
		t.Parallel()
		err := &booking.QuotaViolationError{Err: &quota.BelowMinimumError{Min: 5, Requested: 2}}
		code, body := errorResponse(t, err)
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", code, http.StatusUnprocessableEntity)
		}
		if body["min"] != float64(5) || body["requested"] != float64(2) {
			t.Errorf("body = %v, want min=5 requested=2", body)
		}
	})

	t.Run("above maximum", func(t *testing.T) {
		t.Parallel()
		err := &booking.QuotaViolationError{Err: &quota.AboveMaximumError{Max: 20, Requested: 30}}
		code, body := errorResponse(t, err)
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", code, http.StatusUnprocessableEntity)
		}
		if body["max"] != float64(20) || body["requested"] != float64(30) {
			t.Errorf("body = %v, want max=20 requested=30", body)
		}
	})
}

func TestBookingErrorResponseStockAndSlot(t *testing.T) {
	t.Parallel()

	code, body := errorResponse(t, &booking.InsufficientStockError{ProductID: 7, Available: 3, Requested: 5})
	if code != http.StatusConflict {
		t.Fatalf("stock status = %d, want %d", code, http.StatusConflict)
	}
	if body["product_id"] != float64(7) || body["available"] != float64(3) || body["requested"] != float64(5) {
		t.Errorf("stock body = %v, want product_id=7 available=3 requested=5", body)
	}

	code, _ = errorResponse(t, booking.ErrSlotFull)
	if code != http.StatusConflict {
		t.Errorf("slot-full status = %d, want %d", code, http.StatusConflict)
	}

	code, _ = errorResponse(t, booking.ErrUnavailable)
	if code != http.StatusServiceUnavailable {
		t.Errorf("unavailable status = %d, want %d", code, http.StatusServiceUnavailable)
	}
}
