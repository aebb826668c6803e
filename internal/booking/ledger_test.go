package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/greenleaf/club-reservation/internal/clock"
	"github.com/greenleaf/club-reservation/internal/model"
	"github.com/greenleaf/club-reservation/internal/quota"
	"github.com/greenleaf/club-reservation/internal/utils"
)

// Monday 2025-06-02 with "now" pinned to the preceding Sunday.
var (
	ledgerNow    = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ledgerMonday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
)

func intPtr(n int) *int { return &n }

// bookingFixture: Monday 09:00-13:00, capacity 2, one product with
// 100g of stock at 10 cents/g.
func bookingFixture(capacity int) *fakeStore {
	store := newFakeStore()
	store.windows[1] = &model.ScheduleWindow{
		ClubID: 1, DayOfWeek: 1, StartMin: 9 * 60, EndMin: 13 * 60,
		MaxCapacity: capacity, IsActive: true,
	}
	store.products[7] = model.Product{ID: 7, ClubID: 1, Name: "house blend", PricePerGramCents: 10, StockGrams: 100}
	return store
}

func request(grams int) ReservationRequest {
	return ReservationRequest{
		MemberID: 42,
		ClubID:   1,
		Date:     ledgerMonday,
		StartMin: 10 * 60,
		Items:    []RequestItem{{ProductID: 7, Grams: grams}},
		Comment:  "morning pickup",
	}
}

func TestLedgerCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewFixed(ledgerNow)

	t.Run("commits a pending reservation with price, items and pickup code", func(t *testing.T) {
		store := bookingFixture(2)
		ledger := newLedger(store, clk)

		res, code, err := ledger.Commit(ctx, request(5))
		if err != nil {
			t.Fatalf("expected commit to succeed, got %v", err)
		}
		if res.ID == 0 || res.Status != model.StatusPending {
			t.Fatalf("expected persisted PENDING reservation, got %+v", res)
		}
		if res.TotalPriceCents != 50 {
			t.Fatalf("expected total 50 cents, got %d", res.TotalPriceCents)
		}
		if res.TotalGrams() != 5 {
			t.Fatalf("expected 5g total, got %d", res.TotalGrams())
		}
		if code == "" || !utils.CheckPickupCode(res.PickupCodeHash, code) {
			t.Fatalf("expected pickup code to verify against stored hash")
		}
		if got := store.stockOf(7); got != 95 {
			t.Fatalf("expected stock 95 after commit, got %d", got)
		}
		if got := store.countAt(1, ledgerMonday, 10*60); got != 1 {
			t.Fatalf("expected slot counter 1, got %d", got)
		}
	})

	t.Run("rejects empty and invalid line items", func(t *testing.T) {
		ledger := newLedger(bookingFixture(2), clk)
		if _, _, err := ledger.Commit(ctx, ReservationRequest{MemberID: 42, ClubID: 1, Date: ledgerMonday, StartMin: 10 * 60}); !errors.Is(err, ErrNoLineItems) {
			t.Fatalf("expected ErrNoLineItems, got %v", err)
		}
		req := request(0)
		if _, _, err := ledger.Commit(ctx, req); !errors.Is(err, ErrNoLineItems) {
			t.Fatalf("expected ErrNoLineItems for zero grams, got %v", err)
		}
	})

	t.Run("slot unavailable when the schedule does not offer it", func(t *testing.T) {
		store := bookingFixture(2)
		ledger := newLedger(store, clk)

		req := request(5)
		req.StartMin = 14 * 60 // after close
		if _, _, err := ledger.Commit(ctx, req); !errors.Is(err, ErrSlotUnavailable) {
			t.Fatalf("expected ErrSlotUnavailable, got %v", err)
		}

		req = request(5)
		req.Date = ledgerMonday.AddDate(0, 0, 1) // Tuesday: no window
		if _, _, err := ledger.Commit(ctx, req); !errors.Is(err, ErrSlotUnavailable) {
			t.Fatalf("expected ErrSlotUnavailable for unscheduled day, got %v", err)
		}

		if got := store.stockOf(7); got != 100 {
			t.Fatalf("rejections must not touch stock, got %d", got)
		}
	})

	t.Run("slot full once capacity is reached", func(t *testing.T) {
		store := bookingFixture(2)
		ledger := newLedger(store, clk)

		for i := 0; i < 2; i++ {
			if _, _, err := ledger.Commit(ctx, request(1)); err != nil {
				t.Fatalf("booking %d should succeed, got %v", i+1, err)
			}
		}
		if _, _, err := ledger.Commit(ctx, request(1)); !errors.Is(err, ErrSlotFull) {
			t.Fatalf("expected ErrSlotFull on third booking, got %v", err)
		}
		if got := store.countAt(1, ledgerMonday, 10*60); got != 2 {
			t.Fatalf("counter must stay at capacity, got %d", got)
		}
	})

	t.Run("quota violation carries monthly detail and leaves no state", func(t *testing.T) {
		store := bookingFixture(4)
		store.limit = &model.GramsLimit{MonthlyMax: intPtr(50)}
		ledger := newLedger(store, clk)

		// Burn 45g of the member's June budget.
		if _, _, err := ledger.Commit(ctx, request(45)); err != nil {
			t.Fatalf("expected first booking to pass, got %v", err)
		}

		_, _, err := ledger.Commit(ctx, request(10))
		var qv *QuotaViolationError
		if !errors.As(err, &qv) {
			t.Fatalf("expected QuotaViolationError, got %v", err)
		}
		var ml *quota.MonthlyLimitExceededError
		if !errors.As(err, &ml) {
			t.Fatalf("expected wrapped MonthlyLimitExceededError, got %v", err)
		}
		if ml.Limit != 50 || ml.Used != 45 || ml.Available != 5 || ml.Requested != 10 {
			t.Fatalf("unexpected quota detail: %+v", ml)
		}
		if got := store.stockOf(7); got != 55 {
			t.Fatalf("rejected booking must not decrement stock, got %d", got)
		}
		if got := store.countAt(1, ledgerMonday, 10*60); got != 1 {
			t.Fatalf("rejected booking must not advance the counter, got %d", got)
		}

		// Booking the exact remainder succeeds.
		if _, _, err := ledger.Commit(ctx, request(5)); err != nil {
			t.Fatalf("expected booking the remaining 5g to pass, got %v", err)
		}
	})

	t.Run("insufficient stock aborts the whole commit", func(t *testing.T) {
		store := bookingFixture(4)
		store.products[8] = model.Product{ID: 8, ClubID: 1, Name: "reserve", PricePerGramCents: 20, StockGrams: 3}
		ledger := newLedger(store, clk)

		req := request(10)
		req.Items = append(req.Items, RequestItem{ProductID: 8, Grams: 5})
		_, _, err := ledger.Commit(ctx, req)
		var is *InsufficientStockError
		if !errors.As(err, &is) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if is.ProductID != 8 || is.Available != 3 || is.Requested != 5 {
			t.Fatalf("unexpected stock detail: %+v", is)
		}
		// The first item's decrement must have rolled back too.
		if got := store.stockOf(7); got != 100 {
			t.Fatalf("expected no partial stock decrement, got %d", got)
		}
		if got := store.countAt(1, ledgerMonday, 10*60); got != 0 {
			t.Fatalf("expected counter untouched, got %d", got)
		}
	})

	t.Run("unknown product is rejected before stock moves", func(t *testing.T) {
		store := bookingFixture(4)
		ledger := newLedger(store, clk)
		req := request(5)
		req.Items = []RequestItem{{ProductID: 99, Grams: 5}}
		_, _, err := ledger.Commit(ctx, req)
		var up *UnknownProductError
		if !errors.As(err, &up) || up.ProductID != 99 {
			t.Fatalf("expected UnknownProductError{99}, got %v", err)
		}
	})
}

// Spec scenario: capacity C, N concurrent commits for the same slot;
// exactly min(N, C) succeed and the rest see ErrSlotFull.
func TestLedgerCommitConcurrency(t *testing.T) {
	t.Parallel()
	const (
		capacity = 2
		callers  = 8
	)
	store := bookingFixture(capacity)
	ledger := newLedger(store, clock.NewFixed(ledgerNow))

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = ledger.Commit(context.Background(), request(1))
		}(i)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != capacity {
		t.Fatalf("expected exactly %d successful commits, got %d", capacity, succeeded)
	}
	if full != callers-capacity {
		t.Fatalf("expected %d ErrSlotFull, got %d", callers-capacity, full)
	}
	if got := store.countAt(1, ledgerMonday, 10*60); got != capacity {
		t.Fatalf("counter must never exceed capacity, got %d", got)
	}
}
