// Package booking holds the transactional core of the reservation
// engine: the ledger that commits reservations against slot capacity,
// member quota and product stock, and the lifecycle state machine
// that governs a reservation after commit.
package booking

import (
	"context"
	"time"

	"github.com/greenleaf/club-reservation/internal/availability"
	"github.com/greenleaf/club-reservation/internal/clock"
	"github.com/greenleaf/club-reservation/internal/model"
	"github.com/greenleaf/club-reservation/internal/quota"
	"github.com/greenleaf/club-reservation/internal/utils"
)

// Store is the persistence port of the ledger and lifecycle.  Every
// method invoked inside a WithTx closure joins that transaction; the
// MySQL implementation carries the tx through the context.  Lock*
// and *ForUpdate methods must take row locks so commits racing for
// the same slot or the same reservation serialize.
type Store interface {
	// WithTx runs fn inside one transaction.  A non-nil error from fn
	// rolls everything back; commit errors propagate to the caller.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// LockSlotCount returns the active reservation count for a slot,
	// holding an exclusive row lock until the transaction ends.  The
	// counter row is created on first use.
	LockSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) (int, error)
	IncrementSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) error
	DecrementSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) error

	// ProductsByIDs loads the club's products for the given IDs.
	// Missing IDs are simply absent from the result map.
	ProductsByIDs(ctx context.Context, clubID uint64, ids []uint64) (map[uint64]model.Product, error)

	// CheckAndReserveStock atomically decrements a product's stock.
	// When the stock cannot cover grams it reports ok=false together
	// with the grams still available, leaving the row untouched.
	CheckAndReserveStock(ctx context.Context, productID uint64, grams int) (available int, ok bool, err error)
	ReleaseStock(ctx context.Context, productID uint64, grams int) error

	// CreateReservation persists a reservation plus its line items and
	// populates generated IDs and timestamps.
	CreateReservation(ctx context.Context, res *model.Reservation) error

	// GetReservationForUpdate loads a reservation with its items under
	// an exclusive row lock, or ErrReservationNotFound.
	GetReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uint64, status string) error
}

// ReservationRequest is the inbound booking contract.
type ReservationRequest struct {
	MemberID uint64
	ClubID   uint64
	Date     time.Time
	StartMin int
	Items    []RequestItem
	Comment  string
}

// RequestItem is one requested product line.
type RequestItem struct {
	ProductID uint64
	Grams     int
}

func (r ReservationRequest) totalGrams() int {
	total := 0
	for _, it := range r.Items {
		total += it.Grams
	}
	return total
}

// Ledger commits reservations.  The whole check-then-persist sequence
// runs as one transaction per commit: capacity check and counter
// increment form a single critical section under the slot row lock,
// and stock rows use compare-and-decrement, so concurrent commits can
// never overshoot capacity or oversell a product.
type Ledger struct {
	store Store
	avail *availability.Calculator
	quota *quota.Tracker
	clk   clock.Clock
}

// NewLedger wires a Ledger to its store and the availability and
// quota components it consults before persisting.
func NewLedger(store Store, avail *availability.Calculator, q *quota.Tracker, clk clock.Clock) *Ledger {
	return &Ledger{store: store, avail: avail, quota: q, clk: clk}
}

// Commit validates and persists a reservation.  On success it returns
// the stored reservation with status PENDING and the plaintext pickup
// code, which is shown to the member exactly once (only its bcrypt
// hash is stored).  On any rejection no capacity, quota or stock
// state is mutated.  Non-domain failures surface as ErrUnavailable.
func (l *Ledger) Commit(ctx context.Context, req ReservationRequest) (*model.Reservation, string, error) {
	if len(req.Items) == 0 {
		return nil, "", ErrNoLineItems
	}
	for _, it := range req.Items {
		if it.Grams <= 0 || it.ProductID == 0 {
			return nil, "", ErrNoLineItems
		}
	}

	pickupCode, pickupHash, err := utils.NewPickupCode()
	if err != nil {
		return nil, "", wrapTransient(err)
	}

	var res *model.Reservation
	err = l.store.WithTx(ctx, func(txCtx context.Context) error {
		// Step 1: the slot must still be offered by the current
		// schedule, and must have capacity under the row lock.
		slot, err := l.avail.SlotAt(txCtx, req.ClubID, req.Date, req.StartMin)
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrSlotUnavailable
		}
		count, err := l.store.LockSlotCount(txCtx, req.ClubID, req.Date, req.StartMin)
		if err != nil {
			return err
		}
		if count >= slot.Capacity {
			return ErrSlotFull
		}

		// Step 2: quota, against the same snapshot.
		if err := l.quota.CheckOrder(txCtx, req.MemberID, req.ClubID, req.totalGrams(), req.Date); err != nil {
			switch err.(type) {
			case *quota.BelowMinimumError, *quota.AboveMaximumError, *quota.MonthlyLimitExceededError:
				return &QuotaViolationError{Err: err}
			}
			return err
		}

		// Step 3: reserve stock per line item.  The first shortfall
		// aborts the transaction, rolling back earlier decrements.
		ids := make([]uint64, 0, len(req.Items))
		for _, it := range req.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := l.store.ProductsByIDs(txCtx, req.ClubID, ids)
		if err != nil {
			return err
		}
		items := make([]model.ReservationItem, 0, len(req.Items))
		var totalCents uint32
		for _, it := range req.Items {
			p, ok := products[it.ProductID]
			if !ok {
				return &UnknownProductError{ProductID: it.ProductID}
			}
			available, ok, err := l.store.CheckAndReserveStock(txCtx, it.ProductID, it.Grams)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductID: it.ProductID, Available: available, Requested: it.Grams}
			}
			items = append(items, model.ReservationItem{
				ProductID:         it.ProductID,
				Grams:             it.Grams,
				PricePerGramCents: p.PricePerGramCents,
			})
			totalCents += p.PricePerGramCents * uint32(it.Grams)
		}

		// Steps 4 and 5: persist, then advance the locked counter so
		// the next commit against this slot sees our booking.
		day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, time.UTC)
		res = &model.Reservation{
			MemberID:        req.MemberID,
			ClubID:          req.ClubID,
			Date:            day,
			SlotStartMin:    req.StartMin,
			Status:          model.StatusPending,
			TotalPriceCents: totalCents,
			Comment:         req.Comment,
			PickupCodeHash:  pickupHash,
			Items:           items,
		}
		if err := l.store.CreateReservation(txCtx, res); err != nil {
			return err
		}
		return l.store.IncrementSlotCount(txCtx, req.ClubID, req.Date, req.StartMin)
	})
	if err != nil {
		return nil, "", wrapTransient(err)
	}
	return res, pickupCode, nil
}
