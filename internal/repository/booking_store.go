package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/greenleaf/club-reservation/internal/model"
)

// BookingStore composes the per-entity repositories into the single
// transactional surface the booking ledger and lifecycle operate on.
// Every method joins the transaction carried in ctx, so a WithTx
// closure sees one consistent view across slots, stock and
// reservations.
type BookingStore struct {
	db           *sql.DB
	products     *ProductRepo
	counters     *SlotCounterRepo
	reservations *ReservationRepo
}

// NewBookingStore returns a BookingStore over the given repositories.
func NewBookingStore(db *sql.DB, products *ProductRepo, counters *SlotCounterRepo, reservations *ReservationRepo) *BookingStore {
	return &BookingStore{db: db, products: products, counters: counters, reservations: reservations}
}

func (s *BookingStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, s.db, fn)
}

func (s *BookingStore) LockSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) (int, error) {
	return s.counters.LockSlotCount(ctx, clubID, date, startMin)
}

func (s *BookingStore) IncrementSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) error {
	return s.counters.IncrementSlotCount(ctx, clubID, date, startMin)
}

func (s *BookingStore) DecrementSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) error {
	return s.counters.DecrementSlotCount(ctx, clubID, date, startMin)
}

func (s *BookingStore) ProductsByIDs(ctx context.Context, clubID uint64, ids []uint64) (map[uint64]model.Product, error) {
	return s.products.ProductsByIDs(ctx, clubID, ids)
}

func (s *BookingStore) CheckAndReserveStock(ctx context.Context, productID uint64, grams int) (int, bool, error) {
	return s.products.CheckAndReserveStock(ctx, productID, grams)
}

func (s *BookingStore) ReleaseStock(ctx context.Context, productID uint64, grams int) error {
	return s.products.ReleaseStock(ctx, productID, grams)
}

func (s *BookingStore) CreateReservation(ctx context.Context, res *model.Reservation) error {
	return s.reservations.CreateReservation(ctx, res)
}

func (s *BookingStore) GetReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.reservations.GetReservationForUpdate(ctx, id)
}

func (s *BookingStore) UpdateReservationStatus(ctx context.Context, id uint64, status string) error {
	return s.reservations.UpdateReservationStatus(ctx, id, status)
}
