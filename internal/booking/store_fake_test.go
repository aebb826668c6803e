package booking

import (
	"context"
	"sync"
	"time"

	"github.com/greenleaf/club-reservation/internal/availability"
	"github.com/greenleaf/club-reservation/internal/clock"
	"github.com/greenleaf/club-reservation/internal/model"
	"github.com/greenleaf/club-reservation/internal/quota"
)

type slotKey struct {
	club  uint64
	date  string
	start int
}

// fakeStore is an in-memory Store, plus the availability and quota
// source interfaces, so one fixture backs the whole commit path.  A
// single mutex plays the role of the database's row locks: WithTx
// holds it for the duration of the closure, which serializes
// concurrent commits the way SELECT ... FOR UPDATE does, and a
// snapshot taken at transaction start restores state on rollback.
type fakeStore struct {
	mu           sync.Mutex
	windows      map[int]*model.ScheduleWindow
	limit        *model.GramsLimit
	counters     map[slotKey]int
	products     map[uint64]model.Product
	reservations map[uint64]*model.Reservation
	nextID       uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		windows:      map[int]*model.ScheduleWindow{},
		counters:     map[slotKey]int{},
		products:     map[uint64]model.Product{},
		reservations: map[uint64]*model.Reservation{},
	}
}

func key(clubID uint64, date time.Time, startMin int) slotKey {
	return slotKey{club: clubID, date: date.Format("2006-01-02"), start: startMin}
}

func (s *fakeStore) WithTx(_ context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make(map[slotKey]int, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}
	products := make(map[uint64]model.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	reservations := make(map[uint64]*model.Reservation, len(s.reservations))
	for k, v := range s.reservations {
		cp := *v
		reservations[k] = &cp
	}
	nextID := s.nextID

	if err := fn(context.Background()); err != nil {
		s.counters = counters
		s.products = products
		s.reservations = reservations
		s.nextID = nextID
		return err
	}
	return nil
}

func (s *fakeStore) LockSlotCount(_ context.Context, clubID uint64, date time.Time, startMin int) (int, error) {
	return s.counters[key(clubID, date, startMin)], nil
}

func (s *fakeStore) IncrementSlotCount(_ context.Context, clubID uint64, date time.Time, startMin int) error {
	s.counters[key(clubID, date, startMin)]++
	return nil
}

func (s *fakeStore) DecrementSlotCount(_ context.Context, clubID uint64, date time.Time, startMin int) error {
	k := key(clubID, date, startMin)
	if s.counters[k] > 0 {
		s.counters[k]--
	}
	return nil
}

func (s *fakeStore) ProductsByIDs(_ context.Context, clubID uint64, ids []uint64) (map[uint64]model.Product, error) {
	out := make(map[uint64]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.ClubID == clubID {
			out[id] = p
		}
	}
	return out, nil
}

func (s *fakeStore) CheckAndReserveStock(_ context.Context, productID uint64, grams int) (int, bool, error) {
	p := s.products[productID]
	if p.StockGrams < grams {
		return p.StockGrams, false, nil
	}
	p.StockGrams -= grams
	s.products[productID] = p
	return p.StockGrams, true, nil
}

func (s *fakeStore) ReleaseStock(_ context.Context, productID uint64, grams int) error {
	p := s.products[productID]
	p.StockGrams += grams
	s.products[productID] = p
	return nil
}

func (s *fakeStore) CreateReservation(_ context.Context, res *model.Reservation) error {
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *fakeStore) GetReservationForUpdate(_ context.Context, id uint64) (*model.Reservation, error) {
	res, ok := s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *fakeStore) UpdateReservationStatus(_ context.Context, id uint64, status string) error {
	res, ok := s.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	res.Status = status
	res.UpdatedAt = time.Now().UTC()
	return nil
}

// availability.ScheduleSource
func (s *fakeStore) WindowForDay(_ context.Context, _ uint64, day int) (*model.ScheduleWindow, error) {
	return s.windows[day], nil
}

// availability.SlotUsageSource
func (s *fakeStore) ActiveCounts(_ context.Context, clubID uint64, date time.Time) (map[int]int, error) {
	out := map[int]int{}
	d := date.Format("2006-01-02")
	for k, v := range s.counters {
		if k.club == clubID && k.date == d {
			out[k.start] = v
		}
	}
	return out, nil
}

// quota.LimitSource
func (s *fakeStore) LimitForClub(context.Context, uint64) (*model.GramsLimit, error) {
	return s.limit, nil
}

// quota.UsageSource
func (s *fakeStore) MonthlyGrams(_ context.Context, memberID uint64, start, end time.Time) (int, error) {
	total := 0
	for _, res := range s.reservations {
		if res.MemberID != memberID || res.Status == model.StatusCanceled {
			continue
		}
		if res.Date.Before(start) || !res.Date.Before(end) {
			continue
		}
		total += res.TotalGrams()
	}
	return total, nil
}

func (s *fakeStore) stockOf(productID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].StockGrams
}

func (s *fakeStore) countAt(clubID uint64, date time.Time, startMin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key(clubID, date, startMin)]
}

// newLedger builds a ledger whose availability and quota components
// all read from the same fake store, pinned to the given clock.
func newLedger(store *fakeStore, clk clock.Clock) *Ledger {
	avail := availability.NewCalculator(store, store, clk)
	tracker := quota.NewTracker(store, store)
	return NewLedger(store, avail, tracker, clk)
}
