package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/greenleaf/club-reservation/internal/booking"
	"github.com/greenleaf/club-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and their
// line items.  Reservations are never physically deleted; canceled
// rows remain as audit records.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateReservation inserts a reservation and its line items,
// populating generated IDs and timestamps on the passed record.  It
// participates in the ambient transaction when one is present.
func (r *ReservationRepo) CreateReservation(ctx context.Context, res *model.Reservation) error {
	const ins = `INSERT INTO reservations
	             (member_id, club_id, requested_date, slot_start_min, status, total_price_cents, comment, pickup_code_hash)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := q(ctx, r.db).ExecContext(ctx, ins,
		res.MemberID, res.ClubID, dateArg(res.Date), res.SlotStartMin,
		res.Status, res.TotalPriceCents, res.Comment, res.PickupCodeHash,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	if len(res.Items) > 0 {
		query := `INSERT INTO reservation_items (reservation_id, product_id, grams, price_per_gram_cents) VALUES `
		args := make([]interface{}, 0, len(res.Items)*4)
		for i := range res.Items {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			res.Items[i].ReservationID = res.ID
			args = append(args, res.ID, res.Items[i].ProductID, res.Items[i].Grams, res.Items[i].PricePerGramCents)
		}
		if _, err := q(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	// Read back DB-assigned timestamps.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return q(ctx, r.db).QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// scanReservation scans one reservations row; items are loaded
// separately.  requested_date arrives as a time.Time at UTC midnight
// since the pool runs with parseTime=true and loc=UTC.
func scanReservation(row interface{ Scan(...interface{}) error }) (*model.Reservation, error) {
	var (
		res     model.Reservation
		comment sql.NullString
	)
	err := row.Scan(
		&res.ID, &res.MemberID, &res.ClubID, &res.Date, &res.SlotStartMin,
		&res.Status, &res.TotalPriceCents, &comment, &res.PickupCodeHash,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if comment.Valid {
		res.Comment = comment.String
	}
	return &res, nil
}

const reservationColumns = `id, member_id, club_id, requested_date, slot_start_min,
	status, total_price_cents, comment, pickup_code_hash, created_at, updated_at`

// GetReservationForUpdate loads a reservation and its items under an
// exclusive row lock.  Must run inside a transaction; the lock
// serializes racing lifecycle transitions on the same reservation.
func (r *ReservationRepo) GetReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	res, err := scanReservation(q(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetByID loads a reservation and its items without locking, for
// display and ownership checks.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(q(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetForMember loads a reservation like GetByID but additionally
// enforces ownership: ErrForbidden when it belongs to another member.
func (r *ReservationRepo) GetForMember(ctx context.Context, id, memberID uint64) (*model.Reservation, error) {
	res, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.MemberID != memberID {
		return nil, ErrForbidden
	}
	return res, nil
}

func (r *ReservationRepo) loadItems(ctx context.Context, res *model.Reservation) error {
	const query = `SELECT id, reservation_id, product_id, grams, price_per_gram_cents
	               FROM reservation_items WHERE reservation_id = ? ORDER BY id`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, res.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	res.Items = res.Items[:0]
	for rows.Next() {
		var it model.ReservationItem
		if err := rows.Scan(&it.ID, &it.ReservationID, &it.ProductID, &it.Grams, &it.PricePerGramCents); err != nil {
			return err
		}
		res.Items = append(res.Items, it)
	}
	return rows.Err()
}

// UpdateReservationStatus writes the new status and bumps updated_at.
func (r *ReservationRepo) UpdateReservationStatus(ctx context.Context, id uint64, status string) error {
	_, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		status, id,
	)
	return err
}

// ListByMember returns all of a member's reservations with their
// items, newest first.  When the member has none, an empty slice is
// returned.
func (r *ReservationRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE member_id = ? ORDER BY created_at DESC`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Reservation, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		res.Items = []model.ReservationItem{}
		index[res.ID] = len(list)
		list = append(list, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	// Populate items for all reservations in one query.
	ids := make([]interface{}, 0, len(list))
	placeholders := make([]string, 0, len(list))
	for _, res := range list {
		ids = append(ids, res.ID)
		placeholders = append(placeholders, "?")
	}
	itemQuery := `SELECT id, reservation_id, product_id, grams, price_per_gram_cents
	              FROM reservation_items
	              WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
	              ORDER BY reservation_id, id`
	irows, err := q(ctx, r.db).QueryContext(ctx, itemQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var it model.ReservationItem
		if err := irows.Scan(&it.ID, &it.ReservationID, &it.ProductID, &it.Grams, &it.PricePerGramCents); err != nil {
			return nil, err
		}
		if idx, ok := index[it.ReservationID]; ok {
			list[idx].Items = append(list[idx].Items, it)
		}
	}
	return list, irows.Err()
}

// MonthlyGrams sums a member's grams across non-canceled reservations
// whose requested date falls in [monthStart, monthEnd).  Implements
// quota.UsageSource; inside a commit transaction it sees the same
// snapshot as the rest of the commit.
func (r *ReservationRepo) MonthlyGrams(ctx context.Context, memberID uint64, monthStart, monthEnd time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(ri.grams), 0)
	               FROM reservations res
	               JOIN reservation_items ri ON ri.reservation_id = res.id
	               WHERE res.member_id = ?
	                 AND res.status <> 'CANCELED'
	                 AND res.requested_date >= ? AND res.requested_date < ?`
	var total int
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		memberID, dateArg(monthStart), dateArg(monthEnd)).Scan(&total)
	return total, err
}
