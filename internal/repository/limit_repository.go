package repository

import (
	"context"
	"database/sql"

	"github.com/greenleaf/club-reservation/internal/model"
)

// LimitRepo reads clubs' grams-limit configuration.  Limits are
// administered by the club-configuration service; the booking engine
// only consumes them, which is why no write methods exist here.
type LimitRepo struct {
	db *sql.DB
}

// NewLimitRepo returns a LimitRepo bound to the given database.
func NewLimitRepo(db *sql.DB) *LimitRepo { return &LimitRepo{db: db} }

// LimitForClub returns the club's limits, or nil when the club has
// none configured.  Implements quota.LimitSource.
func (r *LimitRepo) LimitForClub(ctx context.Context, clubID uint64) (*model.GramsLimit, error) {
	const query = `SELECT club_id, min_per_order, max_per_order, monthly_max
	               FROM grams_limits WHERE club_id = ?`
	var (
		l        model.GramsLimit
		min, max sql.NullInt64
		monthly  sql.NullInt64
	)
	err := q(ctx, r.db).QueryRowContext(ctx, query, clubID).Scan(&l.ClubID, &min, &max, &monthly)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if min.Valid {
		v := int(min.Int64)
		l.MinPerOrder = &v
	}
	if max.Valid {
		v := int(max.Int64)
		l.MaxPerOrder = &v
	}
	if monthly.Valid {
		v := int(monthly.Int64)
		l.MonthlyMax = &v
	}
	return &l, nil
}
