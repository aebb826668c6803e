package repository

import (
	"context"
	"database/sql"

	"github.com/greenleaf/club-reservation/internal/model"
)

// ScheduleRepo persists clubs' weekly dispensing windows.  A club's
// week is only ever written as a whole: ReplaceWeek deletes the old
// set and bulk-inserts the new one in a single transaction, so
// readers observe either the previous week or the new week, never a
// mix.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// ReplaceWeek atomically supersedes a club's entire window set.  The
// caller is expected to have validated the set already; no structural
// checks happen here.  Passing an empty slice clears the schedule.
func (r *ScheduleRepo) ReplaceWeek(ctx context.Context, clubID uint64, windows []model.ScheduleWindow) error {
	return WithTx(ctx, r.db, func(txCtx context.Context) error {
		if _, err := q(txCtx, r.db).ExecContext(txCtx,
			`DELETE FROM schedule_windows WHERE club_id = ?`, clubID); err != nil {
			return err
		}
		if len(windows) == 0 {
			return nil
		}
		query := `INSERT INTO schedule_windows (club_id, day_of_week, start_min, end_min, max_capacity, is_active) VALUES `
		args := make([]interface{}, 0, len(windows)*6)
		for i, w := range windows {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?)"
			args = append(args, clubID, w.DayOfWeek, w.StartMin, w.EndMin, w.MaxCapacity, w.IsActive)
		}
		_, err := q(txCtx, r.db).ExecContext(txCtx, query, args...)
		return err
	})
}

// WindowsByClub returns a club's current window set ordered by day of
// week.  A club with no schedule yields an empty slice.
func (r *ScheduleRepo) WindowsByClub(ctx context.Context, clubID uint64) ([]model.ScheduleWindow, error) {
	const query = `SELECT id, club_id, day_of_week, start_min, end_min, max_capacity, is_active, created_at
	               FROM schedule_windows
	               WHERE club_id = ?
	               ORDER BY day_of_week`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	windows := make([]model.ScheduleWindow, 0)
	for rows.Next() {
		var w model.ScheduleWindow
		if err := rows.Scan(&w.ID, &w.ClubID, &w.DayOfWeek, &w.StartMin, &w.EndMin, &w.MaxCapacity, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// WindowForDay returns the club's window for one day of week, or nil
// when the day is not configured.  Implements
// availability.ScheduleSource.
func (r *ScheduleRepo) WindowForDay(ctx context.Context, clubID uint64, dayOfWeek int) (*model.ScheduleWindow, error) {
	const query = `SELECT id, club_id, day_of_week, start_min, end_min, max_capacity, is_active, created_at
	               FROM schedule_windows
	               WHERE club_id = ? AND day_of_week = ?`
	var w model.ScheduleWindow
	err := q(ctx, r.db).QueryRowContext(ctx, query, clubID, dayOfWeek).Scan(
		&w.ID, &w.ClubID, &w.DayOfWeek, &w.StartMin, &w.EndMin, &w.MaxCapacity, &w.IsActive, &w.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}
