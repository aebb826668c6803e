package repository

import (
	"context"
	"database/sql"
	"time"
)

// SlotCounterRepo maintains the active-reservation counter per
// (club, date, slot start).  The counter row is the serialization
// point for commits racing for the same slot: LockSlotCount takes an
// exclusive row lock that the transaction holds until it ends, so
// check-and-increment is one critical section rather than two calls.
type SlotCounterRepo struct {
	db *sql.DB
}

// NewSlotCounterRepo returns a SlotCounterRepo bound to the given database.
func NewSlotCounterRepo(db *sql.DB) *SlotCounterRepo { return &SlotCounterRepo{db: db} }

func dateArg(date time.Time) string { return date.UTC().Format("2006-01-02") }

// LockSlotCount reads the slot's counter under FOR UPDATE, creating
// the row at zero on first use.  Must run inside a transaction.
func (r *SlotCounterRepo) LockSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) (int, error) {
	if _, err := q(ctx, r.db).ExecContext(ctx,
		`INSERT IGNORE INTO slot_counters (club_id, slot_date, slot_start_min, active_count) VALUES (?, ?, ?, 0)`,
		clubID, dateArg(date), startMin,
	); err != nil {
		return 0, err
	}
	var count int
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT active_count FROM slot_counters WHERE club_id = ? AND slot_date = ? AND slot_start_min = ? FOR UPDATE`,
		clubID, dateArg(date), startMin,
	).Scan(&count)
	return count, err
}

// IncrementSlotCount advances the counter; the caller holds the lock
// from LockSlotCount in the same transaction.
func (r *SlotCounterRepo) IncrementSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) error {
	_, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE slot_counters SET active_count = active_count + 1
		 WHERE club_id = ? AND slot_date = ? AND slot_start_min = ?`,
		clubID, dateArg(date), startMin,
	)
	return err
}

// DecrementSlotCount frees one capacity unit on cancellation.  The
// guard keeps a counter from going negative if compensation ever runs
// against a row that was never incremented.
func (r *SlotCounterRepo) DecrementSlotCount(ctx context.Context, clubID uint64, date time.Time, startMin int) error {
	_, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE slot_counters SET active_count = active_count - 1
		 WHERE club_id = ? AND slot_date = ? AND slot_start_min = ? AND active_count > 0`,
		clubID, dateArg(date), startMin,
	)
	return err
}

// ActiveCounts returns the counters for every slot of one club and
// date, keyed by slot start minute.  Implements
// availability.SlotUsageSource; read without locks, so availability
// answers stay cheap and eventually consistent.
func (r *SlotCounterRepo) ActiveCounts(ctx context.Context, clubID uint64, date time.Time) (map[int]int, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT slot_start_min, active_count FROM slot_counters WHERE club_id = ? AND slot_date = ?`,
		clubID, dateArg(date),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[int]int)
	for rows.Next() {
		var start, count int
		if err := rows.Scan(&start, &count); err != nil {
			return nil, err
		}
		counts[start] = count
	}
	return counts, rows.Err()
}
