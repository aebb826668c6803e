package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/greenleaf/club-reservation/internal/model"
)

// ProductRepo is the booking engine's view of the catalog: prices for
// totals and a stock column mutated only through compare-and-decrement.
// Catalog CRUD lives in another service.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// ProductsByIDs loads the club's products for the given IDs in one
// query.  IDs the club does not sell are absent from the result map.
func (r *ProductRepo) ProductsByIDs(ctx context.Context, clubID uint64, ids []uint64) (map[uint64]model.Product, error) {
	if len(ids) == 0 {
		return map[uint64]model.Product{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, clubID)
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	query := `SELECT id, club_id, name, price_per_gram_cents, stock_grams
	          FROM products
	          WHERE club_id = ? AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]model.Product, len(ids))
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.ClubID, &p.Name, &p.PricePerGramCents, &p.StockGrams); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// CheckAndReserveStock decrements a product's stock by grams if and
// only if enough remains, in one conditional UPDATE so concurrent
// reservations of the same product cannot oversell it.  When the
// guard fails it reads back the grams still available for the error
// payload.
func (r *ProductRepo) CheckAndReserveStock(ctx context.Context, productID uint64, grams int) (int, bool, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE products SET stock_grams = stock_grams - ? WHERE id = ? AND stock_grams >= ?`,
		grams, productID, grams,
	)
	if err != nil {
		return 0, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 1 {
		return 0, true, nil
	}
	var available int
	err = q(ctx, r.db).QueryRowContext(ctx,
		`SELECT stock_grams FROM products WHERE id = ?`, productID).Scan(&available)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return available, false, nil
}

// ReleaseStock returns grams to a product, used when a reservation is
// canceled.
func (r *ProductRepo) ReleaseStock(ctx context.Context, productID uint64, grams int) error {
	_, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE products SET stock_grams = stock_grams + ? WHERE id = ?`,
		grams, productID,
	)
	return err
}
