package model

// Product is the slice of the catalog the booking engine needs: a
// price and a stock level.  Catalog management itself lives outside
// this service; only StockGrams is ever mutated here, and only under
// the ledger's compare-and-decrement discipline.
//
// Fields:
//
//	ID                – primary key identifier.
//	ClubID            – club selling the product.
//	Name              – display name, carried into events.
//	PricePerGramCents – unit price in cents.
//	StockGrams        – grams currently available.
type Product struct {
	ID                uint64 // products.id
	ClubID            uint64 // products.club_id
	Name              string // products.name
	PricePerGramCents uint32 // products.price_per_gram_cents
	StockGrams        int    // products.stock_grams
}
