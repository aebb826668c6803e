package model

import "time"

// Reservation statuses.  PENDING is the only non-terminal state;
// transitions are monotonic and enforced by the lifecycle component.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCanceled  = "CANCELED"
)

// Reservation records a member's booking of a dispensing slot at a
// club.  Reservations are never physically deleted: canceled rows
// stay behind as audit records while their capacity and stock are
// returned.
//
// Fields:
//
//	ID              – primary key identifier.
//	MemberID        – member who made the reservation.
//	ClubID          – club being visited.
//	Date            – requested calendar date (UTC midnight).
//	SlotStartMin    – requested slot start, minutes from midnight.
//	Status          – PENDING, COMPLETED or CANCELED.
//	TotalPriceCents – sum of line-item price × grams.
//	Comment         – optional free-text note from the member.
//	PickupCodeHash  – bcrypt hash of the one-time pickup code; the
//	                  plaintext is returned exactly once at commit.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last status change.
//	Items           – line items dispensed under this reservation.
type Reservation struct {
	ID              uint64            // reservations.id
	MemberID        uint64            // reservations.member_id
	ClubID          uint64            // reservations.club_id
	Date            time.Time         // reservations.requested_date
	SlotStartMin    int               // reservations.slot_start_min
	Status          string            // reservations.status
	TotalPriceCents uint32            // reservations.total_price_cents
	Comment         string            // reservations.comment
	PickupCodeHash  string            // reservations.pickup_code_hash
	CreatedAt       time.Time         // reservations.created_at
	UpdatedAt       time.Time         // reservations.updated_at
	Items           []ReservationItem // reservation_items rows
}

// TotalGrams sums the grams across all line items.
func (r *Reservation) TotalGrams() int {
	total := 0
	for _, it := range r.Items {
		total += it.Grams
	}
	return total
}

// ReservationItem is one product line within a reservation.  The
// per-gram price is copied from the product at commit time so later
// price changes do not rewrite history.
//
// Fields:
//
//	ID                – primary key identifier.
//	ReservationID     – owning reservation.
//	ProductID         – product dispensed.
//	Grams             – quantity in grams.
//	PricePerGramCents – unit price at commit time.
type ReservationItem struct {
	ID                uint64 // reservation_items.id
	ReservationID     uint64 // reservation_items.reservation_id
	ProductID         uint64 // reservation_items.product_id
	Grams             int    // reservation_items.grams
	PricePerGramCents uint32 // reservation_items.price_per_gram_cents
}
