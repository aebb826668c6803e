// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for reservation lifecycle events.
const (
	ReservationCreatedQueue  = "reservation.created"
	ReservationCanceledQueue = "reservation.canceled"
)

// EventItem is one product line inside a reservation event.
type EventItem struct {
	ProductID uint64 `json:"product_id"`
	Grams     int    `json:"grams"`
}

// ReservationEvent is published when a reservation is committed or
// canceled.  It carries enough for downstream consumers to log, notify
// or feed analytics without querying the primary database.
type ReservationEvent struct {
	ReservationID   uint64      `json:"reservation_id"`
	MemberID        uint64      `json:"member_id"`
	ClubID          uint64      `json:"club_id"`
	Date            string      `json:"date"`
	SlotStart       string      `json:"slot_start"`
	Status          string      `json:"status"`
	TotalGrams      int         `json:"total_grams"`
	TotalPriceCents uint32      `json:"total_price_cents"`
	Items           []EventItem `json:"items"`
	OccurredAt      string      `json:"occurred_at"`
}
