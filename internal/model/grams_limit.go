package model

// GramsLimit carries a club's order-size policy.  Every bound is
// optional; a club without a limits row imposes none.  When both
// MinPerOrder and MaxPerOrder are present the club must keep
// min <= max; quota.Tracker ignores an inverted pair.
//
// Fields:
//
//	ClubID      – club the limits belong to.
//	MinPerOrder – minimum grams per reservation (nil = no minimum).
//	MaxPerOrder – maximum grams per reservation (nil = no maximum).
//	MonthlyMax  – maximum grams per member per calendar month (nil = no cap).
type GramsLimit struct {
	ClubID      uint64 // grams_limits.club_id
	MinPerOrder *int   // grams_limits.min_per_order (nullable)
	MaxPerOrder *int   // grams_limits.max_per_order (nullable)
	MonthlyMax  *int   // grams_limits.monthly_max (nullable)
}
