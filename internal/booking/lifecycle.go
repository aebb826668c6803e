package booking

import (
	"context"

	"github.com/greenleaf/club-reservation/internal/model"
)

// Lifecycle enforces the reservation state graph:
//
//	PENDING -> COMPLETED   (staff; no stock or capacity side effects)
//	PENDING -> CANCELED    (member or staff; returns stock, frees the slot)
//
// Both terminal states are final.  Who may request which transition
// is decided by the caller's auth layer; this component only enforces
// the graph and its compensating side effects.
type Lifecycle struct {
	store Store
}

// NewLifecycle wires a Lifecycle to the shared booking store.
func NewLifecycle(store Store) *Lifecycle {
	return &Lifecycle{store: store}
}

// Transition moves a reservation to target and returns the updated
// record.  The reservation row lock serializes racing transitions, so
// a canceled reservation releases its stock and capacity exactly
// once.  Repeating a terminal transition yields
// AlreadyInTerminalStateError; any other move out of a terminal state
// yields InvalidTransitionError.
func (l *Lifecycle) Transition(ctx context.Context, reservationID uint64, target string) (*model.Reservation, error) {
	if target != model.StatusCompleted && target != model.StatusCanceled {
		return nil, &InvalidTransitionError{From: model.StatusPending, To: target}
	}

	var res *model.Reservation
	err := l.store.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		res, err = l.store.GetReservationForUpdate(txCtx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != model.StatusPending {
			if res.Status == target {
				return &AlreadyInTerminalStateError{Status: res.Status}
			}
			return &InvalidTransitionError{From: res.Status, To: target}
		}

		if target == model.StatusCanceled {
			// Compensate atomically with the status write: restore
			// every line item's stock and free the slot unit.
			for _, it := range res.Items {
				if err := l.store.ReleaseStock(txCtx, it.ProductID, it.Grams); err != nil {
					return err
				}
			}
			if err := l.store.DecrementSlotCount(txCtx, res.ClubID, res.Date, res.SlotStartMin); err != nil {
				return err
			}
		}

		if err := l.store.UpdateReservationStatus(txCtx, reservationID, target); err != nil {
			return err
		}
		res.Status = target
		return nil
	})
	if err != nil {
		return nil, wrapTransient(err)
	}
	return res, nil
}
