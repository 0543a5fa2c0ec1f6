package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/logger"
	"lodging/pkg/model"
)

// Store reads an accommodation and writes counter deltas with a
// compare-and-swap on its version. ApplyDateDeltas must return
// ErrVersionConflict when the stored version no longer matches.
type Store interface {
	FindByID(ctx context.Context, id string) (*model.Accommodation, error)
	ApplyDateDeltas(ctx context.Context, id string, expectedVersion int64, deltas map[string]int) error
}

// LedgerWrite mutates the booking record inside the same transaction as the
// counter update.
type LedgerWrite func(ctx context.Context) error

type Options struct {
	MaxRoomsPerDate int
	MaxAttempts     int
	RetryBackoff    time.Duration
}

type Reconciler struct {
	store Store
	tx    mongotx.TransactionManager
	log   *logger.Logger
	opts  Options
}

func NewReconciler(store Store, tx mongotx.TransactionManager, log *logger.Logger, opts Options) *Reconciler {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &Reconciler{
		store: store,
		tx:    tx,
		log:   log,
		opts:  opts,
	}
}

// CheckAvailability is a pure read of acc's counters.
func (r *Reconciler) CheckAvailability(acc *model.Accommodation, h Hold) (bool, error) {
	return Check(acc.AvailableRoomsByDate, h)
}

// Commit decrements every night of h by h.Rooms and runs write, all or
// nothing. A shortfall on any night fails with a *ShortfallError.
func (r *Reconciler) Commit(ctx context.Context, accommodationID string, h Hold, write LedgerWrite) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return r.reconcile(ctx, "commit", accommodationID, func(p *Plan) error {
		return p.Commit(h)
	}, write)
}

// Release returns h.Rooms to every night of h and runs write.
func (r *Reconciler) Release(ctx context.Context, accommodationID string, h Hold, write LedgerWrite) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return r.reconcile(ctx, "release", accommodationID, func(p *Plan) error {
		return p.Release(h)
	}, write)
}

// Amend replaces old with next in one transaction. next is checked against
// the counters as they are after old has been released, so a booking can
// grow into the rooms it already holds.
func (r *Reconciler) Amend(ctx context.Context, accommodationID string, old, next Hold, write LedgerWrite) error {
	if err := old.Validate(); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	return r.reconcile(ctx, "amend", accommodationID, func(p *Plan) error {
		if err := p.Release(old); err != nil {
			return err
		}
		return p.Commit(next)
	}, write)
}

func (r *Reconciler) reconcile(ctx context.Context, op, accommodationID string, apply func(*Plan) error, write LedgerWrite) error {
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		err := r.tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			acc, err := r.store.FindByID(txCtx, accommodationID)
			if err != nil {
				return err
			}

			plan := NewPlan(acc.AvailableRoomsByDate, r.opts.MaxRoomsPerDate)
			if err := apply(plan); err != nil {
				return err
			}
			if capped := plan.Capped(); len(capped) > 0 {
				r.log.Warn("Released rooms capped at per-date maximum",
					"operation", op,
					"accommodation_id", accommodationID,
					"dates", capped,
					"max_rooms_per_date", r.opts.MaxRoomsPerDate,
				)
			}

			if deltas := plan.Deltas(); len(deltas) > 0 {
				if err := r.store.ApplyDateDeltas(txCtx, accommodationID, acc.Version, deltas); err != nil {
					return err
				}
			}

			if write != nil {
				return write(txCtx)
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if !isConflict(err) {
			return err
		}

		r.log.Debug("Accommodation changed during reconciliation, retrying",
			"operation", op,
			"accommodation_id", accommodationID,
			"attempt", attempt,
		)
		if attempt < r.opts.MaxAttempts {
			if err := r.wait(ctx, attempt); err != nil {
				return err
			}
		}
	}

	r.log.Warn("Reconciliation gave up after repeated conflicts",
		"operation", op,
		"accommodation_id", accommodationID,
		"attempts", r.opts.MaxAttempts,
	)
	return fmt.Errorf("%w: %s on accommodation %s after %d attempts",
		ErrConflictRetriesExhausted, op, accommodationID, r.opts.MaxAttempts)
}

// isConflict reports whether another writer got to the accommodation first,
// either as a version mismatch or as a server-side write conflict.
func isConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict) || errors.Is(err, mongotx.ErrTransientTransaction)
}

func (r *Reconciler) wait(ctx context.Context, attempt int) error {
	if r.opts.RetryBackoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(attempt) * r.opts.RetryBackoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
