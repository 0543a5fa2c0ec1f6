package service

import (
	"context"
	"errors"
	"sync"

	accommodationserrors "lodging/internal/accommodations/errors"
	"lodging/internal/availability"
	bookingserrors "lodging/internal/bookings/errors"
	"lodging/internal/bookings/events"
	"lodging/internal/bookings/repository"
	"lodging/internal/bookings/validator"
	"lodging/pkg/auth"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	apperrors "lodging/pkg/errors"
	"lodging/pkg/model"
	"lodging/pkg/validation"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
}

// Reconciler applies a booking's hold to the accommodation counters and
// runs the ledger write in the same transaction.
type Reconciler interface {
	Commit(ctx context.Context, accommodationID string, h availability.Hold, write availability.LedgerWrite) error
	Release(ctx context.Context, accommodationID string, h availability.Hold, write availability.LedgerWrite) error
	Amend(ctx context.Context, accommodationID string, old, next availability.Hold, write availability.LedgerWrite) error
}

type bookingService struct {
	repo       repository.BookingRepository
	reconciler Reconciler
	validator  *validator.BookingValidator
	publisher  events.Publisher
	cfg        *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	reconciler Reconciler,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		reconciler: reconciler,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	principal, err := auth.RequireRole(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"user_id", principal.UserID,
			"accommodation_id", req.AccommodationID,
			"error", err,
		)
		return nil, validationError("Booking validation failed", err)
	}

	booking := &model.Booking{
		UserID:          principal.UserID,
		AccommodationID: req.AccommodationID,
		StartDate:       req.StartDate,
		Nights:          req.Nights,
		Rooms:           req.Rooms,
	}

	err = s.reconciler.Commit(ctx, booking.AccommodationID, holdOf(booking), func(txCtx context.Context) error {
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		return nil, s.mapReconcileError(err, "create", booking.AccommodationID)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", booking.UserID,
		"accommodation_id", booking.AccommodationID,
		"start_date", booking.StartDate,
		"nights", booking.Nights,
		"rooms", booking.Rooms,
	)
	s.publish(ctx, events.NewEvent(model.BookingEventCreated, booking, nil))

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	principal, err := auth.RequireRole(ctx)
	if err != nil {
		return nil, err
	}
	return s.findAccessible(ctx, principal, id)
}

// GetAll lists every booking for admins and only the caller's own bookings
// for everyone else.
func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	principal, err := auth.RequireRole(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	count := s.repo.Count
	find := s.repo.FindAll
	if !principal.IsAdmin() {
		count = func(ctx context.Context) (int64, error) {
			return s.repo.CountByUser(ctx, principal.UserID)
		}
		find = func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
			return s.repo.FindByUser(ctx, principal.UserID, limit, offset)
		}
	}

	var total int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		total, err = count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", principal.UserID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = find(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get bookings",
				"user_id", principal.UserID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, total, nil
}

// Update amends a booking. The old stay is released and the new one
// committed in one transaction; the booking write is guarded by the version
// that was read, so two amendments racing on the same booking cannot both
// succeed.
func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	principal, err := auth.RequireRole(ctx)
	if err != nil {
		return nil, err
	}

	if updates.IsEmpty() {
		return nil, apperrors.InvalidInput("At least one of start_date, nights or rooms is required")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError("Booking validation failed", err)
	}

	existing, err := s.findAccessible(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	amended := mergeBookingUpdates(existing, updates)
	startMoved := amended.StartDate != existing.StartDate
	if err := s.validator.ValidateAmended(amended, startMoved); err != nil {
		return nil, validationError("Booking validation failed", err)
	}

	old, next := holdOf(existing), holdOf(amended)
	if old == next {
		return existing, nil
	}

	err = s.reconciler.Amend(ctx, existing.AccommodationID, old, next, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, amended)
	})
	if err != nil {
		return nil, s.mapReconcileError(err, "amend", existing.AccommodationID)
	}
	amended.Version++

	s.cfg.Log.Info("Booking amended successfully",
		"id", id,
		"accommodation_id", amended.AccommodationID,
		"from", old,
		"to", next,
	)
	s.publish(ctx, events.NewEvent(model.BookingEventAmended, amended, stayOf(existing)))

	return amended, nil
}

// Delete cancels a booking and returns its rooms. When the accommodation is
// gone there is nothing to return the rooms to, so the booking is removed
// on its own.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	principal, err := auth.RequireRole(ctx)
	if err != nil {
		return err
	}

	booking, err := s.findAccessible(ctx, principal, id)
	if err != nil {
		return err
	}

	remove := func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, booking.ID, booking.Version)
	}

	err = s.reconciler.Release(ctx, booking.AccommodationID, holdOf(booking), remove)
	if errors.Is(err, accommodationserrors.ErrNotFound) {
		s.cfg.Log.Warn("Cancelling booking of a missing accommodation",
			"id", id,
			"accommodation_id", booking.AccommodationID,
		)
		err = remove(ctx)
	}
	if err != nil {
		return s.mapReconcileError(err, "cancel", booking.AccommodationID)
	}

	s.cfg.Log.Info("Booking cancelled successfully",
		"id", id,
		"user_id", booking.UserID,
		"accommodation_id", booking.AccommodationID,
		"cancelled_by", principal.UserID,
	)
	s.publish(ctx, events.NewEvent(model.BookingEventCancelled, booking, nil))

	return nil
}

func (s *bookingService) findAccessible(ctx context.Context, principal *auth.Principal, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if !principal.CanAccess(booking.UserID) {
		s.cfg.Log.Warn("Booking access denied",
			"id", id,
			"user_id", principal.UserID,
			"owner_id", booking.UserID,
		)
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	return booking, nil
}

func (s *bookingService) mapReconcileError(err error, op, accommodationID string) error {
	var shortfall *availability.ShortfallError
	switch {
	case errors.As(err, &shortfall):
		s.cfg.Log.Info("Booking rejected for lack of rooms",
			"operation", op,
			"accommodation_id", accommodationID,
			"date", shortfall.Date,
			"available", shortfall.Available,
			"requested", shortfall.Requested,
		)
		return apperrors.InsufficientAvailability(shortfall.Date, shortfall.Available, shortfall.Requested).WithCause(err)
	case errors.Is(err, availability.ErrConflictRetriesExhausted),
		errors.Is(err, mongotx.ErrTransientTransaction):
		return apperrors.Conflict("Too many concurrent bookings for this accommodation, please retry").WithCause(err)
	case errors.Is(err, bookingserrors.ErrStaleBooking):
		return apperrors.Conflict("Booking was modified concurrently, please reload it").WithCause(err)
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFound("Booking").WithCause(err)
	case errors.Is(err, availability.ErrInvalidHold):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, accommodationserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Accommodation", accommodationID).WithCause(err)
	case errors.Is(err, accommodationserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid accommodation ID format")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Booking request timed out")
	case apperrors.IsAppError(err):
		return err
	}

	s.cfg.Log.Error("Booking reconciliation failed",
		"operation", op,
		"accommodation_id", accommodationID,
		"error", err,
	)
	return apperrors.Internal("Failed to "+op+" booking", err)
}

func (s *bookingService) publish(ctx context.Context, event *model.BookingEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.cfg.Log.Warn("Booking event not published",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func holdOf(b *model.Booking) availability.Hold {
	return availability.Hold{StartDate: b.StartDate, Nights: b.Nights, Rooms: b.Rooms}
}

func stayOf(b *model.Booking) *model.BookingStay {
	return &model.BookingStay{StartDate: b.StartDate, Nights: b.Nights, Rooms: b.Rooms}
}

func mergeBookingUpdates(existing *model.Booking, u *model.BookingUpdate) *model.Booking {
	merged := *existing
	if u.StartDate != nil {
		merged.StartDate = *u.StartDate
	}
	if u.Nights != nil {
		merged.Nights = *u.Nights
	}
	if u.Rooms != nil {
		merged.Rooms = *u.Rooms
	}
	return &merged
}

func validationError(message string, err error) error {
	var errs validation.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation(message, errs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
