package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	accommodationserrors "lodging/internal/accommodations/errors"
	"lodging/internal/accommodations/repository"
	"lodging/internal/accommodations/validator"
	"lodging/internal/availability"
	"lodging/pkg/auth"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	apperrors "lodging/pkg/errors"
	"lodging/pkg/model"
	"lodging/pkg/sanitizer"
	"lodging/pkg/validation"
)

type AccommodationService interface {
	Create(ctx context.Context, acc *model.Accommodation) error
	GetByID(ctx context.Context, id string) (*model.Accommodation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Accommodation, int64, error)
	Update(ctx context.Context, id string, updates *model.AccommodationUpdate) (*model.Accommodation, error)
	Delete(ctx context.Context, id string) error

	Search(ctx context.Context, search *model.AccommodationSearch) ([]*model.Accommodation, error)
}

// BookingCounter reports how many bookings still reference an
// accommodation.
type BookingCounter interface {
	CountByAccommodation(ctx context.Context, accommodationID string) (int64, error)
}

type accommodationService struct {
	repo      repository.AccommodationRepository
	bookings  BookingCounter
	validator *validator.AccommodationValidator
	cfg       *config.Config
}

func NewAccommodationService(
	repo repository.AccommodationRepository,
	bookings BookingCounter,
	validator *validator.AccommodationValidator,
	cfg *config.Config,
) AccommodationService {
	return &accommodationService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *accommodationService) Create(ctx context.Context, acc *model.Accommodation) error {
	if _, err := auth.RequireRole(ctx, model.RoleAdmin); err != nil {
		return err
	}
	s.sanitize(acc)

	if err := s.validator.Validate(acc); err != nil {
		s.cfg.Log.Warn("Accommodation validation failed",
			"type", acc.Type,
			"location", acc.Location,
			"error", err,
		)
		return validationError("Accommodation validation failed", err)
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		s.cfg.Log.Error("Failed to create accommodation",
			"type", acc.Type,
			"location", acc.Location,
			"error", err,
		)
		return apperrors.Internal("Failed to create accommodation", err)
	}

	s.cfg.Log.Info("Accommodation created successfully",
		"id", acc.ID,
		"type", acc.Type,
		"location", acc.Location,
		"dates", len(acc.AvailableRoomsByDate),
	)
	return nil
}

func (s *accommodationService) GetByID(ctx context.Context, id string) (*model.Accommodation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Accommodation ID cannot be empty")
	}

	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve accommodation")
	}
	return acc, nil
}

func (s *accommodationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Accommodation, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var accs []*model.Accommodation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count accommodations", "error", err)
			errCount = apperrors.Internal("Failed to count accommodations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		accs, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all accommodations",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve accommodations", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return accs, count, nil
}

// Update merges updates into the stored accommodation. Room counts are
// absolute values for the listed dates; other dates are left alone. A
// reconciliation that commits in between bumps the version, in which case
// the merge is redone against the fresh document.
func (s *accommodationService) Update(ctx context.Context, id string, updates *model.AccommodationUpdate) (*model.Accommodation, error) {
	if _, err := auth.RequireRole(ctx, model.RoleAdmin); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Accommodation ID cannot be empty")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Accommodation update validation failed", "id", id, "error", err)
		return nil, validationError("Accommodation validation failed", err)
	}

	attempts := max(s.cfg.ReconcileMaxAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, s.mapRepoError(err, id, "Failed to check accommodation existence")
		}

		merged := mergeAccommodationUpdates(existing, updates)
		err = s.repo.Update(ctx, merged, updates.AvailableRoomsByDate)
		if err == nil {
			merged.Version++
			s.cfg.Log.Info("Accommodation updated successfully",
				"id", id,
				"version", merged.Version,
				"dates_set", len(updates.AvailableRoomsByDate),
			)
			return merged, nil
		}
		if !errors.Is(err, availability.ErrVersionConflict) {
			return nil, s.mapRepoError(err, id, "Failed to update accommodation")
		}
		s.cfg.Log.Debug("Accommodation changed during update, retrying",
			"id", id,
			"attempt", attempt,
		)
	}

	s.cfg.Log.Warn("Accommodation update gave up after concurrent modifications",
		"id", id,
		"attempts", attempts,
	)
	return nil, apperrors.Conflict("Accommodation was modified concurrently, please retry")
}

func (s *accommodationService) Delete(ctx context.Context, id string) error {
	if _, err := auth.RequireRole(ctx, model.RoleAdmin); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Accommodation ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		count, err := s.bookings.CountByAccommodation(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count bookings: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %d", accommodationserrors.ErrHasBookings, count)
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, accommodationserrors.ErrHasBookings) {
			s.cfg.Log.Warn("Refused to delete accommodation with bookings", "id", id, "error", err)
			return apperrors.Conflict("Accommodation still has bookings").WithCause(err)
		}
		return s.mapRepoError(err, id, "Failed to delete accommodation")
	}

	s.cfg.Log.Info("Accommodation deleted successfully", "id", id)
	return nil
}

// Search runs the equality query on type and location. When a stay is
// given, only accommodations with enough rooms on every night are kept.
func (s *accommodationService) Search(ctx context.Context, search *model.AccommodationSearch) ([]*model.Accommodation, error) {
	search.Location = sanitizer.NormalizeCity(search.Location)
	if err := s.validator.ValidateSearch(search); err != nil {
		return nil, validationError("Invalid search parameters", err)
	}

	accs, err := s.repo.FindByTypeAndLocation(ctx, search.Type, search.Location)
	if err != nil {
		s.cfg.Log.Error("Failed to search accommodations",
			"type", search.Type,
			"location", search.Location,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search accommodations", err)
	}

	if !search.HasStay() {
		return accs, nil
	}

	hold := availability.Hold{
		StartDate: search.StartDate,
		Nights:    max(search.Nights, 1),
		Rooms:     max(search.Rooms, 1),
	}
	matches := make([]*model.Accommodation, 0, len(accs))
	for _, acc := range accs {
		ok, err := availability.Check(acc.AvailableRoomsByDate, hold)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		if ok {
			matches = append(matches, acc)
		}
	}
	return matches, nil
}

func (s *accommodationService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, accommodationserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Accommodation", id)
	case errors.Is(err, accommodationserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid accommodation ID format")
	case errors.Is(err, mongotx.ErrTransientTransaction):
		return apperrors.Conflict("Accommodation was modified concurrently, please retry").WithCause(err)
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *accommodationService) sanitize(acc *model.Accommodation) {
	acc.Name = sanitizer.NormalizeName(acc.Name)
	acc.Location = sanitizer.NormalizeCity(acc.Location)
}

func (s *accommodationService) sanitizeUpdate(u *model.AccommodationUpdate) {
	if u.Name != nil {
		name := sanitizer.NormalizeName(*u.Name)
		u.Name = &name
	}
	u.Location = sanitizer.NormalizeCity(u.Location)
}

func mergeAccommodationUpdates(existing *model.Accommodation, u *model.AccommodationUpdate) *model.Accommodation {
	merged := *existing
	merged.AvailableRoomsByDate = make(map[string]int, len(existing.AvailableRoomsByDate)+len(u.AvailableRoomsByDate))
	for date, n := range existing.AvailableRoomsByDate {
		merged.AvailableRoomsByDate[date] = n
	}

	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Type != "" {
		merged.Type = u.Type
	}
	if u.Location != "" {
		merged.Location = u.Location
	}
	for date, n := range u.AvailableRoomsByDate {
		merged.AvailableRoomsByDate[date] = n
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
