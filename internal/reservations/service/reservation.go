// Package service implements the booking engine. All state-changing
// operations (book, cancel, modify) run under a single in-process mutex so
// they execute one at a time; availability reads never take the lock.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"campsite/internal/reservations/cache"
	reservationerrors "campsite/internal/reservations/errors"
	"campsite/internal/reservations/events"
	"campsite/internal/reservations/repository"
	"campsite/internal/reservations/validator"
	"campsite/pkg/config"
	"campsite/pkg/daterange"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

type ReservationService interface {
	// Book validates the request against the business rules and, when the
	// dates are free, persists a reservation and returns its transaction id.
	Book(ctx context.Context, req *model.BookingRequest) (string, error)
	Cancel(ctx context.Context, transactionID string) error
	// Modify replaces the reservation identified by transactionID with a new
	// one built from req and returns the new transaction id.
	Modify(ctx context.Context, transactionID string, req *model.BookingRequest) (string, error)
	// Availability reports, per calendar day in the closed range
	// [startDate, endDate], whether the campsite is free.
	Availability(ctx context.Context, startDate, endDate time.Time) ([]model.DayAvailability, error)
}

type reservationService struct {
	mu        *sync.Mutex
	store     repository.ReservationStore
	cache     cache.AvailabilityCache
	validator *validator.BookingValidator
	events    events.Publisher
	cfg       *config.Config
	log       *logger.Logger
	now       func() time.Time
}

func NewReservationService(
	mu *sync.Mutex,
	store repository.ReservationStore,
	availability cache.AvailabilityCache,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	log *logger.Logger,
) ReservationService {
	return &reservationService{
		mu:        mu,
		store:     store,
		cache:     availability,
		validator: bookingValidator,
		events:    publisher,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

func (s *reservationService) Book(ctx context.Context, req *model.BookingRequest) (string, error) {
	checkIn, checkOut, err := s.parseRequest(req)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	reservation, err := s.book(ctx, req, checkIn, checkOut, "")
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	// Published after releasing the lock; a slow broker must not stall other
	// bookings.
	s.events.ReservationCreated(ctx, reservation)

	s.log.Info("reservation booked",
		"transaction_id", reservation.TransactionID,
		"check_in", req.CheckIn,
		"check_out", req.CheckOut)

	return reservation.TransactionID, nil
}

func (s *reservationService) Cancel(ctx context.Context, transactionID string) error {
	if transactionID == "" {
		return apperrors.InvalidInput("transaction id is required")
	}

	s.mu.Lock()
	reservation, err := s.cancel(ctx, transactionID)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.events.ReservationCancelled(ctx, reservation)

	s.log.Info("reservation cancelled", "transaction_id", transactionID)

	return nil
}

func (s *reservationService) Modify(ctx context.Context, transactionID string, req *model.BookingRequest) (string, error) {
	if transactionID == "" {
		return "", apperrors.InvalidInput("transaction id is required")
	}

	checkIn, checkOut, err := s.parseRequest(req)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	old, err := s.cancel(ctx, transactionID)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}

	// The old reservation is excluded from the overlap check so a modify can
	// keep (or shift within) its own dates.
	reservation, err := s.book(ctx, req, checkIn, checkOut, transactionID)
	s.mu.Unlock()
	if err != nil {
		// The cancellation is not rolled back: the old reservation is gone and
		// the caller must book again. Surface that explicitly.
		s.events.ReservationCancelled(ctx, old)

		s.log.Error("modify cancelled the reservation but rebooking failed",
			"transaction_id", transactionID,
			"error", err)

		return "", apperrors.PartialFailure(
			"the reservation was cancelled but the new booking failed", err,
		).WithDetails(map[string]any{
			"cancelled_transaction_id": transactionID,
		})
	}

	s.events.ReservationModified(ctx, transactionID, reservation)

	s.log.Info("reservation modified",
		"old_transaction_id", transactionID,
		"new_transaction_id", reservation.TransactionID)

	return reservation.TransactionID, nil
}

func (s *reservationService) Availability(ctx context.Context, startDate, endDate time.Time) ([]model.DayAvailability, error) {
	startDate = daterange.Normalize(startDate)
	endDate = daterange.Normalize(endDate)

	if endDate.Before(startDate) {
		return nil, apperrors.InvalidInput("end date must not precede start date")
	}

	occupied, err := s.cache.OccupiedDates(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to read availability", err)
	}

	days := daterange.Span(startDate, endDate)
	availability := make([]model.DayAvailability, 0, len(days))
	for _, day := range days {
		_, taken := occupied[day]
		availability = append(availability, model.DayAvailability{
			Date:      daterange.FormatDay(day),
			Available: !taken,
		})
	}

	return availability, nil
}

// book runs the full booking sequence for already-parsed dates. Callers must
// hold s.mu.
func (s *reservationService) book(ctx context.Context, req *model.BookingRequest, checkIn, checkOut time.Time, excludeTransactionID string) (*model.Reservation, error) {
	if err := s.checkBookingRules(ctx, checkIn, checkOut, excludeTransactionID); err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		Name:      req.Name,
		Email:     req.Email,
		StartDate: checkIn,
		EndDate:   checkOut,
	}

	err := s.store.ExecuteTransaction(ctx, func(ctx context.Context) error {
		created, err := s.store.Create(ctx, reservation)
		if err != nil {
			return err
		}
		reservation = created
		return nil
	})
	if err != nil {
		if errors.Is(err, reservationerrors.ErrDuplicateTransactionID) {
			return nil, apperrors.Conflict("a reservation with this transaction id already exists")
		}
		return nil, apperrors.Internal("failed to persist reservation", err)
	}

	if err := s.ensureCacheInitialized(ctx); err != nil {
		return nil, err
	}
	if err := s.cache.AddDates(ctx, daterange.Span(checkIn, checkOut)); err != nil {
		return nil, apperrors.Internal("failed to update availability", err)
	}

	return reservation, nil
}

// cancel removes the reservation and frees its days. Callers must hold s.mu.
func (s *reservationService) cancel(ctx context.Context, transactionID string) (*model.Reservation, error) {
	reservation, err := s.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFound("reservation")
		}
		return nil, apperrors.Internal("failed to load reservation", err)
	}

	err = s.store.ExecuteTransaction(ctx, func(ctx context.Context) error {
		return s.store.Delete(ctx, transactionID)
	})
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFound("reservation")
		}
		return nil, apperrors.Internal("failed to delete reservation", err)
	}

	if err := s.cache.RemoveDates(ctx, daterange.Span(reservation.StartDate, reservation.EndDate)); err != nil {
		return nil, apperrors.Internal("failed to update availability", err)
	}

	return reservation, nil
}

// checkBookingRules enforces, in order: maximum stay length, the lead-time
// window, and date availability. The store, not the cache, is the authority
// for the overlap check.
func (s *reservationService) checkBookingRules(ctx context.Context, checkIn, checkOut time.Time, excludeTransactionID string) error {
	stay := daterange.StayLength(checkIn, checkOut)
	if stay > s.cfg.MaxStayDays {
		return apperrors.Validation("stay exceeds the maximum length", map[string]any{
			"max_stay_days": s.cfg.MaxStayDays,
		})
	}

	today := daterange.Normalize(s.now())
	earliest := today.AddDate(0, 0, s.cfg.MinLeadDays)
	latest := today.AddDate(0, s.cfg.MaxLeadMonths, 0)
	if checkIn.Before(earliest) || checkIn.After(latest) {
		return apperrors.Validation("check-in is outside the booking window", map[string]any{
			"earliest_check_in": daterange.FormatDay(earliest),
			"latest_check_in":   daterange.FormatDay(latest),
		})
	}

	count, err := s.store.CountOverlapping(ctx, checkIn, checkOut, excludeTransactionID)
	if err != nil {
		return apperrors.Internal("failed to check availability", err)
	}
	if count > 0 {
		return apperrors.Conflict("the selected dates are no longer available")
	}

	return nil
}

// ensureCacheInitialized rebuilds the occupied set from the store when the
// cache is cold or its TTL has elapsed. Callers must hold s.mu.
func (s *reservationService) ensureCacheInitialized(ctx context.Context) error {
	initialized, err := s.cache.IsInitialized(ctx)
	if err != nil {
		return apperrors.Internal("failed to inspect availability cache", err)
	}
	if initialized {
		return nil
	}

	today := daterange.Normalize(s.now())
	active, err := s.store.FindActive(ctx, today)
	if err != nil {
		return apperrors.Internal("failed to rebuild availability cache", err)
	}

	var occupied []time.Time
	for _, reservation := range active {
		occupied = append(occupied, daterange.Span(reservation.StartDate, reservation.EndDate)...)
	}

	if err := s.cache.Initialize(ctx, occupied); err != nil {
		return apperrors.Internal("failed to rebuild availability cache", err)
	}

	return nil
}

// parseRequest runs shape validation and returns the normalized day range.
func (s *reservationService) parseRequest(req *model.BookingRequest) (time.Time, time.Time, error) {
	if err := s.validator.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, verr := range verrs {
				details[verr.Field] = verr.Message
			}
			return time.Time{}, time.Time{}, apperrors.Validation("invalid booking request", details)
		}
		return time.Time{}, time.Time{}, apperrors.Internal("failed to validate booking request", err)
	}

	checkIn, _ := daterange.ParseDay(req.CheckIn)
	checkOut, _ := daterange.ParseDay(req.CheckOut)
	return checkIn, checkOut, nil
}
