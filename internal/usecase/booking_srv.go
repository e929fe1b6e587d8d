package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/internal/dto/request"
	"artisan-marketplace/internal/dto/response"
	"artisan-marketplace/pkg/events"
	"artisan-marketplace/pkg/metrics"
	"artisan-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, principal utils.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	ListBookingsForClient(ctx context.Context, principal utils.Principal) ([]response.BookingResponse, error)
	ListBookingsForArtisan(ctx context.Context, principal utils.Principal) ([]response.BookingResponse, error)
	UpdateBookingStatus(ctx context.Context, principal utils.Principal, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	repo      *repository.Repository // artisans, bookings
	listings  *listingCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewBookingService(
	repo *repository.Repository,
	listings *listingCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoop()
	}
	return &bookingService{
		repo:      repo,
		listings:  listings,
		publisher: publisher,
		metrics:   m,
		log:       log.With(zap.String("service", "booking")),
		now:       time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, principal utils.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if entity.UserRole(principal.Role) != entity.RoleClient {
		return nil, forbidden("only clients can book artisans")
	}

	req.ArtisanID = strings.TrimSpace(req.ArtisanID)
	req.ArtisanName = strings.TrimSpace(req.ArtisanName)
	if err := validate(req); err != nil {
		return nil, err
	}

	serviceDate, err := time.Parse(entity.DateLayout, req.ServiceDate)
	if err != nil {
		return nil, newValidationError("service_date", "Must use the format YYYY-MM-DD")
	}
	serviceTime, err := normalizeServiceTime(req.ServiceTime)
	if err != nil {
		return nil, newValidationError("service_time", "Must use the format HH:MM")
	}

	artisan, err := s.resolveArtisan(ctx, req)
	if err != nil {
		s.record(err)
		return nil, err
	}
	if !artisan.IsAvailable {
		s.record(ErrConflict)
		return nil, conflict("artisan is not available")
	}

	now := s.now()
	booking := &entity.Booking{
		ID:          uuid.New(),
		ClientID:    principal.UserID,
		ArtisanID:   artisan.ID,
		Status:      entity.BookingStatusPending,
		ServiceDate: serviceDate,
		ServiceTime: serviceTime,
		BookedAt:    now,
		UpdatedAt:   now,
		ArtisanName: artisan.Name,
	}

	// availability and slot are checked again under the artisan row lock
	if err := s.repo.Booking.CreateExclusive(ctx, booking); err != nil {
		err = mapBookingError(err)
		s.record(err)
		if errors.Is(err, ErrConflict) {
			s.log.Warn("Booking rejected",
				zap.Error(err),
				zap.String("artisan_id", artisan.ID.String()),
				zap.String("service_date", req.ServiceDate),
				zap.String("service_time", serviceTime),
			)
		}
		return nil, err
	}
	s.record(nil)

	s.listings.invalidate(ctx)
	s.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:   booking.ID.String(),
		ClientID:    booking.ClientID.String(),
		ArtisanID:   booking.ArtisanID.String(),
		ServiceDate: booking.ServiceDate.Format(entity.DateLayout),
		ServiceTime: booking.ServiceTime,
		Status:      string(booking.Status),
		OccurredAt:  now,
	})

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("client_id", booking.ClientID.String()),
		zap.String("artisan_id", booking.ArtisanID.String()),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// resolveArtisan finds the target by id, or by case-insensitive exact name.
func (s *bookingService) resolveArtisan(ctx context.Context, req *request.CreateBookingRequest) (*entity.Artisan, error) {
	if req.ArtisanID != "" {
		id, err := uuid.Parse(req.ArtisanID)
		if err != nil {
			return nil, newValidationError("artisan_id", "Must be a valid UUID")
		}
		artisan, err := s.repo.Artisan.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve artisan: %w", err)
		}
		if artisan == nil {
			return nil, notFound("artisan not found")
		}
		return artisan, nil
	}

	matches, err := s.repo.Artisan.FindByName(ctx, req.ArtisanName)
	if err != nil {
		return nil, fmt.Errorf("resolve artisan: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, notFound(fmt.Sprintf("no artisan named %q", req.ArtisanName))
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d artisans are named %q, book by artisan_id instead",
			ErrAmbiguous, len(matches), req.ArtisanName)
	}
}

func (s *bookingService) ListBookingsForClient(ctx context.Context, principal utils.Principal) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindByClientID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("list client bookings: %w", err)
	}
	return response.BookingsToResponse(bookings), nil
}

func (s *bookingService) ListBookingsForArtisan(ctx context.Context, principal utils.Principal) ([]response.BookingResponse, error) {
	artisan, err := s.repo.Artisan.FindByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("find artisan profile: %w", err)
	}
	if artisan == nil {
		return nil, forbidden("no artisan profile is linked to this account")
	}

	bookings, err := s.repo.Booking.FindByArtisanID(ctx, artisan.ID)
	if err != nil {
		return nil, fmt.Errorf("list artisan bookings: %w", err)
	}
	return response.BookingsToResponse(bookings), nil
}

func (s *bookingService) UpdateBookingStatus(
	ctx context.Context,
	principal utils.Principal,
	bookingID string,
	req *request.UpdateBookingStatusRequest,
) (*response.BookingResponse, error) {
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := validate(req); err != nil {
		return nil, err
	}
	to := entity.BookingStatus(req.Status)

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, notFound("booking not found")
	}
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, notFound("booking not found")
	}

	actor, err := s.bookingActor(ctx, principal, booking)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(booking.Status, to) {
		return nil, conflict(fmt.Sprintf("cannot move a %s booking to %s", booking.Status, to))
	}
	if !actorMayTransition(actor, to) {
		return nil, forbidden(fmt.Sprintf("a %s cannot set a booking to %s", actor, to))
	}

	from := booking.Status
	if err := s.repo.Booking.UpdateStatus(ctx, booking, to); err != nil {
		return nil, mapBookingError(err)
	}
	booking.Status = to
	booking.UpdatedAt = s.now()

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(to))
	}
	s.listings.invalidate(ctx)
	s.publish(ctx, events.BookingStatusChanged, events.BookingStatusChangedEvent{
		BookingID:  booking.ID.String(),
		ArtisanID:  booking.ArtisanID.String(),
		ChangedBy:  principal.UserID.String(),
		From:       string(from),
		To:         string(to),
		OccurredAt: booking.UpdatedAt,
	})

	s.log.Info("Booking status changed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// bookingActor reports which side of the booking the principal is on.
func (s *bookingService) bookingActor(ctx context.Context, principal utils.Principal, booking *entity.Booking) (entity.UserRole, error) {
	if principal.UserID == booking.ClientID {
		return entity.RoleClient, nil
	}

	if entity.UserRole(principal.Role) == entity.RoleArtisan {
		artisan, err := s.repo.Artisan.FindByUserID(ctx, principal.UserID)
		if err != nil {
			return "", fmt.Errorf("find artisan profile: %w", err)
		}
		if artisan != nil && artisan.ID == booking.ArtisanID {
			return entity.RoleArtisan, nil
		}
	}

	return "", forbidden("booking belongs to someone else")
}

// transitionAllowed encodes the booking lifecycle. Completed and canceled are terminal.
func transitionAllowed(from, to entity.BookingStatus) bool {
	switch from {
	case entity.BookingStatusPending:
		return to == entity.BookingStatusConfirmed ||
			to == entity.BookingStatusCompleted ||
			to == entity.BookingStatusCanceled
	case entity.BookingStatusConfirmed:
		return to == entity.BookingStatusCompleted || to == entity.BookingStatusCanceled
	}
	return false
}

// Clients may only cancel; artisans drive the rest of the lifecycle.
func actorMayTransition(actor entity.UserRole, to entity.BookingStatus) bool {
	if actor == entity.RoleArtisan {
		return true
	}
	return to == entity.BookingStatusCanceled
}

func mapBookingError(err error) error {
	switch {
	case errors.Is(err, repository.ErrArtisanNotFound):
		return notFound("artisan not found")
	case errors.Is(err, repository.ErrArtisanUnavailable):
		return conflict("artisan is not available")
	case errors.Is(err, repository.ErrSlotTaken):
		return conflict("artisan is already booked at this date and time")
	case errors.Is(err, repository.ErrStatusChanged):
		return conflict("booking was modified concurrently, reload and retry")
	}
	return err
}

// normalizeServiceTime accepts HH:MM or HH:MM:SS and returns HH:MM.
func normalizeServiceTime(v string) (string, error) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{entity.TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(entity.TimeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid service time %q", v)
}

func (s *bookingService) publish(ctx context.Context, key string, payload any) {
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.log.Warn("Failed to publish event", zap.Error(err), zap.String("routing_key", key))
	}
}

func (s *bookingService) record(err error) {
	if s.metrics == nil {
		return
	}
	result := "created"
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict):
		result = "conflict"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAmbiguous), errors.Is(err, ErrValidation):
		result = "rejected"
	default:
		result = "error"
	}
	s.metrics.RecordBooking(result)
}
