package repository

import (
	"context"
	"errors"
	"fmt"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// CreateExclusive inserts a pending booking and marks the artisan unavailable.
	// Returns ErrArtisanNotFound, ErrArtisanUnavailable or ErrSlotTaken when the slot cannot be taken.
	CreateExclusive(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*entity.Booking, error)
	FindByArtisanID(ctx context.Context, artisanID uuid.UUID) ([]*entity.Booking, error)
	// UpdateStatus moves a booking from -> to. When the booking leaves the active set and the
	// artisan has no other active booking, the artisan becomes available again.
	UpdateStatus(ctx context.Context, booking *entity.Booking, to entity.BookingStatus) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const (
	lockArtisanSQL = `SELECT is_available FROM artisans WHERE id = $1 FOR UPDATE`

	slotTakenSQL = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE artisan_id = $1 AND service_date = $2 AND service_time = $3
			  AND status = ANY($4::text[])
		)
	`

	insertBookingSQL = `
		INSERT INTO bookings (id, client_id, artisan_id, status, service_date,
		                      service_time, booked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	setAvailabilitySQL = `UPDATE artisans SET is_available = $2, updated_at = NOW() WHERE id = $1`

	updateBookingStatusSQL = `
		UPDATE bookings SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	hasActiveBookingSQL = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE artisan_id = $1 AND status = ANY($2::text[])
		)
	`
)

func (r *bookingRepository) CreateExclusive(ctx context.Context, booking *entity.Booking) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// the row lock serialises concurrent bookings of the same artisan
	var available bool
	if err = tx.QueryRow(ctx, lockArtisanSQL, booking.ArtisanID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrArtisanNotFound
		}
		return fmt.Errorf("lock artisan %s: %w", booking.ArtisanID.String(), err)
	}
	if !available {
		return ErrArtisanUnavailable
	}

	var taken bool
	if err = tx.QueryRow(ctx, slotTakenSQL,
		booking.ArtisanID,
		booking.ServiceDate,
		booking.ServiceTime,
		entity.ActiveBookingStatuses,
	).Scan(&taken); err != nil {
		return fmt.Errorf("check booking slot: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}

	if _, err = tx.Exec(ctx, insertBookingSQL,
		booking.ID,
		booking.ClientID,
		booking.ArtisanID,
		booking.Status,
		booking.ServiceDate,
		booking.ServiceTime,
		booking.BookedAt,
		booking.UpdatedAt,
	); err != nil {
		if database.IsUniqueViolation(err, bookingsActiveSlotKey) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	if _, err = tx.Exec(ctx, setAvailabilitySQL, booking.ArtisanID, false); err != nil {
		return fmt.Errorf("mark artisan %s unavailable: %w", booking.ArtisanID.String(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		if database.IsUniqueViolation(err, bookingsActiveSlotKey) {
			return ErrSlotTaken
		}
		r.log.Error("Failed to commit booking",
			zap.Error(err),
			zap.String("artisan_id", booking.ArtisanID.String()),
		)
		return fmt.Errorf("commit booking tx: %w", err)
	}

	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, booking *entity.Booking, to entity.BookingStatus) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking status tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var available bool
	if err = tx.QueryRow(ctx, lockArtisanSQL, booking.ArtisanID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrArtisanNotFound
		}
		return fmt.Errorf("lock artisan %s: %w", booking.ArtisanID.String(), err)
	}

	result, err := tx.Exec(ctx, updateBookingStatusSQL, booking.ID, booking.Status, to)
	if err != nil {
		return fmt.Errorf("update booking %s status to %s: %w", booking.ID.String(), to, err)
	}
	if result.RowsAffected() == 0 {
		err = ErrStatusChanged
		return err
	}

	if !to.Active() && !available {
		var stillBooked bool
		if err = tx.QueryRow(ctx, hasActiveBookingSQL,
			booking.ArtisanID, entity.ActiveBookingStatuses,
		).Scan(&stillBooked); err != nil {
			return fmt.Errorf("check active bookings: %w", err)
		}
		if !stillBooked {
			if _, err = tx.Exec(ctx, setAvailabilitySQL, booking.ArtisanID, true); err != nil {
				return fmt.Errorf("restore artisan %s availability: %w", booking.ArtisanID.String(), err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit booking status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("commit booking status tx: %w", err)
	}

	return nil
}

const selectBookingSQL = `
	SELECT b.id, b.client_id, b.artisan_id, b.status, b.service_date,
	       to_char(b.service_time, 'HH24:MI'), b.booked_at, b.updated_at,
	       u.full_name, a.name
	FROM bookings b
	JOIN users u ON u.id = b.client_id
	JOIN artisans a ON a.id = b.artisan_id
`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.ClientID,
		&b.ArtisanID,
		&b.Status,
		&b.ServiceDate,
		&b.ServiceTime,
		&b.BookedAt,
		&b.UpdatedAt,
		&b.ClientName,
		&b.ArtisanName,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, selectBookingSQL+` WHERE b.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return b, nil
}

func (r *bookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*entity.Booking, error) {
	query := selectBookingSQL + ` WHERE b.client_id = $1 ORDER BY b.booked_at DESC, b.id`

	bookings, err := r.queryBookings(ctx, query, clientID)
	if err != nil {
		r.log.Error("Failed to find bookings by client ID",
			zap.Error(err),
			zap.String("client_id", clientID.String()),
		)
		return nil, fmt.Errorf("find bookings by client ID %s: %w", clientID.String(), err)
	}
	return bookings, nil
}

func (r *bookingRepository) FindByArtisanID(ctx context.Context, artisanID uuid.UUID) ([]*entity.Booking, error) {
	query := selectBookingSQL + ` WHERE b.artisan_id = $1 ORDER BY b.service_date DESC, b.service_time DESC, b.id`

	bookings, err := r.queryBookings(ctx, query, artisanID)
	if err != nil {
		r.log.Error("Failed to find bookings by artisan ID",
			zap.Error(err),
			zap.String("artisan_id", artisanID.String()),
		)
		return nil, fmt.Errorf("find bookings by artisan ID %s: %w", artisanID.String(), err)
	}
	return bookings, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*entity.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}
