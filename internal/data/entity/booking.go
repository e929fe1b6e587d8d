package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCanceled:
		return true
	}
	return false
}

// Active bookings count toward slot conflicts.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// ActiveBookingStatuses in SQL-friendly form.
var ActiveBookingStatuses = []string{string(BookingStatusPending), string(BookingStatusConfirmed)}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Booking struct {
	ID          uuid.UUID     `db:"id"`
	ClientID    uuid.UUID     `db:"client_id"`
	ArtisanID   uuid.UUID     `db:"artisan_id"`
	Status      BookingStatus `db:"status"`
	ServiceDate time.Time     `db:"service_date"`
	ServiceTime string        `db:"service_time"` // HH:MM
	BookedAt    time.Time     `db:"booked_at"`
	UpdatedAt   time.Time     `db:"updated_at"`

	// joined for display
	ClientName  string `db:"client_name"`
	ArtisanName string `db:"artisan_name"`
}
