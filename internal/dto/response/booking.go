package response

import (
	"time"

	"artisan-marketplace/internal/data/entity"
)

type BookingResponse struct {
	ID          string               `json:"id"`
	ClientID    string               `json:"client_id"`
	ClientName  string               `json:"client_name,omitempty"`
	ArtisanID   string               `json:"artisan_id"`
	ArtisanName string               `json:"artisan_name,omitempty"`
	Status      entity.BookingStatus `json:"status"`
	ServiceDate string               `json:"service_date"`
	ServiceTime string               `json:"service_time"`
	BookedAt    time.Time            `json:"booked_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID.String(),
		ClientID:    b.ClientID.String(),
		ClientName:  b.ClientName,
		ArtisanID:   b.ArtisanID.String(),
		ArtisanName: b.ArtisanName,
		Status:      b.Status,
		ServiceDate: b.ServiceDate.Format(entity.DateLayout),
		ServiceTime: b.ServiceTime,
		BookedAt:    b.BookedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingToResponse(b))
	}
	return out
}
