// Package events publishes booking lifecycle notifications for downstream consumers.
package events

import (
	"context"
	"time"
)

// Routing keys on the topic exchange.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	ArtisanRated         = "artisan.rated"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

type BookingCreatedEvent struct {
	BookingID   string    `json:"booking_id"`
	ClientID    string    `json:"client_id"`
	ArtisanID   string    `json:"artisan_id"`
	ServiceDate string    `json:"service_date"`
	ServiceTime string    `json:"service_time"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type BookingStatusChangedEvent struct {
	BookingID  string    `json:"booking_id"`
	ArtisanID  string    `json:"artisan_id"`
	ChangedBy  string    `json:"changed_by"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ArtisanRatedEvent struct {
	ArtisanID  string    `json:"artisan_id"`
	NewRating  float64   `json:"new_rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

type noop struct{}

// NewNoop returns a Publisher that drops every event.
func NewNoop() Publisher { return noop{} }

func (noop) Publish(context.Context, string, any) error { return nil }
func (noop) Close() error { return nil }
