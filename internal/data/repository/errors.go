package repository

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrArtisanNotFound    = errors.New("artisan not found")
	ErrArtisanUnavailable = errors.New("artisan is not available")
	ErrSlotTaken          = errors.New("artisan already booked for this slot")
	ErrStatusChanged      = errors.New("booking status changed concurrently")
	ErrAlreadyReviewed    = errors.New("artisan already reviewed by this client")
	ErrReviewNotFound     = errors.New("review not found")
)

const (
	usersEmailKey         = "users_email_key"
	bookingsActiveSlotKey = "bookings_active_slot_key"

	reviewsClientArtisanKey = "reviews_client_artisan_key"
)
