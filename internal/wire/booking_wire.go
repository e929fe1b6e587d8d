package wire

import (
	"artisan-marketplace/internal/adaptor"
	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/pkg/middleware"
	"artisan-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(config.JWT.Secret, repo.Session, log))

		// POST /api/artisans/book - clients only
		r.With(middleware.RequireRole(log, string(entity.RoleClient))).
			Post("/api/artisans/book", bookingHandler.CreateBooking)

		// GET /api/artisans/my-bookings - bookings the caller made
		r.Get("/api/artisans/my-bookings", bookingHandler.MyBookings)

		// GET /api/artisans/bookings - bookings made against the caller's profile
		r.With(middleware.RequireRole(log, string(entity.RoleArtisan))).
			Get("/api/artisans/bookings", bookingHandler.ArtisanBookings)

		// PATCH /api/artisans/bookings/{id}/status - either party, rules in the service
		r.Patch("/api/artisans/bookings/{id}/status", bookingHandler.UpdateStatus)
	})
}
