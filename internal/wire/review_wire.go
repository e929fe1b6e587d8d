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

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/artisans/{id}/reviews - reviews of one artisan, newest first
	r.Get("/api/artisans/{id}/reviews", reviewHandler.ListArtisanReviews)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(config.JWT.Secret, repo.Session, log))

		// POST /api/artisans/{id}/reviews - clients with a completed booking
		r.With(middleware.RequireRole(log, string(entity.RoleClient))).
			Post("/api/artisans/{id}/reviews", reviewHandler.CreateReview)

		// DELETE /api/reviews/{id} - owner only
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})
}
