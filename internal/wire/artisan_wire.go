package wire

import (
	"artisan-marketplace/internal/adaptor"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/pkg/middleware"
	"artisan-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireArtisan(
	r chi.Router,
	artisanHandler *adaptor.ArtisanHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/artisans/list", artisanHandler.List)
	r.Get("/api/artisans/skills", artisanHandler.ListSkills)
	r.Get("/api/artisans/{id}", artisanHandler.Get)

	// ==================== PROTECTED ROUTES ====================
	// same listing for signed-in clients
	r.With(middleware.AuthSession(config.JWT.Secret, repo.Session, log)).
		Get("/api/clients/list-artisans", artisanHandler.List)
}
