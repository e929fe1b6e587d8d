package usecase

import (
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/pkg/cache"
	"artisan-marketplace/pkg/events"
	"artisan-marketplace/pkg/metrics"
	"artisan-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	Artisan ArtisanService
	Booking BookingService
	Review  ReviewService
}

// Deps are the outbound collaborators shared by every service.
type Deps struct {
	Cache     cache.Cache
	Publisher events.Publisher
	Metrics   *metrics.Metrics
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	listings := newListingCache(deps.Cache, config.Redis.TTL(), deps.Metrics, log)

	return &Service{
		Auth:    NewAuthService(repo, config, listings, log),
		User:    NewUserService(repo.User, repo.Artisan, log),
		Artisan: NewArtisanService(repo.Artisan, repo.Skill, listings, log),
		Booking: NewBookingService(repo, listings, deps.Publisher, deps.Metrics, log),
		Review:  NewReviewService(repo, listings, deps.Publisher, log),
	}
}
