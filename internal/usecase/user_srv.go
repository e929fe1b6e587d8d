package usecase

import (
	"context"
	"fmt"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/internal/dto/response"
	"artisan-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	ReadProfile(ctx context.Context, principal utils.Principal) (*response.ProfileResponse, error)
}

type userService struct {
	userRepo    repository.UserRepository
	artisanRepo repository.ArtisanRepository
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, artisanRepo repository.ArtisanRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		artisanRepo: artisanRepo,
		log:         log.With(zap.String("service", "user")),
	}
}

func (us *userService) ReadProfile(ctx context.Context, principal utils.Principal) (*response.ProfileResponse, error) {
	user, err := us.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, notFound("user not found")
	}

	profile := &response.ProfileResponse{UserResponse: response.UserToResponse(user)}

	if user.Role == entity.RoleArtisan {
		artisan, err := us.artisanRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("get artisan profile: %w", err)
		}
		if artisan == nil {
			// account predates its directory entry; the user part is still valid
			us.log.Warn("Artisan account without profile", zap.String("user_id", user.ID.String()))
		} else {
			a := response.ArtisanToResponse(artisan)
			profile.Artisan = &a
		}
	}

	return profile, nil
}
