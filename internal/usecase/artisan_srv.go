package usecase

import (
	"context"
	"fmt"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ArtisanService interface {
	List(ctx context.Context, filter entity.ArtisanFilter) ([]response.ArtisanResponse, error)
	Get(ctx context.Context, id string) (*response.ArtisanResponse, error)
	ListSkills(ctx context.Context) ([]response.SkillResponse, error)
}

type artisanService struct {
	artisanRepo repository.ArtisanRepository
	skillRepo   repository.SkillRepository
	listings    *listingCache
	log         *zap.Logger
}

func NewArtisanService(
	artisanRepo repository.ArtisanRepository,
	skillRepo repository.SkillRepository,
	listings *listingCache,
	log *zap.Logger,
) ArtisanService {
	return &artisanService{
		artisanRepo: artisanRepo,
		skillRepo:   skillRepo,
		listings:    listings,
		log:         log.With(zap.String("service", "artisan")),
	}
}

func (s *artisanService) List(ctx context.Context, filter entity.ArtisanFilter) ([]response.ArtisanResponse, error) {
	cached, key, ok := s.listings.get(ctx, filter)
	if ok {
		return cached, nil
	}

	artisans, err := s.artisanRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list artisans: %w", err)
	}

	out := make([]response.ArtisanResponse, 0, len(artisans))
	for _, a := range artisans {
		out = append(out, response.ArtisanToResponse(a))
	}

	s.listings.put(ctx, key, out)
	s.log.Debug("Artisans listed", zap.Int("count", len(out)))
	return out, nil
}

func (s *artisanService) Get(ctx context.Context, id string) (*response.ArtisanResponse, error) {
	artisanID, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound("artisan not found")
	}

	artisan, err := s.artisanRepo.FindByID(ctx, artisanID)
	if err != nil {
		return nil, fmt.Errorf("get artisan: %w", err)
	}
	if artisan == nil {
		return nil, notFound("artisan not found")
	}

	resp := response.ArtisanToResponse(artisan)
	return &resp, nil
}

func (s *artisanService) ListSkills(ctx context.Context) ([]response.SkillResponse, error) {
	skills, err := s.skillRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}

	out := make([]response.SkillResponse, 0, len(skills))
	for _, sk := range skills {
		out = append(out, response.SkillToResponse(sk))
	}
	return out, nil
}
