package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/internal/dto/request"
	"artisan-marketplace/internal/dto/response"
	"artisan-marketplace/pkg/events"
	"artisan-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	CreateReview(ctx context.Context, principal utils.Principal, artisanID string, req *request.CreateReviewRequest) (*response.ReviewCreatedResponse, error)
	ListArtisanReviews(ctx context.Context, artisanID string) ([]response.ReviewResponse, error)
	DeleteReview(ctx context.Context, principal utils.Principal, reviewID string) error
}

type reviewService struct {
	repo      *repository.Repository
	listings  *listingCache
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewReviewService(repo *repository.Repository, listings *listingCache, publisher events.Publisher, log *zap.Logger) ReviewService {
	if publisher == nil {
		publisher = events.NewNoop()
	}
	return &reviewService{
		repo:      repo,
		listings:  listings,
		publisher: publisher,
		log:       log.With(zap.String("service", "review")),
		now:       time.Now,
	}
}

func (s *reviewService) CreateReview(
	ctx context.Context,
	principal utils.Principal,
	artisanID string,
	req *request.CreateReviewRequest,
) (*response.ReviewCreatedResponse, error) {
	if entity.UserRole(principal.Role) != entity.RoleClient {
		return nil, forbidden("only clients can review artisans")
	}
	if req.Comment != nil {
		c := strings.TrimSpace(*req.Comment)
		req.Comment = optional(c)
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	artisan, err := s.findArtisan(ctx, artisanID)
	if err != nil {
		return nil, err
	}

	// only clients who actually had the job done may rate it
	worked, err := s.repo.Review.HasCompletedBooking(ctx, principal.UserID, artisan.ID)
	if err != nil {
		return nil, fmt.Errorf("check booking history: %w", err)
	}
	if !worked {
		return nil, forbidden("you can only review artisans after a completed booking")
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: s.now(),
		},
		ClientID:  principal.UserID,
		ArtisanID: artisan.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	rating, err := s.repo.Review.Create(ctx, review)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyReviewed):
			return nil, conflict("you have already reviewed this artisan")
		case errors.Is(err, repository.ErrArtisanNotFound):
			return nil, notFound("artisan not found")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.afterRatingChange(ctx, artisan.ID, rating)

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("artisan_id", artisan.ID.String()),
		zap.Int("rating", review.Rating),
		zap.Float64("artisan_rating", rating),
	)

	return &response.ReviewCreatedResponse{
		Review:        response.ReviewToResponse(review),
		ArtisanRating: rating,
	}, nil
}

func (s *reviewService) ListArtisanReviews(ctx context.Context, artisanID string) ([]response.ReviewResponse, error) {
	artisan, err := s.findArtisan(ctx, artisanID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.Review.FindByArtisanID(ctx, artisan.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	out := make([]response.ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, response.ReviewToResponse(rv))
	}
	return out, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, principal utils.Principal, reviewID string) error {
	id, err := uuid.Parse(reviewID)
	if err != nil {
		return notFound("review not found")
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return notFound("review not found")
	}
	if review.ClientID != principal.UserID {
		return forbidden("review belongs to someone else")
	}

	rating, err := s.repo.Review.Delete(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return notFound("review not found")
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.afterRatingChange(ctx, review.ArtisanID, rating)
	return nil
}

func (s *reviewService) findArtisan(ctx context.Context, artisanID string) (*entity.Artisan, error) {
	id, err := uuid.Parse(artisanID)
	if err != nil {
		return nil, notFound("artisan not found")
	}
	artisan, err := s.repo.Artisan.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find artisan: %w", err)
	}
	if artisan == nil {
		return nil, notFound("artisan not found")
	}
	return artisan, nil
}

// afterRatingChange refreshes listings, which filter on rating, and announces the new value.
func (s *reviewService) afterRatingChange(ctx context.Context, artisanID uuid.UUID, rating float64) {
	s.listings.invalidate(ctx)

	err := s.publisher.Publish(ctx, events.ArtisanRated, events.ArtisanRatedEvent{
		ArtisanID:  artisanID.String(),
		NewRating:  rating,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.log.Warn("Failed to publish event", zap.Error(err), zap.String("routing_key", events.ArtisanRated))
	}
}
