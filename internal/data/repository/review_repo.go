package repository

import (
	"context"
	"errors"
	"fmt"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	// Create stores the review and recomputes the artisan rating in one transaction.
	// Returns the new rating, ErrAlreadyReviewed or ErrArtisanNotFound.
	Create(ctx context.Context, review *entity.Review) (float64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByArtisanID(ctx context.Context, artisanID uuid.UUID) ([]*entity.Review, error)
	// Delete removes the review and recomputes the artisan rating. Returns the new rating.
	Delete(ctx context.Context, review *entity.Review) (float64, error)

	// Business queries
	HasCompletedBooking(ctx context.Context, clientID, artisanID uuid.UUID) (bool, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

// average of all reviews rounded to one decimal, 0 once the last review is gone
const recomputeRatingSQL = `
	UPDATE artisans
	SET rating = COALESCE(
	        (SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE artisan_id = $1), 0),
	    updated_at = NOW()
	WHERE id = $1
	RETURNING rating
`

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) (rating float64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockArtisan(ctx, tx, review.ArtisanID); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO reviews (id, client_id, artisan_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err = tx.Exec(ctx, query,
		review.ID,
		review.ClientID,
		review.ArtisanID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	); err != nil {
		if database.IsUniqueViolation(err, reviewsClientArtisanKey) {
			return 0, ErrAlreadyReviewed
		}
		return 0, fmt.Errorf("create review for artisan %s by client %s: %w",
			review.ArtisanID.String(), review.ClientID.String(), err)
	}

	if rating, err = recomputeRating(ctx, tx, review.ArtisanID); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit review",
			zap.Error(err),
			zap.String("artisan_id", review.ArtisanID.String()),
		)
		return 0, fmt.Errorf("commit review tx: %w", err)
	}

	return rating, nil
}

func (r *reviewRepository) Delete(ctx context.Context, review *entity.Review) (rating float64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockArtisan(ctx, tx, review.ArtisanID); err != nil {
		return 0, err
	}

	result, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, review.ID)
	if err != nil {
		return 0, fmt.Errorf("delete review %s: %w", review.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		err = ErrReviewNotFound
		return 0, err
	}

	if rating, err = recomputeRating(ctx, tx, review.ArtisanID); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit review delete tx: %w", err)
	}

	r.log.Info("Review deleted", zap.String("review_id", review.ID.String()))
	return rating, nil
}

// lockArtisan holds the artisan row until commit, serialising rating recomputes
func lockArtisan(ctx context.Context, tx pgx.Tx, artisanID uuid.UUID) error {
	var available bool
	if err := tx.QueryRow(ctx, lockArtisanSQL, artisanID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrArtisanNotFound
		}
		return fmt.Errorf("lock artisan %s: %w", artisanID.String(), err)
	}
	return nil
}

func recomputeRating(ctx context.Context, tx pgx.Tx, artisanID uuid.UUID) (float64, error) {
	var rating float64
	if err := tx.QueryRow(ctx, recomputeRatingSQL, artisanID).Scan(&rating); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrArtisanNotFound
		}
		return 0, fmt.Errorf("recompute rating for artisan %s: %w", artisanID.String(), err)
	}
	return rating, nil
}

const selectReviewSQL = `
	SELECT rv.id, rv.client_id, rv.artisan_id, rv.rating, rv.comment, rv.created_at, u.full_name
	FROM reviews rv
	JOIN users u ON u.id = rv.client_id
`

func scanReview(row pgx.Row) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.ClientID,
		&review.ArtisanID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.ClientName,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	review, err := scanReview(r.db.QueryRow(ctx, selectReviewSQL+` WHERE rv.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) FindByArtisanID(ctx context.Context, artisanID uuid.UUID) ([]*entity.Review, error) {
	rows, err := r.db.Query(ctx, selectReviewSQL+` WHERE rv.artisan_id = $1 ORDER BY rv.created_at DESC, rv.id`, artisanID)
	if err != nil {
		r.log.Error("Failed to find reviews by artisan ID",
			zap.Error(err),
			zap.String("artisan_id", artisanID.String()),
		)
		return nil, fmt.Errorf("find reviews by artisan ID %s: %w", artisanID.String(), err)
	}
	defer rows.Close()

	reviews := []*entity.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) HasCompletedBooking(ctx context.Context, clientID, artisanID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE client_id = $1 AND artisan_id = $2 AND status = $3
		)
	`

	var ok bool
	if err := r.db.QueryRow(ctx, query, clientID, artisanID, entity.BookingStatusCompleted).Scan(&ok); err != nil {
		r.log.Error("Failed to check completed bookings",
			zap.Error(err),
			zap.String("client_id", clientID.String()),
			zap.String("artisan_id", artisanID.String()),
		)
		return false, fmt.Errorf("check completed booking: %w", err)
	}
	return ok, nil
}
