package repository

import (
	"context"
	"testing"
	"time"

	"artisan-marketplace/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReview() *entity.Review {
	return &entity.Review{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		ClientID:   uuid.New(),
		ArtisanID:  uuid.New(),
		Rating:     5,
	}
}

func TestReviewCreate_RecomputesRating(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReviewRepository(mock, zap.NewNop())
	rv := newReview()

	mock.ExpectBegin()
	mock.ExpectQuery(sqlRe(lockArtisanSQL)).WithArgs(rv.ArtisanID).
		WillReturnRows(pgxmock.NewRows([]string{"is_available"}).AddRow(false))
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.ClientID, rv.ArtisanID, rv.Rating, rv.Comment, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(sqlRe(recomputeRatingSQL)).WithArgs(rv.ArtisanID).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(4.5))
	mock.ExpectCommit()

	rating, err := repo.Create(context.Background(), rv)
	require.NoError(t, err)
	assert.Equal(t, 4.5, rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreate_Duplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReviewRepository(mock, zap.NewNop())
	rv := newReview()

	mock.ExpectBegin()
	mock.ExpectQuery(sqlRe(lockArtisanSQL)).WithArgs(rv.ArtisanID).
		WillReturnRows(pgxmock.NewRows([]string{"is_available"}).AddRow(false))
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: reviewsClientArtisanKey})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), rv)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewDelete_Missing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReviewRepository(mock, zap.NewNop())
	rv := newReview()

	mock.ExpectBegin()
	mock.ExpectQuery(sqlRe(lockArtisanSQL)).WithArgs(rv.ArtisanID).
		WillReturnRows(pgxmock.NewRows([]string{"is_available"}).AddRow(false))
	mock.ExpectExec("DELETE FROM reviews").WithArgs(rv.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), rv)
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreate_ArtisanMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReviewRepository(mock, zap.NewNop())
	rv := newReview()

	mock.ExpectBegin()
	mock.ExpectQuery(sqlRe(lockArtisanSQL)).WithArgs(rv.ArtisanID).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), rv)
	assert.ErrorIs(t, err, ErrArtisanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewDelete_RecomputesRating(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReviewRepository(mock, zap.NewNop())
	rv := newReview()

	mock.ExpectBegin()
	mock.ExpectQuery(sqlRe(lockArtisanSQL)).WithArgs(rv.ArtisanID).
		WillReturnRows(pgxmock.NewRows([]string{"is_available"}).AddRow(false))
	mock.ExpectExec("DELETE FROM reviews").WithArgs(rv.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(sqlRe(recomputeRatingSQL)).WithArgs(rv.ArtisanID).
		WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(0.0))
	mock.ExpectCommit()

	rating, err := repo.Delete(context.Background(), rv)
	require.NoError(t, err)
	assert.Zero(t, rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasCompletedBooking(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReviewRepository(mock, zap.NewNop())
	clientID, artisanID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(clientID, artisanID, entity.BookingStatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasCompletedBooking(context.Background(), clientID, artisanID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
