package usecase

import (
	"context"
	"testing"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/dto/request"
	"artisan-marketplace/pkg/events"
	"artisan-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeJob books the artisan for the client and has the artisan complete it.
func completeJob(t *testing.T, env *testEnv, client, artisanUser utils.Principal, artisanID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	b, err := env.svc.Booking.CreateBooking(ctx, client, bookByID(artisanID))
	require.NoError(t, err)
	_, err = env.svc.Booking.UpdateBookingStatus(ctx, artisanUser, b.ID, &request.UpdateBookingStatusRequest{Status: "completed"})
	require.NoError(t, err)
}

func TestCreateReview_RequiresCompletedBooking(t *testing.T) {
	env := newTestEnv(t)
	client := env.addClient("Ada")
	_, profile := env.addArtisanAccount("Fixit Hub")

	_, err := env.svc.Review.CreateReview(context.Background(), client, profile.ID.String(), &request.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrAuthorization)

	// a pending booking is not enough
	_, err = env.svc.Booking.CreateBooking(context.Background(), client, bookByID(profile.ID))
	require.NoError(t, err)
	_, err = env.svc.Review.CreateReview(context.Background(), client, profile.ID.String(), &request.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestCreateReview_RecomputesRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	artisanUser, profile := env.addArtisanAccount("Fixit Hub")
	ada, bayo := env.addClient("Ada"), env.addClient("Bayo")

	completeJob(t, env, ada, artisanUser, profile.ID)
	completeJob(t, env, bayo, artisanUser, profile.ID)

	comment := "  quick and tidy  "
	first, err := env.svc.Review.CreateReview(ctx, ada, profile.ID.String(), &request.CreateReviewRequest{Rating: 4, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, 4.0, first.ArtisanRating)
	require.NotNil(t, first.Review.Comment)
	assert.Equal(t, "quick and tidy", *first.Review.Comment)

	second, err := env.svc.Review.CreateReview(ctx, bayo, profile.ID.String(), &request.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 4.5, second.ArtisanRating)
	assert.Equal(t, 4.5, env.store.Artisan(profile.ID).Rating)

	ev, ok := env.publisher.last().payload.(events.ArtisanRatedEvent)
	require.True(t, ok)
	assert.Equal(t, profile.ID.String(), ev.ArtisanID)
	assert.Equal(t, 4.5, ev.NewRating)

	// the listing picks up the new rating
	top, err := env.svc.Artisan.List(ctx, entity.ArtisanFilter{TopRated: true})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 4.5, top[0].Rating)

	_, err = env.svc.Review.CreateReview(ctx, ada, profile.ID.String(), &request.CreateReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrConflict)

	reviews, err := env.svc.Review.ListArtisanReviews(ctx, profile.ID.String())
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.ElementsMatch(t, []string{"Ada", "Bayo"}, []string{reviews[0].ClientName, reviews[1].ClientName})
}

func TestCreateReview_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	artisanUser, profile := env.addArtisanAccount("Fixit Hub")

	_, err := env.svc.Review.CreateReview(ctx, artisanUser, profile.ID.String(), &request.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrAuthorization)

	client := env.addClient("Ada")
	_, err = env.svc.Review.CreateReview(ctx, client, profile.ID.String(), &request.CreateReviewRequest{Rating: 0})
	requireFieldError(t, err, "rating")

	_, err = env.svc.Review.CreateReview(ctx, client, profile.ID.String(), &request.CreateReviewRequest{Rating: 6})
	requireFieldError(t, err, "rating")

	_, err = env.svc.Review.CreateReview(ctx, client, uuid.NewString(), &request.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Review.ListArtisanReviews(ctx, "bad-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	artisanUser, profile := env.addArtisanAccount("Fixit Hub")
	ada, bayo := env.addClient("Ada"), env.addClient("Bayo")

	completeJob(t, env, ada, artisanUser, profile.ID)
	completeJob(t, env, bayo, artisanUser, profile.ID)

	adaReview, err := env.svc.Review.CreateReview(ctx, ada, profile.ID.String(), &request.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)
	_, err = env.svc.Review.CreateReview(ctx, bayo, profile.ID.String(), &request.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 3.5, env.store.Artisan(profile.ID).Rating)

	assert.ErrorIs(t, env.svc.Review.DeleteReview(ctx, bayo, adaReview.Review.ID), ErrAuthorization)
	assert.ErrorIs(t, env.svc.Review.DeleteReview(ctx, ada, uuid.NewString()), ErrNotFound)

	require.NoError(t, env.svc.Review.DeleteReview(ctx, ada, adaReview.Review.ID))
	assert.Equal(t, 5.0, env.store.Artisan(profile.ID).Rating)

	assert.ErrorIs(t, env.svc.Review.DeleteReview(ctx, ada, adaReview.Review.ID), ErrNotFound)
}
