package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uuidFrom(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func TestReadProfile_Client(t *testing.T) {
	env := newTestEnv(t)
	p := env.addClient("Chidi")

	profile, err := env.svc.User.ReadProfile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Chidi", profile.FullName)
	assert.Nil(t, profile.Artisan)
}

func TestReadProfile_Artisan(t *testing.T) {
	env := newTestEnv(t)
	p, a := env.addArtisanAccount("Fixit Hub")

	profile, err := env.svc.User.ReadProfile(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, profile.Artisan)
	assert.Equal(t, a.ID.String(), profile.Artisan.ID)
	require.NotNil(t, profile.BusinessName)
	assert.Equal(t, "Fixit Hub", *profile.BusinessName)
}

func TestReadProfile_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	p := env.addClient("Ghost")
	p.UserID = uuid.New()

	_, err := env.svc.User.ReadProfile(context.Background(), p)
	assert.ErrorIs(t, err, ErrNotFound)
}
