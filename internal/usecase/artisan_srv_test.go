package usecase

import (
	"context"
	"strings"
	"testing"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository/memrepo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func names(t *testing.T, env *testEnv, f entity.ArtisanFilter) []string {
	t.Helper()
	list, err := env.svc.Artisan.List(context.Background(), f)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name)
	}
	return out
}

func TestListArtisans_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.store.AddArtisan(entity.Artisan{Name: "Alpha TV", Category: "Television", Location: "Lagos", Rating: 4.8, IsAvailable: true,
		Skills: []entity.Skill{memSkill("Television Repair")}})
	env.store.AddArtisan(entity.Artisan{Name: "Beta Cool", Category: "Refrigerator", Location: "Abuja", Rating: 3.9, IsAvailable: true,
		Skills: []entity.Skill{memSkill("Refrigerator Repair")}})
	env.store.AddArtisan(entity.Artisan{Name: "Gamma Phones", Category: "Gadgets", Location: "Lagos", Rating: 4.5, IsAvailable: false,
		Skills: []entity.Skill{memSkill("Phone Repair")}})

	assert.Equal(t, []string{"Alpha TV", "Beta Cool", "Gamma Phones"}, names(t, env, entity.ArtisanFilter{}))
	assert.Equal(t, []string{"Alpha TV"}, names(t, env, entity.ArtisanFilter{Category: ptr("Television")}))
	assert.Equal(t, []string{"Gamma Phones"}, names(t, env, entity.ArtisanFilter{IsAvailable: ptr(false)}))
	assert.Equal(t, []string{"Alpha TV", "Gamma Phones"}, names(t, env, entity.ArtisanFilter{TopRated: true}))
	assert.Equal(t, []string{"Alpha TV", "Gamma Phones"}, names(t, env, entity.ArtisanFilter{Search: ptr("LAGOS")}))
	assert.Equal(t, []string{"Gamma Phones"}, names(t, env, entity.ArtisanFilter{Skill: ptr("phone")}))
	assert.Empty(t, names(t, env, entity.ArtisanFilter{Category: ptr("Television"), IsAvailable: ptr(false)}))
}

func TestListArtisans_TopRatedInCategory(t *testing.T) {
	env := newTestEnv(t)
	env.store.AddArtisan(entity.Artisan{Name: "Screen Masters", Category: "Television", Location: "Lagos", Rating: 4.7, IsAvailable: true})
	env.store.AddArtisan(entity.Artisan{Name: "Edge TV", Category: "Television", Location: "Lagos", Rating: 4.5, IsAvailable: true})
	env.store.AddArtisan(entity.Artisan{Name: "Tube Fixers", Category: "Television", Location: "Abuja", Rating: 4.4, IsAvailable: true})
	env.store.AddArtisan(entity.Artisan{Name: "Frost Pro", Category: "Refrigerator", Location: "Lagos", Rating: 4.9, IsAvailable: true})

	got := names(t, env, entity.ArtisanFilter{Category: ptr("Television"), TopRated: true})
	assert.ElementsMatch(t, []string{"Screen Masters", "Edge TV"}, got)
}

func TestListArtisans_BookedFilter(t *testing.T) {
	env := newTestEnv(t)
	booked := env.addArtisan("Booked Shop", "Television", true)
	env.addArtisan("Idle Shop", "Television", true)

	_, err := env.svc.Booking.CreateBooking(context.Background(), env.addClient("Ada"), bookByID(booked.ID))
	require.NoError(t, err)

	assert.Equal(t, []string{"Booked Shop"}, names(t, env, entity.ArtisanFilter{Booked: ptr(true)}))
	assert.Equal(t, []string{"Idle Shop"}, names(t, env, entity.ArtisanFilter{Booked: ptr(false)}))
}

func TestListArtisans_ServedFromCacheUntilInvalidated(t *testing.T) {
	env := newTestEnv(t)
	first := env.addArtisan("First", "Television", true)

	assert.Equal(t, []string{"First"}, names(t, env, entity.ArtisanFilter{}))
	assert.Equal(t, 1, env.cache.sets)

	// written behind the service's back, so only a fresh read can see it
	env.addArtisan("Second", "Television", true)
	assert.Equal(t, []string{"First"}, names(t, env, entity.ArtisanFilter{}))

	_, err := env.svc.Booking.CreateBooking(context.Background(), env.addClient("Ada"), bookByID(first.ID))
	require.NoError(t, err)

	list, err := env.svc.Artisan.List(context.Background(), entity.ArtisanFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsAvailable)
}

func TestListArtisans_CacheDown(t *testing.T) {
	env := newTestEnv(t)
	env.addArtisan("First", "Television", true)
	env.cache.down = true

	assert.Equal(t, []string{"First"}, names(t, env, entity.ArtisanFilter{}))
	assert.Equal(t, 0, env.cache.sets)

	// writes still succeed when the cache cannot be bumped
	_, err := env.svc.Booking.CreateBooking(context.Background(), env.addClient("Ada"), bookByID(env.addArtisan("Second", "Laptop", true).ID))
	assert.NoError(t, err)
}

func TestGetArtisan(t *testing.T) {
	env := newTestEnv(t)
	a := env.addArtisan("Solo", "Laptop", true)

	got, err := env.svc.Artisan.Get(context.Background(), a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Solo", got.Name)
	assert.NotNil(t, got.Skills)

	_, err = env.svc.Artisan.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Artisan.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSkills(t *testing.T) {
	env := newTestEnv(t)

	skills, err := env.svc.Artisan.ListSkills(context.Background())
	require.NoError(t, err)
	require.Len(t, skills, 10)
	assert.Equal(t, "Air Conditioner Repair", skills[0].Name)
}

func TestListCacheKey(t *testing.T) {
	a := listCacheKey(3, entity.ArtisanFilter{Search: ptr("Lagos"), Category: ptr("Television")})
	b := listCacheKey(3, entity.ArtisanFilter{Category: ptr("Television"), Search: ptr("lagos")})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "artisans:list:v3:"))

	assert.NotEqual(t, a, listCacheKey(4, entity.ArtisanFilter{Search: ptr("Lagos"), Category: ptr("Television")}))
	assert.NotEqual(t, listCacheKey(1, entity.ArtisanFilter{IsAvailable: ptr(true)}), listCacheKey(1, entity.ArtisanFilter{IsAvailable: ptr(false)}))
	assert.NotEqual(t, listCacheKey(1, entity.ArtisanFilter{}), listCacheKey(1, entity.ArtisanFilter{TopRated: true}))

	// category values are not allowed to bleed into other parameters
	assert.NotEqual(t,
		listCacheKey(1, entity.ArtisanFilter{Category: ptr("TV&search=x")}),
		listCacheKey(1, entity.ArtisanFilter{Category: ptr("TV"), Search: ptr("x")}),
	)
}

func memSkill(name string) entity.Skill {
	for _, s := range memrepo.DefaultSkills {
		if s.Name == name {
			return s
		}
	}
	panic("unknown skill " + name)
}
