package repository

import (
	"strings"
	"testing"

	"artisan-marketplace/internal/data/entity"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestBuildArtisanListQuery_NoFilters(t *testing.T) {
	query, args := buildArtisanListQuery(entity.ArtisanFilter{})

	assert.Empty(t, args)
	assert.Contains(t, query, "WHERE TRUE")
	assert.True(t, strings.HasSuffix(query, "ORDER BY a.name, a.id"))
	assert.NotContains(t, query, "ILIKE")
}

func TestBuildArtisanListQuery_AllFilters(t *testing.T) {
	query, args := buildArtisanListQuery(entity.ArtisanFilter{
		Category:    strPtr("Television"),
		IsAvailable: boolPtr(true),
		TopRated:    true,
		Search:      strPtr("lagos"),
		Skill:       strPtr("repair"),
		Booked:      boolPtr(false),
	})

	assert.Equal(t, []any{
		"Television",
		true,
		entity.TopRatingThreshold,
		"%lagos%",
		"%repair%",
		entity.ActiveBookingStatuses,
	}, args)
	assert.Contains(t, query, "a.category = $1")
	assert.Contains(t, query, "a.is_available = $2")
	assert.Contains(t, query, "a.rating >= $3")
	assert.Contains(t, query, "a.name ILIKE $4 OR a.location ILIKE $4")
	assert.Contains(t, query, "sk.name ILIKE $5")
	assert.Contains(t, query, "NOT EXISTS")
	assert.Contains(t, query, "$6::text[]")
}

func TestBuildArtisanListQuery_BookedOnly(t *testing.T) {
	query, args := buildArtisanListQuery(entity.ArtisanFilter{Booked: boolPtr(true)})

	assert.Len(t, args, 1)
	assert.Contains(t, query, "AND EXISTS")
	assert.NotContains(t, query, "NOT EXISTS")
}

func TestBuildArtisanListQuery_EmptySearchIgnored(t *testing.T) {
	_, args := buildArtisanListQuery(entity.ArtisanFilter{Search: strPtr(""), Skill: strPtr("")})
	assert.Empty(t, args)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%tv%", likePattern("tv"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
