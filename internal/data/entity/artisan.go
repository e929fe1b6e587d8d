package entity

import "github.com/google/uuid"

const TopRatingThreshold = 4.5

// Artisan is a service provider profile. UserID is nil for profiles not linked to an account.
type Artisan struct {
	Base
	UserID      *uuid.UUID `db:"user_id"`
	Name        string     `db:"name"`
	Category    string     `db:"category"`
	Location    string     `db:"location"`
	Rating      float64    `db:"rating"`
	IsAvailable bool       `db:"is_available"`
	Skills      []Skill    `db:"-"`
}

// ArtisanFilter holds the optional listing filters. Nil means "not filtered".
type ArtisanFilter struct {
	Category    *string
	IsAvailable *bool
	TopRated    bool
	Search      *string
	Skill       *string
	Booked      *bool
}
