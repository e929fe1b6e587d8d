package entity

import (
	"github.com/google/uuid"
)

// Review is a client's rating of an artisan they have worked with. One per client and artisan.
type Review struct {
	BaseSimple
	ClientID  uuid.UUID `db:"client_id"`
	ArtisanID uuid.UUID `db:"artisan_id"`
	Rating    int       `db:"rating"` // 1-5
	Comment   *string   `db:"comment"`

	ClientName string `db:"client_name"`
}
