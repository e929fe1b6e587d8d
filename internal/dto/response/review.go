package response

import (
	"time"

	"artisan-marketplace/internal/data/entity"
)

type ReviewResponse struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	ClientName string    `json:"client_name,omitempty"`
	ArtisanID  string    `json:"artisan_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewCreatedResponse also reports the artisan's recomputed rating.
type ReviewCreatedResponse struct {
	Review        ReviewResponse `json:"review"`
	ArtisanRating float64        `json:"artisan_rating"`
}

func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:         review.ID.String(),
		ClientID:   review.ClientID.String(),
		ClientName: review.ClientName,
		ArtisanID:  review.ArtisanID.String(),
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}
}
