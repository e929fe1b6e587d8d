package response

import (
	"time"

	"artisan-marketplace/internal/data/entity"
)

type UserResponse struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Role         entity.UserRole `json:"role"`
	FullName     string          `json:"full_name"`
	BusinessName *string         `json:"business_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ProfileResponse is role-discriminated: Artisan is set only for artisan accounts.
type ProfileResponse struct {
	UserResponse
	Artisan *ArtisanResponse `json:"artisan,omitempty"`
}

type TestAuthResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Role:         user.Role,
		FullName:     user.FullName,
		BusinessName: user.BusinessName,
		CreatedAt:    user.CreatedAt,
	}
}
