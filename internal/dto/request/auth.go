package request

import "strings"

// RegisterRequest covers both roles. Artisan-only fields are checked by the service.
type RegisterRequest struct {
	UserType        string   `json:"user_type" validate:"required,oneof=client artisan"`
	Email           string   `json:"email" validate:"required,email,max=254"`
	Password        string   `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string   `json:"confirm_password" validate:"required"`
	FullName        string   `json:"full_name" validate:"required,max=100"`
	BusinessName    string   `json:"business_name" validate:"max=100"`
	SkillsServices  []string `json:"skills_services" validate:"omitempty,dive,required,max=100"`
	Location        string   `json:"location" validate:"max=100"`
	Category        string   `json:"category" validate:"max=50"`
}

// Normalize trims free-text fields in place.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.BusinessName = strings.TrimSpace(r.BusinessName)
	r.Location = strings.TrimSpace(r.Location)
	r.Category = strings.TrimSpace(r.Category)
	for i, s := range r.SkillsServices {
		r.SkillsServices[i] = strings.TrimSpace(s)
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ClientInfo is request metadata stored with a new session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
