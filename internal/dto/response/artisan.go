package response

import "artisan-marketplace/internal/data/entity"

type SkillResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ArtisanResponse struct {
	ID          string          `json:"id"`
	UserID      *string         `json:"user_id,omitempty"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Location    string          `json:"location"`
	Rating      float64         `json:"rating"`
	IsAvailable bool            `json:"is_available"`
	Skills      []SkillResponse `json:"skills"`
}

func SkillToResponse(s entity.Skill) SkillResponse {
	return SkillResponse{ID: s.ID, Name: s.Name, Category: s.Category}
}

func ArtisanToResponse(a *entity.Artisan) ArtisanResponse {
	resp := ArtisanResponse{
		ID:          a.ID.String(),
		Name:        a.Name,
		Category:    a.Category,
		Location:    a.Location,
		Rating:      a.Rating,
		IsAvailable: a.IsAvailable,
		Skills:      make([]SkillResponse, 0, len(a.Skills)),
	}
	if a.UserID != nil {
		id := a.UserID.String()
		resp.UserID = &id
	}
	for _, s := range a.Skills {
		resp.Skills = append(resp.Skills, SkillToResponse(s))
	}
	return resp
}
