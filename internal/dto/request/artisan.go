package request

import (
	"net/url"
	"strings"

	"artisan-marketplace/internal/data/entity"
)

// ArtisanFilterFromQuery reads the listing filters. Absent or empty parameters do not filter,
// except is_available, which filters whenever it is present.
func ArtisanFilterFromQuery(q url.Values) entity.ArtisanFilter {
	var f entity.ArtisanFilter

	if v := strings.TrimSpace(q.Get("category")); v != "" {
		f.Category = &v
	}
	if q.Has("is_available") {
		// anything other than "true" selects unavailable artisans
		available := strings.EqualFold(q.Get("is_available"), "true")
		f.IsAvailable = &available
	}
	f.TopRated = strings.EqualFold(q.Get("top_artisans"), "true")
	if v := strings.TrimSpace(q.Get("search")); v != "" {
		f.Search = &v
	}
	if v := strings.TrimSpace(q.Get("skill")); v != "" {
		f.Skill = &v
	}
	if v := strings.ToLower(q.Get("booked_artisans")); v == "true" || v == "false" {
		booked := v == "true"
		f.Booked = &booked
	}

	return f
}
