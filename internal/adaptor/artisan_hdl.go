package adaptor

import (
	"net/http"

	"artisan-marketplace/internal/dto/request"
	"artisan-marketplace/internal/usecase"
	"artisan-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ArtisanHandler struct {
	service usecase.ArtisanService
	log     *zap.Logger
}

func NewArtisanHandler(service usecase.ArtisanService, log *zap.Logger) *ArtisanHandler {
	return &ArtisanHandler{
		service: service,
		log:     log.With(zap.String("handler", "artisan")),
	}
}

// List handles GET /api/artisans/list and GET /api/clients/list-artisans
func (h *ArtisanHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := request.ArtisanFilterFromQuery(r.URL.Query())

	artisans, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, h.log, err, "list artisans")
		return
	}

	utils.ResponseSuccess(w, "success", artisans)
}

// Get handles GET /api/artisans/{id}
func (h *ArtisanHandler) Get(w http.ResponseWriter, r *http.Request) {
	artisan, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get artisan")
		return
	}

	utils.ResponseSuccess(w, "success", artisan)
}

// ListSkills handles GET /api/artisans/skills
func (h *ArtisanHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.service.ListSkills(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list skills")
		return
	}

	utils.ResponseSuccess(w, "success", skills)
}
