// internal/wire/wire.go
package wire

import (
	"context"
	"net/http"
	"time"

	"artisan-marketplace/internal/adaptor"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/internal/usecase"
	"artisan-marketplace/pkg/database"
	"artisan-marketplace/pkg/middleware"
	"artisan-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes from the shared dependencies
func Wiring(
	db database.PgxIface,
	repo *repository.Repository,
	config *utils.Config,
	deps usecase.Deps,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(db, handler, repo, config, deps, logger),
		Service: service,
	}
}

func setupRouter(
	db database.PgxIface,
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	deps usecase.Deps,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	wireAuth(r, handler.Auth, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wireArtisan(r, handler.Artisan, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)
	wireReview(r, handler.Review, repo, config, logger)

	r.Get("/health", healthHandler(db))

	return r
}

// healthHandler reports liveness and whether the database answers a ping
func healthHandler(db database.PgxIface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db == nil {
			utils.ResponseSuccess(w, "OK", map[string]string{"database": "unknown"})
			return
		}
		if err := db.Ping(ctx); err != nil {
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "database unreachable", nil, nil)
			return
		}
		utils.ResponseSuccess(w, "OK", map[string]string{"database": "up"})
	}
}
