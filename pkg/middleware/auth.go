package middleware

import (
	"net/http"
	"strings"

	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/pkg/utils"

	"go.uber.org/zap"
)

// AuthSession validates the bearer token and the session it names, then
// attaches the principal to the request context.
func AuthSession(secret string, sessionRepo repository.SessionRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			p, err := utils.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				logger.Warn("Rejected bearer token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			// a signed token is only good while its session is neither revoked nor expired
			session, err := sessionRepo.FindValidSession(r.Context(), p.SessionID)
			if err != nil {
				logger.Error("Failed to validate session",
					zap.String("session_id", p.SessionID.String()),
					zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if session == nil || session.UserID != p.UserID {
				logger.Warn("Invalid or expired session", zap.String("session_id", p.SessionID.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole lets through principals holding one of roles. Must run after AuthSession.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := utils.GetPrincipal(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Role check failed",
				zap.String("user_id", p.UserID.String()),
				zap.String("role", p.Role),
				zap.String("path", r.URL.Path))
			utils.ResponseForbidden(w, "This action requires role: "+strings.Join(roles, " or "))
		})
	}
}
