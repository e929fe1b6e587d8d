package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository/memrepo"
	"artisan-marketplace/pkg/metrics"
	"artisan-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "middleware-secret"

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// echoPrincipal answers with the principal found in the request context.
var echoPrincipal = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, ok := utils.GetPrincipal(r.Context())
	if !ok {
		utils.ResponseInternalError(w, "no principal")
		return
	}
	utils.ResponseSuccess(w, "ok", p.UserID.String())
})

func newSession(t *testing.T, store *memrepo.Store, userID uuid.UUID, expires time.Time) uuid.UUID {
	t.Helper()
	sess := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:     userID,
		ExpiresAt:  expires,
	}
	require.NoError(t, store.Repository().Session.Create(t.Context(), sess))
	return sess.ID
}

func TestAuthSession(t *testing.T) {
	store := memrepo.New()
	repo := store.Repository()
	handler := AuthSession(testSecret, repo.Session, zap.NewNop())(echoPrincipal)

	userID := uuid.New()
	sessionID := newSession(t, store, userID, time.Now().Add(time.Hour))
	token, err := utils.IssueToken(testSecret, userID, sessionID, "client", time.Now().Add(time.Hour))
	require.NoError(t, err)

	revokedID := newSession(t, store, userID, time.Now().Add(time.Hour))
	require.NoError(t, repo.Session.Revoke(t.Context(), revokedID))
	revokedToken, err := utils.IssueToken(testSecret, userID, revokedID, "client", time.Now().Add(time.Hour))
	require.NoError(t, err)

	// signed for a session that belongs to a different user
	foreignToken, err := utils.IssueToken(testSecret, uuid.New(), sessionID, "client", time.Now().Add(time.Hour))
	require.NoError(t, err)

	unknownToken, err := utils.IssueToken(testSecret, userID, uuid.New(), "client", time.Now().Add(time.Hour))
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"no scheme", token, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized},
		{"revoked session", "Bearer " + revokedToken, http.StatusUnauthorized},
		{"foreign session", "Bearer " + foreignToken, http.StatusUnauthorized},
		{"unknown session", "Bearer " + unknownToken, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.Equal(t, tc.status == http.StatusOK, resp.Status)
			if tc.status == http.StatusOK {
				assert.Equal(t, userID.String(), resp.Data)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(zap.NewNop(), "artisan")(echoPrincipal)

	serve := func(p *utils.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/artisans/bookings", nil)
		if p != nil {
			req = req.WithContext(utils.SetPrincipal(req.Context(), *p))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(&utils.Principal{UserID: uuid.New(), Role: "client"}).Code)
	assert.Equal(t, http.StatusOK, serve(&utils.Principal{UserID: uuid.New(), Role: "artisan"}).Code)
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/artisans/list", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Status)
	assert.Equal(t, 1, logs.FilterMessage("PANIC recovered").Len())
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.EqualValues(t, 200, ok["status"])
	assert.EqualValues(t, 5, ok["bytes"])
	assert.Equal(t, "x=1", ok["query"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, 502, entries[1].ContextMap()["status"])
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New("mw")
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/artisans/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/artisans/"+id, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `mw_http_requests_total{method="GET",route="/api/artisans/{id}",status="404"} 3`)
}
