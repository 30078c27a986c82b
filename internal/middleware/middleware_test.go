package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/auth"
	"fleet-backend/internal/config"
	"fleet-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userMap map[int]*models.User

func (m userMap) Get(_ context.Context, id int) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user", id)
}

func newAuth(t *testing.T) (*AuthMiddleware, *auth.JWTManager) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test"
	cfg.JWT.ExpirationHours = 1
	jwt := auth.NewJWTManager(cfg)
	users := userMap{
		1: {ID: 1, Email: "staff@example.com", Role: models.RoleStaff, IsActive: true},
		2: {ID: 2, Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true},
		3: {ID: 3, Email: "gone@example.com", Role: models.RoleAdmin, IsActive: false},
		4: {ID: 4, Email: "root@example.com", Role: models.RoleSuperAdmin, IsActive: true},
	}
	return NewAuthMiddleware(jwt, users), jwt
}

func bearer(t *testing.T, jwt *auth.JWTManager, id int) string {
	t.Helper()
	token, err := jwt.GenerateToken(&models.User{ID: id})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate(t *testing.T) {
	m, jwt := newAuth(t)
	var seen int
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad scheme", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"unknown user", bearer(t, jwt, 99), http.StatusUnauthorized},
		{"suspended user", bearer(t, jwt, 3), http.StatusForbidden},
		{"active user", bearer(t, jwt, 1), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, 1, seen)
}

func TestRequireRole(t *testing.T) {
	m, jwt := newAuth(t)
	h := m.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for id, want := range map[int]int{1: http.StatusForbidden, 2: http.StatusOK, 4: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", bearer(t, jwt, id))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "user %d", id)
	}
}

func TestPanicRecovery(t *testing.T) {
	h := RequestLogging(PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/loads", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestLoggingKeepsClientID(t *testing.T) {
	var got string
	h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/loads", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:5555"
	assert.Equal(t, "10.0.0.5", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	assert.Equal(t, "1.2.3.4", ClientIP(req))
}
