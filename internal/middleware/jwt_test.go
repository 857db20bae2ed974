package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"commons-hub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, models.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = ValidateToken(token + "tampered")
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	var gotID uuid.UUID
	var gotRole models.Role
	var called bool

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, gotRole, _ = CallerFromContext(r.Context())
	})
	handler := AuthMiddleware(next)

	// Unprotected route passes through untouched.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)

	// Protected route without a token is rejected.
	called = false
	req = httptest.NewRequest(http.MethodGet, "/messages", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// A valid bearer token puts the caller in the request context.
	token, err := GenerateToken(userID, models.RoleResident)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, models.RoleResident, gotRole)
}
