package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"maskan/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedHandler() (http.Handler, *HTTPAuth) {
	auth := NewHTTPAuth(testAPIConfig())
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, auth
}

func doRequest(t *testing.T, handler http.Handler, apiKey, userID, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthMissingKey(t *testing.T) {
	handler, _ := authedHandler()
	rec := doRequest(t, handler, "", "", "/api/v1/bookings")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidKey(t *testing.T) {
	handler, _ := authedHandler()
	rec := doRequest(t, handler, "nope", "", "/api/v1/bookings")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidKey(t *testing.T) {
	handler, _ := authedHandler()
	rec := doRequest(t, handler, testAPIKey, "1", "/api/v1/bookings")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthPermissionDenied(t *testing.T) {
	handler, _ := authedHandler()

	// Ключ с правами только на чтение
	rec := doRequest(t, handler, readOnlyKey, "1", "/api/v1/availability?apartment_id=1")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("x-api-key", readOnlyKey)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/wallet/deposit", nil)
	req.Header.Set("x-api-key", readOnlyKey)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	cfg := testAPIConfig()
	cfg.Auth.Enabled = false
	auth := NewHTTPAuth(cfg)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(t, handler, "", "", "/api/v1/bookings")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitPerKey(t *testing.T) {
	cfg := testAPIConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}
	auth := NewHTTPAuth(cfg)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var limited bool
	for i := 0; i < 5; i++ {
		rec := doRequest(t, handler, testAPIKey, "1", "/api/v1/bookings")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	require.True(t, limited, "burst exhaustion must return 429")

	// Другой ключ имеет собственное окно
	rec := doRequest(t, handler, readOnlyKey, "1", "/api/v1/bookings")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActorIDParsing(t *testing.T) {
	auth := NewHTTPAuth(testAPIConfig())

	cases := map[string]int64{
		"42":  42,
		"":    0,
		"abc": 0,
		"-5":  0,
	}
	for raw, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		if raw != "" {
			req.Header.Set("x-user-id", raw)
		}
		assert.Equal(t, want, auth.actorID(req), "raw=%q", raw)
	}
}
