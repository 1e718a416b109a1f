package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/auth"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := auth.NewIssuer("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("u1")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestIssuer_Verify_Rejects(t *testing.T) {
	issuer, err := auth.NewIssuer("s3cret", time.Hour)
	require.NoError(t, err)

	other, err := auth.NewIssuer("different", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("u1")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Garbage", token: "not-a-token"},
		{name: "WrongSecret", token: foreign},
		{name: "Expired", token: expired},
		{name: "NoExpiry", token: noExpiry},
		{name: "NoSubject", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrUnauthorized)
		})
	}
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := auth.NewIssuer("", time.Hour)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	issuer, err := auth.NewIssuer("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("u42")
	require.NoError(t, err)

	handler := auth.Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(userID))
	}))

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
	}{
		{
			name:     "BearerHeader",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantCode: http.StatusOK,
		},
		{
			name: "QueryParameter",
			prepare: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("token", token)
				r.URL.RawQuery = q.Encode()
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "Cookie",
			prepare:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token}) },
			wantCode: http.StatusOK,
		},
		{
			name:     "Missing",
			prepare:  func(*http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "WrongScheme",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) },
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "Invalid",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tabs", nil)
			tt.prepare(req)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "u42", rec.Body.String())
			}
		})
	}
}
