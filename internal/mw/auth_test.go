package mw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/service"
	"github.com/geomm/pizza-delivery/internal/store"
)

const testSecret = "secret"

func signTestJWT(t *testing.T, tok model.Token, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"jti":   tok.ID,
		"email": tok.Email,
		"admin": tok.Admin,
		"exp":   jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewarePassesClaimsToHandler(t *testing.T) {
	st := store.NewMemory()
	tokens := service.NewTokenService(st, testSecret)
	signed, tok, err := tokens.Issue(context.Background(), &model.User{Email: "a@b.com"})
	require.NoError(t, err)

	var gotEmail, gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail, _ = r.Context().Value(EmailCtxKey).(string)
		gotID, _ = r.Context().Value(TokenIDCtxKey).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	AuthMiddleware(testSecret, tokens)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.com", gotEmail)
	assert.Equal(t, tok.ID, gotID)
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	st := store.NewMemory()
	tokens := service.NewTokenService(st, testSecret)
	signed, tok, err := tokens.Issue(context.Background(), &model.User{Email: "a@b.com"})
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(context.Background(), tok.ID))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("revoked credential reached handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	AuthMiddleware(testSecret, tokens)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// An extended token must yield a credential that outlives the original
// JWT: the stale JWT stays dead, the re-signed one from Extend gets in.
func TestExtendedCredentialOutlivesOriginalJWT(t *testing.T) {
	st := store.NewMemory()
	tokens := service.NewTokenService(st, testSecret)

	tok := model.Token{
		ID:      "tok-1",
		Email:   "a@b.com",
		Expires: time.Now().UTC().Add(time.Minute),
	}
	require.NoError(t, st.Create(context.Background(), store.CollectionTokens, tok.ID, tok))

	// The credential the client got an hour ago; its exp claim has lapsed.
	stale := signTestJWT(t, tok, time.Now().UTC().Add(-time.Minute))

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })
	protected := AuthMiddleware(testSecret, tokens)(next)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+stale)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, calls)

	fresh, extended, err := tokens.Extend(context.Background(), tok.ID)
	require.NoError(t, err)
	require.True(t, extended.Expires.After(tok.Expires))

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+fresh)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}
