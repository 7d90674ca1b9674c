package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/geomm/pizza-delivery/internal/model"
)

type contextKey string

const (
	EmailCtxKey   contextKey = "email"
	AdminCtxKey   contextKey = "admin"
	TokenIDCtxKey contextKey = "token_id"
)

// TokenReader looks up an issued token record by id. Auth only passes when
// the record still exists, so logout revokes access even for JWTs that have
// not yet expired.
type TokenReader interface {
	Get(ctx context.Context, id string) (*model.Token, error)
}

func AuthMiddleware(jwtSecret string, tokens TokenReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid claims", http.StatusInternalServerError)
				return
			}

			tokenID, ok := claims["jti"].(string)
			if !ok {
				http.Error(w, "token id not found in claims", http.StatusUnauthorized)
				return
			}

			rec, err := tokens.Get(r.Context(), tokenID)
			if err != nil || rec.Expired(time.Now().UTC()) {
				http.Error(w, "token revoked or expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), EmailCtxKey, rec.Email)
			ctx = context.WithValue(ctx, AdminCtxKey, rec.Admin)
			ctx = context.WithValue(ctx, TokenIDCtxKey, rec.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
