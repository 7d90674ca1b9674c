package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geomm/pizza-delivery/internal/mw"
	"github.com/geomm/pizza-delivery/internal/service"
	"github.com/geomm/pizza-delivery/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func LoginHandler(users *service.UserService, tokens *service.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		user, err := users.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				http.Error(w, "invalid email or password", http.StatusUnauthorized)
				return
			}
			slog.Error("login failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		signed, tok, err := tokens.Issue(r.Context(), user)
		if err != nil {
			slog.Error("token issue failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Authorization", "Bearer "+signed)
		respondJSON(w, http.StatusOK, map[string]any{
			"token":   signed,
			"id":      tok.ID,
			"expires": tok.Expires,
		})
	}
}

func GetTokenHandler(tokens *service.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		if !callerOwnsToken(r, id) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		tok, err := tokens.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "token not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, tok)
	}
}

func ExtendTokenHandler(tokens *service.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string `json:"id"`
			Extend bool   `json:"extend"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || !req.Extend {
			http.Error(w, "id and extend=true required", http.StatusBadRequest)
			return
		}

		if !callerOwnsToken(r, req.ID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		signed, tok, err := tokens.Extend(r.Context(), req.ID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				http.Error(w, "token not found", http.StatusNotFound)
			case errors.Is(err, service.ErrTokenExpired):
				http.Error(w, "token already expired", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Authorization", "Bearer "+signed)
		respondJSON(w, http.StatusOK, map[string]any{
			"token":   signed,
			"id":      tok.ID,
			"expires": tok.Expires,
		})
	}
}

func LogoutHandler(tokens *service.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		if !callerOwnsToken(r, id) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := tokens.Revoke(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "token not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func callerOwnsToken(r *http.Request, id string) bool {
	if admin, _ := r.Context().Value(mw.AdminCtxKey).(bool); admin {
		return true
	}
	callerToken, _ := r.Context().Value(mw.TokenIDCtxKey).(string)
	return callerToken == id
}
