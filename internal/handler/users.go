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

func CreateUserHandler(users *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p service.UserParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		user, err := users.Register(r.Context(), p)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				http.Error(w, "missing or invalid fields", http.StatusBadRequest)
			case errors.Is(err, service.ErrUserExists):
				http.Error(w, "user already exists", http.StatusConflict)
			default:
				slog.Error("user create failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, http.StatusOK, user.Sanitized())
	}
}

func GetUserHandler(users *service.UserService, verifier service.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			http.Error(w, "missing email", http.StatusBadRequest)
			return
		}

		tokenID, ok := r.Context().Value(mw.TokenIDCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !verifier.Verify(r.Context(), tokenID, email) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		user, err := users.Get(r.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, user.Sanitized())
	}
}

func UpdateUserHandler(users *service.UserService, verifier service.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p service.UserParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if p.Email == "" {
			http.Error(w, "missing email", http.StatusBadRequest)
			return
		}

		tokenID, ok := r.Context().Value(mw.TokenIDCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !verifier.Verify(r.Context(), tokenID, p.Email) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		user, err := users.Update(r.Context(), p.Email, p)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				http.Error(w, "nothing to update", http.StatusBadRequest)
			case errors.Is(err, store.ErrNotFound):
				http.Error(w, "user not found", http.StatusNotFound)
			default:
				slog.Error("user update failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, http.StatusOK, user.Sanitized())
	}
}

func DeleteUserHandler(users *service.UserService, verifier service.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			http.Error(w, "missing email", http.StatusBadRequest)
			return
		}

		tokenID, ok := r.Context().Value(mw.TokenIDCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !verifier.Verify(r.Context(), tokenID, email) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := users.Delete(r.Context(), email); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
