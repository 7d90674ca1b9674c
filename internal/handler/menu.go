package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/mw"
	"github.com/geomm/pizza-delivery/internal/service"
	"github.com/geomm/pizza-delivery/internal/store"
)

func ListMenuHandler(menu *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := menu.List(r.Context())
		if err != nil {
			slog.Error("menu list failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, items)
	}
}

func CreateMenuItemHandler(menu *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var item model.MenuItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := menu.Create(r.Context(), item); err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				http.Error(w, "missing or invalid fields", http.StatusBadRequest)
			case errors.Is(err, store.ErrAlreadyExists):
				http.Error(w, "menu item already exists", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, http.StatusOK, item)
	}
}

func UpdateMenuItemHandler(menu *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var item model.MenuItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := menu.Update(r.Context(), item); err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				http.Error(w, "missing or invalid fields", http.StatusBadRequest)
			case errors.Is(err, store.ErrNotFound):
				http.Error(w, "menu item not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, http.StatusOK, item)
	}
}

func DeleteMenuItemHandler(menu *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		if err := menu.Delete(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "menu item not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func isAdmin(r *http.Request) bool {
	admin, _ := r.Context().Value(mw.AdminCtxKey).(bool)
	return admin
}
