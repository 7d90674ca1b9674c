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

type cartRequest struct {
	ID      string              `json:"id"`
	Items   []model.LineRequest `json:"items"`
	Proceed bool                `json:"proceed"`
}

func CreateCartHandler(carts *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		email, ok := r.Context().Value(mw.EmailCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		cart, err := carts.Create(r.Context(), email, req.Items)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnknownItem):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				slog.Error("cart create failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, http.StatusOK, cart)
	}
}

func GetCartHandler(carts *service.CartService, verifier service.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		cart, err := carts.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "cart not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		tokenID, ok := r.Context().Value(mw.TokenIDCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !verifier.Verify(r.Context(), tokenID, cart.Email) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		respondJSON(w, http.StatusOK, cart)
	}
}

// UpdateCartHandler replaces the cart's lines; a request that also sets
// proceed=true hands the cart to the fulfillment pipeline and answers 202
// without waiting for the pipeline to finish.
func UpdateCartHandler(carts *service.CartService, checkout *service.CheckoutService, verifier service.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		cart, err := carts.Get(r.Context(), req.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "cart not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		tokenID, ok := r.Context().Value(mw.TokenIDCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !verifier.Verify(r.Context(), tokenID, cart.Email) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if req.Items != nil {
			cart, err = carts.Update(r.Context(), req.ID, req.Items)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnknownItem):
					http.Error(w, err.Error(), http.StatusBadRequest)
				case errors.Is(err, store.ErrNotFound):
					http.Error(w, "cart not found", http.StatusNotFound)
				default:
					slog.Error("cart update failed", "error", err)
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
				return
			}
		}

		if !req.Proceed {
			respondJSON(w, http.StatusOK, cart)
			return
		}

		if cart, err = carts.SetProceed(r.Context(), cart.ID, true); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := checkout.Begin(r.Context(), cart.ID, tokenID); err != nil {
			switch {
			case errors.Is(err, service.ErrUnauthorized):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, service.ErrOrderInFlight):
				http.Error(w, "order already in flight", http.StatusConflict)
			case errors.Is(err, service.ErrEmptyCart),
				errors.Is(err, service.ErrValidation),
				errors.Is(err, service.ErrUnknownItem):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, store.ErrNotFound):
				http.Error(w, "cart not found", http.StatusNotFound)
			default:
				slog.Error("checkout begin failed", "cart", cart.ID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, http.StatusAccepted, map[string]string{"order": cart.ID, "status": "accepted"})
	}
}

func DeleteCartHandler(carts *service.CartService, verifier service.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		cart, err := carts.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "cart not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		tokenID, ok := r.Context().Value(mw.TokenIDCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !verifier.Verify(r.Context(), tokenID, cart.Email) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := carts.Delete(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "cart not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
