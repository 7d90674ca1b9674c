package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResolvedLine is a cart line after lookup against the current menu. The line
// total is always recomputed from the live menu price, never carried over
// from the cart.
type ResolvedLine struct {
	ItemID    string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is the immutable checkout snapshot of a cart. It shares the cart's
// id, so the store's create acts as the per-order mutual exclusion point,
// and it stays in the store until the fulfillment pipeline commits.
type Order struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Lines     []ResolvedLine  `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	TokenID   string          `json:"token_id"`
	CreatedAt time.Time       `json:"created_at"`
}
