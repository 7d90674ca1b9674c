package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest references a menu item by id. Price and name are looked up at
// checkout time; nothing sent by the client is trusted for pricing.
type LineRequest struct {
	ItemID   string `json:"id"`
	Quantity int    `json:"quantity"`
}

type Cart struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Items     []LineRequest   `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Proceed   bool            `json:"proceed"`
	CreatedAt time.Time       `json:"created_at"`
}
