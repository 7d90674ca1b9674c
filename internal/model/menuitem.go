package model

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  string          `json:"type"` // pizza, dessert, drink
	Price decimal.Decimal `json:"price"`
}
