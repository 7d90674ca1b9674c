package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/store"
)

// PricingService resolves cart lines against the current menu. It is pure
// with respect to the store contents and safe to call repeatedly.
type PricingService struct {
	store store.Store
}

func NewPricingService(st store.Store) *PricingService {
	return &PricingService{store: st}
}

// Resolve looks up every line's menu item and computes the line totals and
// the cart total. Totals are rounded per line before summation (round-then-
// sum), matching the legacy receipt math. Any unresolvable item fails the
// whole resolution; there are no partial orders.
func (s *PricingService) Resolve(ctx context.Context, lines []model.LineRequest) ([]model.ResolvedLine, decimal.Decimal, error) {
	resolved := make([]model.ResolvedLine, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: quantity %d for item %q", ErrValidation, line.Quantity, line.ItemID)
		}

		var item model.MenuItem
		if err := s.store.Read(ctx, store.CollectionMenuItems, line.ItemID, &item); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownItem, line.ItemID)
			}
			return nil, decimal.Zero, fmt.Errorf("read menu item %s: %w", line.ItemID, err)
		}

		unit := item.Price.Round(2)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)

		resolved = append(resolved, model.ResolvedLine{
			ItemID:    item.ID,
			Name:      item.Name,
			Type:      item.Type,
			Price:     unit,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	return resolved, total, nil
}
