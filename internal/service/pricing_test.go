package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/store"
)

func seedMenu(t *testing.T, st store.Store, items ...model.MenuItem) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, st.Create(context.Background(), store.CollectionMenuItems, item.ID, item))
	}
}

func TestResolveComputesLineAndCartTotals(t *testing.T) {
	st := store.NewMemory()
	seedMenu(t, st,
		model.MenuItem{ID: "pizza_margherita", Name: "Margherita", Type: "pizza", Price: decimal.RequireFromString("9.50")},
		model.MenuItem{ID: "drink_cola", Name: "Cola", Type: "drink", Price: decimal.RequireFromString("2.50")},
	)
	pricing := NewPricingService(st)

	lines, total, err := pricing.Resolve(context.Background(), []model.LineRequest{
		{ItemID: "pizza_margherita", Quantity: 2},
		{ItemID: "drink_cola", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Margherita", lines[0].Name)
	assert.True(t, lines[0].LineTotal.Equal(decimal.RequireFromString("19.00")), "got %s", lines[0].LineTotal)
	assert.True(t, lines[1].LineTotal.Equal(decimal.RequireFromString("7.50")), "got %s", lines[1].LineTotal)
	assert.True(t, total.Equal(decimal.RequireFromString("26.50")), "got %s", total)
}

func TestResolveRoundsPerLineBeforeSumming(t *testing.T) {
	st := store.NewMemory()
	seedMenu(t, st,
		model.MenuItem{ID: "odd_a", Name: "A", Type: "pizza", Price: decimal.RequireFromString("3.333")},
		model.MenuItem{ID: "odd_b", Name: "B", Type: "pizza", Price: decimal.RequireFromString("2.499")},
	)
	pricing := NewPricingService(st)

	lines, total, err := pricing.Resolve(context.Background(), []model.LineRequest{
		{ItemID: "odd_a", Quantity: 3}, // 3.33 * 3 = 9.99
		{ItemID: "odd_b", Quantity: 2}, // 2.50 * 2 = 5.00
	})
	require.NoError(t, err)

	assert.True(t, lines[0].Price.Equal(decimal.RequireFromString("3.33")))
	assert.True(t, lines[0].LineTotal.Equal(decimal.RequireFromString("9.99")), "got %s", lines[0].LineTotal)
	assert.True(t, lines[1].LineTotal.Equal(decimal.RequireFromString("5.00")), "got %s", lines[1].LineTotal)
	assert.True(t, total.Equal(decimal.RequireFromString("14.99")), "got %s", total)
}

func TestResolveUnknownItemFailsWhole(t *testing.T) {
	st := store.NewMemory()
	seedMenu(t, st,
		model.MenuItem{ID: "pizza_margherita", Name: "Margherita", Type: "pizza", Price: decimal.RequireFromString("9.50")},
	)
	pricing := NewPricingService(st)

	lines, _, err := pricing.Resolve(context.Background(), []model.LineRequest{
		{ItemID: "pizza_margherita", Quantity: 1},
		{ItemID: "pizza_hawaii", Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrUnknownItem)
	assert.Contains(t, err.Error(), "pizza_hawaii")
	assert.Nil(t, lines)
}

func TestResolveRejectsNonPositiveQuantity(t *testing.T) {
	st := store.NewMemory()
	seedMenu(t, st,
		model.MenuItem{ID: "pizza_margherita", Name: "Margherita", Type: "pizza", Price: decimal.RequireFromString("9.50")},
	)
	pricing := NewPricingService(st)

	_, _, err := pricing.Resolve(context.Background(), []model.LineRequest{
		{ItemID: "pizza_margherita", Quantity: 0},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveEmptyCartIsZero(t *testing.T) {
	pricing := NewPricingService(store.NewMemory())

	lines, total, err := pricing.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.True(t, total.IsZero())
}
