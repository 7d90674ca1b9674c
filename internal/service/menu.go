package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/store"
)

type MenuService struct {
	store store.Store
}

func NewMenuService(st store.Store) *MenuService {
	return &MenuService{store: st}
}

func (s *MenuService) Get(ctx context.Context, id string) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := s.store.Read(ctx, store.CollectionMenuItems, id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MenuService) List(ctx context.Context) ([]model.MenuItem, error) {
	keys, err := s.store.List(ctx, store.CollectionMenuItems)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}

	items := make([]model.MenuItem, 0, len(keys))
	for _, key := range keys {
		var item model.MenuItem
		if err := s.store.Read(ctx, store.CollectionMenuItems, key, &item); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // deleted between list and read
			}
			return nil, fmt.Errorf("read menu item %s: %w", key, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *MenuService) Create(ctx context.Context, item model.MenuItem) error {
	if item.ID == "" || item.Name == "" || !item.Price.IsPositive() {
		return ErrValidation
	}
	return s.store.Create(ctx, store.CollectionMenuItems, item.ID, item)
}

func (s *MenuService) Update(ctx context.Context, item model.MenuItem) error {
	if item.ID == "" || item.Name == "" || !item.Price.IsPositive() {
		return ErrValidation
	}
	return s.store.Update(ctx, store.CollectionMenuItems, item.ID, item)
}

func (s *MenuService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.CollectionMenuItems, id)
}

// Seed populates the default menu when the collection is empty, so a fresh
// deployment is immediately orderable.
func (s *MenuService) Seed(ctx context.Context) error {
	keys, err := s.store.List(ctx, store.CollectionMenuItems)
	if err != nil {
		return fmt.Errorf("list menu: %w", err)
	}
	if len(keys) > 0 {
		return nil
	}

	defaults := []model.MenuItem{
		{ID: "pizza_margherita", Name: "Margherita", Type: "pizza", Price: decimal.RequireFromString("9.50")},
		{ID: "pizza_pepperoni", Name: "Pepperoni", Type: "pizza", Price: decimal.RequireFromString("11.00")},
		{ID: "pizza_quattro", Name: "Quattro Formaggi", Type: "pizza", Price: decimal.RequireFromString("12.25")},
		{ID: "pizza_veggie", Name: "Veggie", Type: "pizza", Price: decimal.RequireFromString("10.75")},
		{ID: "dessert_tiramisu", Name: "Tiramisu", Type: "dessert", Price: decimal.RequireFromString("6.00")},
		{ID: "drink_cola", Name: "Cola", Type: "drink", Price: decimal.RequireFromString("2.50")},
	}
	for _, item := range defaults {
		if err := s.store.Create(ctx, store.CollectionMenuItems, item.ID, item); err != nil {
			return fmt.Errorf("seed %s: %w", item.ID, err)
		}
	}

	slog.Info("seeded default menu", "items", len(defaults))
	return nil
}
