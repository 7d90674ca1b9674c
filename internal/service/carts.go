package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/store"
)

const cartIDAttempts = 5

type CartService struct {
	store   store.Store
	pricing *PricingService
}

func NewCartService(st store.Store, pricing *PricingService) *CartService {
	return &CartService{store: st, pricing: pricing}
}

// Create opens an empty-or-filled cart for the owner. Lines are validated
// and priced against the current menu so the stored total is never stale at
// rest; it is still recomputed at checkout.
func (s *CartService) Create(ctx context.Context, email string, lines []model.LineRequest) (*model.Cart, error) {
	_, total, err := s.pricing.Resolve(ctx, lines)
	if err != nil {
		return nil, err
	}

	cart := model.Cart{
		Email:     email,
		Items:     lines,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}

	// Short numeric ids collide occasionally; retry with a fresh id.
	for i := 0; i < cartIDAttempts; i++ {
		cart.ID, err = newCartID()
		if err != nil {
			return nil, err
		}
		err = s.store.Create(ctx, store.CollectionCarts, cart.ID, cart)
		if err == nil {
			return &cart, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("create cart: %w", err)
		}
	}
	return nil, fmt.Errorf("create cart: %w", err)
}

func (s *CartService) Get(ctx context.Context, id string) (*model.Cart, error) {
	var cart model.Cart
	if err := s.store.Read(ctx, store.CollectionCarts, id, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Update replaces the cart's lines and reprices them.
func (s *CartService) Update(ctx context.Context, id string, lines []model.LineRequest) (*model.Cart, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	_, total, err := s.pricing.Resolve(ctx, lines)
	if err != nil {
		return nil, err
	}

	cart.Items = lines
	cart.Total = total
	if err := s.store.Update(ctx, store.CollectionCarts, id, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetProceed persists the checkout flag. A cart left with proceed=true and
// no matching history entry is the visible trace of a checkout that never
// completed.
func (s *CartService) SetProceed(ctx context.Context, id string, proceed bool) (*model.Cart, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cart.Proceed = proceed
	if err := s.store.Update(ctx, store.CollectionCarts, id, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.CollectionCarts, id)
}

func newCartID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", fmt.Errorf("generate cart id: %w", err)
	}
	return fmt.Sprintf("%05d", n.Int64()), nil
}
