package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/geomm/pizza-delivery/internal/model"
	"github.com/geomm/pizza-delivery/internal/store"
)

// CheckoutState is the fulfillment pipeline's position for one order.
type CheckoutState string

const (
	StateCreated          CheckoutState = "CREATED"
	StatePriced           CheckoutState = "PRICED"
	StateCharged          CheckoutState = "CHARGED"
	StateDispatched       CheckoutState = "DISPATCHED"
	StateAwaitingDelivery CheckoutState = "AWAITING_DELIVERY"
	StateCommitted        CheckoutState = "COMMITTED"

	StatePricingFailed    CheckoutState = "PRICING_FAILED"
	StatePaymentFailed    CheckoutState = "PAYMENT_FAILED"
	StateDispatchFailed   CheckoutState = "DISPATCH_FAILED"
	StateDeliveryFailed   CheckoutState = "DELIVERY_FAILED"
	StateDeliveryTimedOut CheckoutState = "DELIVERY_TIMED_OUT"
	StateCommitFailed     CheckoutState = "COMMIT_FAILED"
)

// Terminal reports whether the pipeline never leaves this state. Failure
// states are never re-entered or retried; recovery is an operator action or
// a fresh cart.
func (s CheckoutState) Terminal() bool {
	switch s {
	case StateCommitted, StatePricingFailed, StatePaymentFailed, StateDispatchFailed,
		StateDeliveryFailed, StateDeliveryTimedOut, StateCommitFailed:
		return true
	}
	return false
}

// DeliveryOutcome is the terminal classification of a dispatched message.
type DeliveryOutcome string

const (
	DeliveryDelivered DeliveryOutcome = "delivered"
	DeliveryFailed    DeliveryOutcome = "failed"
	DeliveryRejected  DeliveryOutcome = "rejected"
	DeliveryTimedOut  DeliveryOutcome = "timed_out"
	DeliveryCanceled  DeliveryOutcome = "canceled"
)

// Gateway charges the payer. Charging moves real money; the orchestrator
// never retries it.
type Gateway interface {
	Charge(ctx context.Context, email string, total decimal.Decimal) (*ChargeResult, error)
}

// Dispatcher submits the receipt message and returns the provider message id.
type Dispatcher interface {
	SendReceipt(ctx context.Context, order *model.Order) (string, error)
}

// Tracker blocks until the message reaches a terminal delivery outcome, the
// timeout budget runs out, or ctx is canceled.
type Tracker interface {
	Await(ctx context.Context, messageID string) DeliveryOutcome
}

// Verifier checks whether a credential grants access to an owner's resources.
type Verifier interface {
	Verify(ctx context.Context, tokenID, ownerEmail string) bool
}

// CheckoutService owns the fulfillment pipeline. Begin runs the synchronous
// stages (authorize, price, create the order record) and hands the rest to
// a background run; the order record doubles as the per-order lock, so a
// second Begin for the same cart sees ErrOrderInFlight.
type CheckoutService struct {
	store    store.Store
	pricing  *PricingService
	gateway  Gateway
	mail     Dispatcher
	tracker  Tracker
	verifier Verifier

	mu   sync.Mutex
	base context.Context
	runs sync.WaitGroup
}

func NewCheckoutService(st store.Store, pricing *PricingService, gateway Gateway, mail Dispatcher, tracker Tracker, verifier Verifier) *CheckoutService {
	return &CheckoutService{
		store:    st,
		pricing:  pricing,
		gateway:  gateway,
		mail:     mail,
		tracker:  tracker,
		verifier: verifier,
		base:     context.Background(),
	}
}

// Start binds background runs to ctx; canceling it stops in-flight delivery
// polling. Runs already begun keep the context they were handed.
func (s *CheckoutService) Start(ctx context.Context) {
	s.mu.Lock()
	s.base = ctx
	s.mu.Unlock()
}

func (s *CheckoutService) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

// Wait blocks until all background runs have finished.
func (s *CheckoutService) Wait() {
	s.runs.Wait()
}

// Begin starts fulfillment for a cart. Authorization completes before any
// irreversible action; pricing failures surface here, before a single
// external call is made. On success the caller gets an immediate accept
// while the charge/dispatch/track/commit stages continue in the background.
func (s *CheckoutService) Begin(ctx context.Context, cartID, tokenID string) error {
	log := slog.With("order", cartID)
	state := StateCreated

	var cart model.Cart
	if err := s.store.Read(ctx, store.CollectionCarts, cartID, &cart); err != nil {
		return fmt.Errorf("read cart: %w", err)
	}

	if !s.verifier.Verify(ctx, tokenID, cart.Email) {
		return ErrUnauthorized
	}
	if len(cart.Items) == 0 {
		return ErrEmptyCart
	}

	lines, total, err := s.pricing.Resolve(ctx, cart.Items)
	if err != nil {
		log.Warn("checkout aborted", "state", StatePricingFailed, "error", err)
		return err
	}
	state = s.transition(log, state, StatePriced)

	order := &model.Order{
		ID:        cart.ID,
		Email:     cart.Email,
		Lines:     lines,
		Total:     total,
		TokenID:   tokenID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, store.CollectionOrders, order.ID, order); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrOrderInFlight
		}
		return fmt.Errorf("create order: %w", err)
	}

	base := s.baseContext()
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		s.fulfill(base, log, state, order)
	}()

	return nil
}

// fulfill drives the pipeline from Priced to a terminal state. Failures
// after the charge leave the order record in the store as the durable trace
// for operator reconciliation; nothing here compensates automatically.
func (s *CheckoutService) fulfill(ctx context.Context, log *slog.Logger, state CheckoutState, order *model.Order) {
	charge, err := s.gateway.Charge(ctx, order.Email, order.Total)
	if err != nil {
		s.fail(log, StatePaymentFailed, err)
		return
	}
	state = s.transition(log, state, StateCharged)

	messageID, err := s.mail.SendReceipt(ctx, order)
	if err != nil {
		// Money has already moved. Not retried, not rolled back.
		s.fail(log, StateDispatchFailed, err)
		return
	}
	state = s.transition(log, state, StateDispatched)

	state = s.transition(log, state, StateAwaitingDelivery)
	outcome := s.tracker.Await(ctx, messageID)
	switch outcome {
	case DeliveryDelivered:
	case DeliveryTimedOut:
		s.fail(log, StateDeliveryTimedOut, fmt.Errorf("no terminal delivery event for message %s", messageID))
		return
	case DeliveryCanceled:
		log.Warn("checkout canceled while awaiting delivery", "message_id", messageID)
		return
	default:
		s.fail(log, StateDeliveryFailed, fmt.Errorf("message %s: %s", messageID, outcome))
		return
	}

	if err := s.commit(ctx, order, charge.ID, messageID); err != nil {
		s.fail(log, StateCommitFailed, err)
		return
	}
	s.transition(log, state, StateCommitted)
	log.Info("order fulfilled", "charge_id", charge.ID, "message_id", messageID, "total", order.Total)
}

// commit runs the final persistence strictly in order: history append, cart
// delete, order delete. A failing sub-step stops the sequence and leaves
// whatever records remain; there is no partial rollback.
func (s *CheckoutService) commit(ctx context.Context, order *model.Order, chargeID, messageID string) error {
	var user model.User
	if err := s.store.Read(ctx, store.CollectionUsers, order.Email, &user); err != nil {
		return fmt.Errorf("read user: %w", err)
	}

	// At most one history entry per completed order, even if commit is
	// attempted again after a partial failure.
	recorded := false
	for _, entry := range user.Orders {
		if entry.ChargeID == chargeID && entry.MessageID == messageID {
			recorded = true
			break
		}
	}
	if !recorded {
		user.Orders = append(user.Orders, model.HistoryEntry{ChargeID: chargeID, MessageID: messageID})
		if err := s.store.Update(ctx, store.CollectionUsers, order.Email, user); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}

	if err := s.store.Delete(ctx, store.CollectionCarts, order.ID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.store.Delete(ctx, store.CollectionOrders, order.ID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	return nil
}

func (s *CheckoutService) transition(log *slog.Logger, from, to CheckoutState) CheckoutState {
	log.Info("checkout state", "from", from, "to", to)
	return to
}

func (s *CheckoutService) fail(log *slog.Logger, state CheckoutState, err error) {
	log.Error("checkout failed", "state", state, "error", err)
}
