package checkout

import (
	"context"
	"fmt"

	"github.com/brightgoods/storefront-backend/internal/bus"
	"github.com/brightgoods/storefront-backend/internal/cart"
	"github.com/brightgoods/storefront-backend/internal/orders"
	"github.com/brightgoods/storefront-backend/internal/remote"
	"github.com/brightgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"github.com/brightgoods/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Input carries the customer details collected by the checkout form.
type Input struct {
	Customer     orders.Customer
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
	Notes        string
}

// Service orchestrates the cart-to-order handoff: snapshot the cart into a
// ledger entry, clear the cart, then notify subscribed surfaces.
type Service interface {
	Checkout(ctx context.Context, clientID string, input Input) (*orders.Order, error)
}

type service struct {
	carts  cart.Service
	ledger orders.Service
	events *bus.Bus
	mirror *remote.Mirror
	logg   *logger.Logger
}

// NewService wires the checkout orchestrator.
func NewService(carts cart.Service, ledger orders.Service, events *bus.Bus, mirror *remote.Mirror, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("order service required")
	}
	if events == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &service{carts: carts, ledger: ledger, events: events, mirror: mirror, logg: logg}, nil
}

// Checkout creates an order from the current cart. The cart is cleared only
// after order creation succeeds; any earlier failure leaves it untouched.
func (s *service) Checkout(ctx context.Context, clientID string, input Input) (*orders.Order, error) {
	current, err := s.carts.GetCart(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order, err := s.ledger.CreateOrder(ctx, orders.CreateOrderInput{
		Customer:     input.Customer,
		LineItems:    current.Items,
		ShippingCost: input.ShippingCost,
		Discount:     input.Discount,
		Notes:        input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.ClearCart(ctx, clientID); err != nil {
		// The order exists; surface the storage failure rather than losing it.
		if s.logg != nil {
			s.logg.Error(ctx, "cart clear failed after order creation", err)
		}
		return order, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "order created but cart could not be cleared")
	}

	if s.mirror.Enabled() {
		if err := s.mirror.OrderCreated(ctx, order); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, order.ID), "order mirror failed")
		}
	}

	if err := s.events.Publish(ctx, enums.ChannelCartChanged, nil); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "cart-changed subscriber reported error")
	}
	if err := s.events.Publish(ctx, enums.ChannelCheckoutCompleted, order); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "checkout-completed subscriber reported error")
	}

	return order, nil
}
