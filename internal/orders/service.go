package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brightgoods/storefront-backend/internal/cart"
	"github.com/brightgoods/storefront-backend/internal/storage"
	"github.com/brightgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"github.com/brightgoods/storefront-backend/pkg/logger"
	"github.com/brightgoods/storefront-backend/pkg/metrics"
	"github.com/brightgoods/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Customer captures the contact and shipping details collected at checkout.
type Customer struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone,omitempty"`
	Address types.Address `json:"address"`
}

// Order is an immutable snapshot of a cart at checkout time. Line items never
// change after creation; only status, notes and customer corrections do.
type Order struct {
	ID           string            `json:"id"`
	Status       enums.OrderStatus `json:"status"`
	LineItems    []cart.LineItem   `json:"line_items"`
	Customer     Customer          `json:"customer"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	ShippingCost decimal.Decimal   `json:"shipping_cost"`
	Discount     decimal.Decimal   `json:"discount"`
	Total        decimal.Decimal   `json:"total"`
	Notes        string            `json:"notes,omitempty"`
	AdminNotes   string            `json:"admin_notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// CreateOrderInput carries everything needed to cut an order from a cart.
type CreateOrderInput struct {
	Customer     Customer
	LineItems    []cart.LineItem
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
	Notes        string
}

// OrderPatch updates non-status fields; status changes go through
// UpdateStatus exclusively so the lifecycle cannot be bypassed.
type OrderPatch struct {
	Customer     *Customer
	Notes        *string
	ShippingCost *decimal.Decimal
	Discount     *decimal.Decimal
}

// OrderStats is the aggregate view for the admin dashboard.
type OrderStats struct {
	Total            int                       `json:"total"`
	ByStatus         map[enums.OrderStatus]int `json:"by_status"`
	DeliveredRevenue decimal.Decimal           `json:"delivered_revenue"`
}

// Service owns order creation and the status lifecycle.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, next enums.OrderStatus, notes string) (*Order, error)
	UpdateOrder(ctx context.Context, orderID string, patch OrderPatch) (*Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	Stats(ctx context.Context) (*OrderStats, error)
}

type service struct {
	store     storage.Store
	logg      *logger.Logger
	metrics   *metrics.CommerceMetrics
	keyPrefix string
}

// NewService builds the order ledger backed by the provided store.
func NewService(store storage.Store, logg *logger.Logger, commerce *metrics.CommerceMetrics, namespace string) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if namespace == "" {
		namespace = "storefront"
	}
	return &service{store: store, logg: logg, metrics: commerce, keyPrefix: namespace}, nil
}

func (s *service) key() string {
	return s.keyPrefix + ":orders"
}

func (s *service) decode(ctx context.Context, raw string, exists bool) []Order {
	if !exists || raw == "" {
		return nil
	}
	var all []Order
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "corrupt order collection, treating as empty", err)
		}
		return nil
	}
	return all
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.Customer.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if input.ShippingCost.IsNegative() || input.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost and discount must not be negative")
	}

	subtotal := decimal.Zero
	for _, item := range input.LineItems {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be at least 1")
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total := subtotal.Add(input.ShippingCost).Sub(input.Discount)
	if total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order total")
	}

	// Snapshot-copy: later cart mutations must never reach the ledger.
	items := make([]cart.LineItem, len(input.LineItems))
	copy(items, input.LineItems)

	now := time.Now().UTC()
	order := Order{
		ID:           NewOrderID(),
		Status:       enums.OrderStatusPending,
		LineItems:    items,
		Customer:     input.Customer,
		Subtotal:     subtotal,
		ShippingCost: input.ShippingCost,
		Discount:     input.Discount,
		Total:        total,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.store.Update(ctx, s.key(), func(current string, exists bool) (string, error) {
		all := s.decode(ctx, current, exists)
		all = append(all, order)
		encoded, err := json.Marshal(all)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encoding order collection")
		}
		return string(encoded), nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persisting order")
	}

	s.metrics.IncOrderCreated()
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID), "order created")
	}
	return &order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	all, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == orderID {
			return &all[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// ListOrders returns all persisted orders, most recently created first.
func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	raw, exists, err := s.store.Get(ctx, s.key())
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "order collection read failed, treating as empty")
		}
		return nil, nil
	}
	all := s.decode(ctx, raw, exists)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

// UpdateStatus moves an order through the lifecycle, rejecting transitions
// the state machine does not permit. Repeating the current status is a no-op.
func (s *service) UpdateStatus(ctx context.Context, orderID string, next enums.OrderStatus, notes string) (*Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next))
	}

	var updated Order
	var from enums.OrderStatus
	var transitioned bool
	err := s.mutateCollection(ctx, func(all []Order) ([]Order, error) {
		idx := indexOf(all, orderID)
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		current := all[idx].Status
		if current == next {
			updated = all[idx]
			return all, nil
		}
		if !current.CanTransitionTo(next) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot transition order from %s to %s", current, next)).
				WithDetails(map[string]string{"from": current.String(), "to": next.String()})
		}
		from = current
		transitioned = true
		all[idx].Status = next
		all[idx].UpdatedAt = time.Now().UTC()
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			if all[idx].AdminNotes != "" {
				all[idx].AdminNotes += "\n"
			}
			all[idx].AdminNotes += trimmed
		}
		updated = all[idx]
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.metrics.IncOrderTransition(from.String(), next.String())
	}
	return &updated, nil
}

// UpdateOrder patches non-status fields such as a shipping address
// correction. It recomputes the total when cost fields change.
func (s *service) UpdateOrder(ctx context.Context, orderID string, patch OrderPatch) (*Order, error) {
	var updated Order
	err := s.mutateCollection(ctx, func(all []Order) ([]Order, error) {
		idx := indexOf(all, orderID)
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		order := &all[idx]
		if patch.Customer != nil {
			if strings.TrimSpace(patch.Customer.Name) == "" || strings.TrimSpace(patch.Customer.Email) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name and email are required")
			}
			order.Customer = *patch.Customer
		}
		if patch.Notes != nil {
			order.Notes = *patch.Notes
		}
		if patch.ShippingCost != nil {
			if patch.ShippingCost.IsNegative() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost must not be negative")
			}
			order.ShippingCost = *patch.ShippingCost
		}
		if patch.Discount != nil {
			if patch.Discount.IsNegative() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
			}
			order.Discount = *patch.Discount
		}
		order.Total = order.Subtotal.Add(order.ShippingCost).Sub(order.Discount)
		if order.Total.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order total")
		}
		order.UpdatedAt = time.Now().UTC()
		updated = *order
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOrder irreversibly removes an order. Administrative override only;
// the customer-facing lifecycle ends at delivered or cancelled.
func (s *service) DeleteOrder(ctx context.Context, orderID string) error {
	return s.mutateCollection(ctx, func(all []Order) ([]Order, error) {
		idx := indexOf(all, orderID)
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return append(all[:idx], all[idx+1:]...), nil
	})
}

func (s *service) Stats(ctx context.Context) (*OrderStats, error) {
	all, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	stats := &OrderStats{
		Total:            len(all),
		ByStatus:         map[enums.OrderStatus]int{},
		DeliveredRevenue: decimal.Zero,
	}
	for _, order := range all {
		stats.ByStatus[order.Status]++
		if order.Status == enums.OrderStatusDelivered {
			stats.DeliveredRevenue = stats.DeliveredRevenue.Add(order.Total)
		}
	}
	return stats, nil
}

func (s *service) mutateCollection(ctx context.Context, fn func(all []Order) ([]Order, error)) error {
	err := s.store.Update(ctx, s.key(), func(current string, exists bool) (string, error) {
		all := s.decode(ctx, current, exists)
		next, err := fn(all)
		if err != nil {
			return "", err
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encoding order collection")
		}
		return string(encoded), nil
	})
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persisting order collection")
}

func indexOf(all []Order, orderID string) int {
	for i := range all {
		if all[i].ID == orderID {
			return i
		}
	}
	return -1
}
