package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightgoods/storefront-backend/internal/storage"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"github.com/brightgoods/storefront-backend/pkg/logger"
	"github.com/brightgoods/storefront-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// LineItem is one product entry within a cart, with the unit price captured
// at the time it was added.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

// Cart is the ordered sequence of line items owned by one client.
type Cart struct {
	ClientID string     `json:"client_id"`
	Version  int64      `json:"version"`
	Items    []LineItem `json:"items"`
}

// ItemCount sums the quantities across all line items. Derived, never stored.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Total sums unit price times quantity across all line items.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// AddItemInput carries the product snapshot captured when adding to a cart.
type AddItemInput struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  string
	Quantity  int
}

// Service exposes cart persistence operations, all scoped by client id.
// Mutators persist their result before returning and never publish events;
// callers decide when a change notification goes out.
type Service interface {
	GetCart(ctx context.Context, clientID string) (*Cart, error)
	AddItem(ctx context.Context, clientID string, input AddItemInput) (*Cart, error)
	UpdateItemQuantity(ctx context.Context, clientID, productID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, clientID, productID string) (*Cart, error)
	ClearCart(ctx context.Context, clientID string) error
	ItemCount(ctx context.Context, clientID string) (int, error)
	Total(ctx context.Context, clientID string) (decimal.Decimal, error)
}

type service struct {
	store     storage.Store
	logg      *logger.Logger
	metrics   *metrics.CommerceMetrics
	keyPrefix string
}

// NewService builds a cart service backed by the provided store.
func NewService(store storage.Store, logg *logger.Logger, commerce *metrics.CommerceMetrics, namespace string) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if namespace == "" {
		namespace = "storefront"
	}
	return &service{store: store, logg: logg, metrics: commerce, keyPrefix: namespace}, nil
}

type record struct {
	Version int64      `json:"version"`
	Items   []LineItem `json:"items"`
}

func (s *service) key(clientID string) string {
	return s.keyPrefix + ":cart:" + clientID
}

func (s *service) decode(ctx context.Context, raw string, exists bool) record {
	if !exists || raw == "" {
		return record{}
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// A corrupt record reads as an empty cart rather than failing the
		// caller; the next mutation overwrites it.
		if s.logg != nil {
			s.logg.Warn(ctx, "corrupt cart record, treating as empty")
		}
		return record{}
	}
	return rec
}

// GetCart returns the current line items, or an empty cart when nothing is
// persisted or the store is unreadable.
func (s *service) GetCart(ctx context.Context, clientID string) (*Cart, error) {
	if clientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	raw, exists, err := s.store.Get(ctx, s.key(clientID))
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "cart read failed, treating as empty")
		}
		return &Cart{ClientID: clientID}, nil
	}
	rec := s.decode(ctx, raw, exists)
	return &Cart{ClientID: clientID, Version: rec.Version, Items: rec.Items}, nil
}

// AddItem appends a new line item, or increments the quantity when a line
// item for the same product already exists.
func (s *service) AddItem(ctx context.Context, clientID string, input AddItemInput) (*Cart, error) {
	if clientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	if input.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}

	updated, err := s.mutate(ctx, clientID, func(rec *record) {
		for i := range rec.Items {
			if rec.Items[i].ProductID == input.ProductID {
				rec.Items[i].Quantity += input.Quantity
				return
			}
		}
		rec.Items = append(rec.Items, LineItem{
			ProductID: input.ProductID,
			Name:      input.Name,
			UnitPrice: input.UnitPrice,
			Quantity:  input.Quantity,
			ImageURL:  input.ImageURL,
			AddedAt:   time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("add")
	return updated, nil
}

// UpdateItemQuantity sets the quantity to an absolute value; a non-positive
// quantity delegates to removal. Unknown product ids are a no-op.
func (s *service) UpdateItemQuantity(ctx context.Context, clientID, productID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, clientID, productID)
	}
	if clientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	updated, err := s.mutate(ctx, clientID, func(rec *record) {
		for i := range rec.Items {
			if rec.Items[i].ProductID == productID {
				rec.Items[i].Quantity = quantity
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("update")
	return updated, nil
}

// RemoveItem deletes the matching line item; absent products are a no-op.
func (s *service) RemoveItem(ctx context.Context, clientID, productID string) (*Cart, error) {
	if clientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	updated, err := s.mutate(ctx, clientID, func(rec *record) {
		kept := rec.Items[:0]
		for _, item := range rec.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		rec.Items = kept
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("remove")
	return updated, nil
}

// ClearCart deletes all line items for the client, idempotently.
func (s *service) ClearCart(ctx context.Context, clientID string) error {
	if clientID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	if err := s.store.Delete(ctx, s.key(clientID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clearing cart")
	}
	s.metrics.IncCartMutation("clear")
	return nil
}

func (s *service) ItemCount(ctx context.Context, clientID string) (int, error) {
	current, err := s.GetCart(ctx, clientID)
	if err != nil {
		return 0, err
	}
	return current.ItemCount(), nil
}

func (s *service) Total(ctx context.Context, clientID string) (decimal.Decimal, error) {
	current, err := s.GetCart(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return current.Total(), nil
}

// mutate runs fn inside the store's atomic read-modify-write and bumps the
// record version so interleaved writers cannot lose updates.
func (s *service) mutate(ctx context.Context, clientID string, fn func(rec *record)) (*Cart, error) {
	var result record
	err := s.store.Update(ctx, s.key(clientID), func(current string, exists bool) (string, error) {
		rec := s.decode(ctx, current, exists)
		fn(&rec)
		rec.Version++
		encoded, err := json.Marshal(rec)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encoding cart record")
		}
		result = rec
		return string(encoded), nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persisting cart")
	}
	return &Cart{ClientID: clientID, Version: result.Version, Items: result.Items}, nil
}
