package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/brightgoods/storefront-backend/api/middleware"
	"github.com/brightgoods/storefront-backend/api/responses"
	"github.com/brightgoods/storefront-backend/api/validators"
	"github.com/brightgoods/storefront-backend/internal/bus"
	cartsvc "github.com/brightgoods/storefront-backend/internal/cart"
	"github.com/brightgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"github.com/brightgoods/storefront-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	ClientID  string             `json:"client_id"`
	Items     []cartsvc.LineItem `json:"items"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
}

func newCartResponse(c *cartsvc.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []cartsvc.LineItem{}
	}
	return cartResponse{
		ClientID:  c.ClientID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
	}
}

// CartFetch returns the current cart for the requesting client.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := requireClientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.GetCart(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(current))
	}
}

// CartAddItem adds a product to the cart, accumulating quantity for repeats.
func CartAddItem(svc cartsvc.Service, events *bus.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := requireClientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		updated, err := svc.AddItem(r.Context(), clientID, cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Name:      payload.Name,
			UnitPrice: payload.UnitPrice,
			ImageURL:  payload.ImageURL,
			Quantity:  quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		publishCartChanged(r.Context(), events, logg)
		responses.WriteSuccess(w, newCartResponse(updated))
	}
}

// CartUpdateItem sets the absolute quantity for a line item; a non-positive
// quantity removes it.
func CartUpdateItem(svc cartsvc.Service, events *bus.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := requireClientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateItemQuantity(r.Context(), clientID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		publishCartChanged(r.Context(), events, logg)
		responses.WriteSuccess(w, newCartResponse(updated))
	}
}

// CartRemoveItem deletes a line item; removing an absent product is a no-op.
func CartRemoveItem(svc cartsvc.Service, events *bus.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := requireClientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.RemoveItem(r.Context(), clientID, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		publishCartChanged(r.Context(), events, logg)
		responses.WriteSuccess(w, newCartResponse(updated))
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, events *bus.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := requireClientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ClearCart(r.Context(), clientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		publishCartChanged(r.Context(), events, logg)
		responses.WriteSuccess(w, newCartResponse(&cartsvc.Cart{ClientID: clientID}))
	}
}

func requireClientID(r *http.Request) (string, error) {
	clientID := middleware.ClientIDFromContext(r.Context())
	if clientID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "client identity missing")
	}
	return clientID, nil
}

func publishCartChanged(ctx context.Context, events *bus.Bus, logg *logger.Logger) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, enums.ChannelCartChanged, nil); err != nil && logg != nil {
		logg.Warn(ctx, "cart-changed subscriber reported error")
	}
}
