package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/brightgoods/storefront-backend/api/responses"
	"github.com/brightgoods/storefront-backend/api/validators"
	checkoutsvc "github.com/brightgoods/storefront-backend/internal/checkout"
	"github.com/brightgoods/storefront-backend/internal/orders"
	"github.com/brightgoods/storefront-backend/pkg/logger"
	"github.com/brightgoods/storefront-backend/pkg/types"
)

type checkoutAddress struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

type checkoutCustomer struct {
	Name    string          `json:"name" validate:"required"`
	Email   string          `json:"email" validate:"required,email"`
	Phone   string          `json:"phone"`
	Address checkoutAddress `json:"address"`
}

type checkoutRequest struct {
	Customer     checkoutCustomer `json:"customer" validate:"required"`
	ShippingCost decimal.Decimal  `json:"shipping_cost"`
	Discount     decimal.Decimal  `json:"discount"`
	Notes        string           `json:"notes"`
}

// Checkout snapshots the cart into a new order and clears the cart.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := requireClientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), clientID, checkoutsvc.Input{
			Customer: orders.Customer{
				Name:  payload.Customer.Name,
				Email: payload.Customer.Email,
				Phone: payload.Customer.Phone,
				Address: types.Address{
					Line1:      payload.Customer.Address.Line1,
					Line2:      payload.Customer.Address.Line2,
					City:       payload.Customer.Address.City,
					State:      payload.Customer.Address.State,
					PostalCode: payload.Customer.Address.PostalCode,
					Country:    payload.Customer.Address.Country,
				},
			},
			ShippingCost: payload.ShippingCost,
			Discount:     payload.Discount,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
