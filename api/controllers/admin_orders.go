package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/brightgoods/storefront-backend/api/responses"
	"github.com/brightgoods/storefront-backend/api/validators"
	"github.com/brightgoods/storefront-backend/internal/orders"
	"github.com/brightgoods/storefront-backend/internal/remote"
	"github.com/brightgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
	"github.com/brightgoods/storefront-backend/pkg/logger"
	"github.com/brightgoods/storefront-backend/pkg/types"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type patchOrderRequest struct {
	Customer     *checkoutCustomer `json:"customer"`
	Notes        *string           `json:"notes"`
	ShippingCost *decimal.Decimal  `json:"shipping_cost"`
	Discount     *decimal.Decimal  `json:"discount"`
}

// AdminOrderList returns all orders, newest first, optionally filtered by
// status via the ?status= query parameter.
func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filtered := all[:0]
			for _, order := range all {
				if order.Status == status {
					filtered = append(filtered, order)
				}
			}
			all = filtered
		}

		if all == nil {
			all = []orders.Order{}
		}
		responses.WriteSuccess(w, all)
	}
}

// AdminOrderDetail returns a single order by id.
func AdminOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderUpdateStatus moves an order through the lifecycle. Transitions
// always go through the ledger's state machine; arbitrary status values are
// rejected before reaching it.
func AdminOrderUpdateStatus(svc orders.Service, mirror *remote.Mirror, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), status, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if mirror.Enabled() {
			if err := mirror.StatusChanged(r.Context(), order); err != nil && logg != nil {
				logg.Warn(logg.WithOrderID(r.Context(), order.ID), "status mirror failed")
			}
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminOrderPatch updates non-status order fields.
func AdminOrderPatch(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload patchOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := orders.OrderPatch{
			Notes:        payload.Notes,
			ShippingCost: payload.ShippingCost,
			Discount:     payload.Discount,
		}
		if payload.Customer != nil {
			patch.Customer = &orders.Customer{
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
			}
		}

		order, err := svc.UpdateOrder(r.Context(), chi.URLParam(r, "orderId"), patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderDelete irreversibly removes an order.
func AdminOrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteOrder(r.Context(), chi.URLParam(r, "orderId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminOrderStats returns the aggregate dashboard view.
func AdminOrderStats(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
