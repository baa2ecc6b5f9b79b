package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/localdrop-backend/api/responses"
	"github.com/angelmondragon/localdrop-backend/api/validators"
	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

const maxSearchLen = 100

// CreateDelivery accepts an order from a signed-in customer or a guest.
func CreateDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload deliveries.CreateDeliveryInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), customerFor(r), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithDeliveryID(r.Context(), created.ID.String())
			logg.Info(logg.WithShopID(ctx, created.Shop.String()), "delivery.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CustomerDeliveries lists the caller's orders, by account or guest key.
func CustomerDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListForCustomer(r.Context(), customerFor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ShopDeliveries lists the owner's approved and delivered orders.
func ShopDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return shopList(logg, svc.ListActiveForShop)
}

// PendingDeliveries lists the owner's orders awaiting approval.
func PendingDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return shopList(logg, svc.ListPendingForShop)
}

func shopList(logg *logger.Logger, list func(ctx context.Context, shopID uuid.UUID) ([]deliveries.DeliveryDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.ShopID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found"))
			return
		}
		rows, err := list(r.Context(), *actor.ShopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ApproveDelivery assigns a PIN and moves a pending order to approved.
func ApproveDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		approved, err := svc.Approve(r.Context(), deliveryScope(actor), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, approved)
	}
}

// RejectDelivery deletes a pending order.
func RejectDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reject(r.Context(), deliveryScope(actor), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"message": "Delivery rejected and removed", "deletedId": id})
	}
}

type verifyRequest struct {
	Pin    pinValue  `json:"pin"`
	ShopID uuid.UUID `json:"shopId"`
}

// pinValue takes the handoff PIN as either a JSON string or number.
type pinValue string

func (p *pinValue) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = pinValue(strings.TrimSpace(text))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("pin must be a string or number")
	}
	*p = pinValue(num.String())
	return nil
}

// VerifyDelivery completes the handoff when the courier or owner enters the PIN.
func VerifyDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload verifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := deliveryScope(actor)
		if actor.Role.IsStaff() && payload.ShopID != uuid.Nil {
			shopID := payload.ShopID
			scope.ShopID = &shopID
		}

		verified, err := svc.Verify(r.Context(), scope, id, string(payload.Pin))
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeInvalidPIN) && logg != nil {
				logg.Warn(logg.WithDeliveryID(r.Context(), id.String()), "delivery.verify.invalid_pin")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verified)
	}
}

// DeliveryByPin looks up an order by its handoff PIN.
func DeliveryByPin(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := svc.GetByPin(r.Context(), chi.URLParam(r, "pin"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// DeliveryQueue serves the staff queue of deliveries in status.
func DeliveryQueue(svc deliveries.Service, status enums.DeliveryStatus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := queueFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Statuses = []enums.DeliveryStatus{status}
		filter.PlatformOnly = true

		page, err := svc.ListQueue(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func queueFilter(r *http.Request) (deliveries.QueueFilter, error) {
	page, err := validators.ParsePage(r)
	if err != nil {
		return deliveries.QueueFilter{}, err
	}
	q := r.URL.Query()
	filter := deliveries.QueueFilter{
		Search: validators.CleanText(q.Get("search"), maxSearchLen),
		Sort:   enums.ParseDeliverySort(q.Get("sort")),
		Page:   page,
	}
	if raw := strings.TrimSpace(q.Get("shopId")); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			return deliveries.QueueFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid shopId").WithDetails(map[string]any{"field": "shopId"})
		}
		filter.ShopID = &shopID
	}
	return filter, nil
}

// ResetShopStats zeroes the owner's shop counters.
func ResetShopStats(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.ResetShopStats(r.Context(), deliveryScope(actor), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"message": "Shop statistics reset", "shop": shop})
	}
}
