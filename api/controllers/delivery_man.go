package controllers

import (
	"net/http"

	"github.com/angelmondragon/localdrop-backend/api/responses"
	"github.com/angelmondragon/localdrop-backend/api/validators"
	"github.com/angelmondragon/localdrop-backend/internal/deliverymen"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

// SubmitDeliveryManRequest files the caller's courier application.
func SubmitDeliveryManRequest(svc deliverymen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deliverymen.SubmitInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := svc.Submit(r.Context(), actor.UserID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, req)
	}
}

func PendingDeliveryManRequests(svc deliverymen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DecideDeliveryManRequest approves or rejects a pending application.
func DecideDeliveryManRequest(svc deliverymen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deliverymen.DecisionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := svc.Decide(r.Context(), id, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

// AssignedDeliveries lists the approved deliveries stamped with a courier.
func AssignedDeliveries(svc deliverymen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := validators.ParseUUIDParam(r, "deliveryManId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()

		out, err := svc.ListAssigned(r.Context(), deliverymen.AssignedQuery{
			CallerID:   actor.UserID,
			CallerRole: actor.Role,
			CourierID:  courierID,
			Search:     validators.CleanText(q.Get("search"), maxSearchLen),
			Sort:       enums.ParseDeliverySort(q.Get("sort")),
			Page:       page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
