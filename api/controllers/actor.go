package controllers

import (
	"net/http"

	"github.com/angelmondragon/localdrop-backend/api/middleware"
	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
)

func requireActor(r *http.Request) (middleware.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return middleware.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return actor, nil
}

// deliveryScope acts for a shop owner on their shop, or for staff across shops.
func deliveryScope(actor middleware.Actor) deliveries.Scope {
	if actor.Role == enums.UserRoleShopOwner {
		return deliveries.OwnerScope(actor.UserID, actor.ShopID)
	}
	return deliveries.StaffScope(actor.UserID, actor.Role, nil)
}

func shopActor(actor middleware.Actor) shops.Actor {
	return shops.Actor{UserID: actor.UserID, Role: actor.Role, ShopID: actor.ShopID}
}

// customerFor identifies who placed or is reading orders: the signed-in user
// when present, else the guest key.
func customerFor(r *http.Request) deliveries.Customer {
	customer := deliveries.Customer{GuestKey: middleware.GuestKey(r)}
	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		id := actor.UserID
		customer.UserID = &id
	}
	return customer
}
