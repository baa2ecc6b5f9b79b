package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/localdrop-backend/api/middleware"
	"github.com/angelmondragon/localdrop-backend/api/responses"
)

type pong struct {
	Time   time.Time `json:"time"`
	Caller string    `json:"caller"`
	Role   string    `json:"role,omitempty"`
	ShopID string    `json:"shopId,omitempty"`
}

// Ping answers with the server clock and, when a valid token came along,
// who the server thinks the caller is.
func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := pong{Time: time.Now().UTC(), Caller: "anonymous"}
		if actor, ok := middleware.ActorFromContext(r.Context()); ok {
			out.Caller = actor.UserID.String()
			out.Role = string(actor.Role)
			if actor.ShopID != nil {
				out.ShopID = actor.ShopID.String()
			}
		}
		responses.WriteSuccess(w, out)
	}
}
