package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

type contextKey string

const ctxActor contextKey = "actor"

// Actor is the authenticated caller. Role and ShopID come from the users
// table at request time, not from the token.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
	ShopID *uuid.UUID
}

// WithActor injects the caller into the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the caller, if the request was authenticated.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(Actor)
	return actor, ok
}

func UserIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.Role
	}
	return ""
}

func ShopIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.ShopID != nil {
		return actor.ShopID.String()
	}
	return ""
}

// GuestKeyHeader carries the anonymous customer key on order reads and writes.
const GuestKeyHeader = "X-Guest-Key"

// GuestKey returns the guest key from the header or the guestKey query parameter.
func GuestKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(GuestKeyHeader)); key != "" {
		return key
	}
	return strings.TrimSpace(r.URL.Query().Get("guestKey"))
}
