package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/api/responses"
	pkgAuth "github.com/angelmondragon/localdrop-backend/pkg/auth"
	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

// ActorLoader reloads the caller's current role and shop.
type ActorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth requires a valid bearer token and seeds the request context with the caller.
func Auth(cfg config.JWTConfig, users ActorLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, users, logg, true)
}

// OptionalAuth authenticates the caller when a token is sent and lets
// anonymous requests through. A token that fails to verify is still rejected.
func OptionalAuth(cfg config.JWTConfig, users ActorLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, users, logg, false)
}

func authenticate(cfg config.JWTConfig, users ActorLoader, logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			actor := Actor{UserID: claims.UserID, Role: claims.Role, ShopID: claims.ShopID}
			if users != nil {
				user, err := users.FindByID(r.Context(), claims.UserID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found"))
						return
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
					return
				}
				actor.Role = user.Role
				actor.ShopID = user.ShopID
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithUserID(ctx, actor.UserID.String())
				ctx = logg.WithActorRole(ctx, string(actor.Role))
				if actor.ShopID != nil {
					ctx = logg.WithShopID(ctx, actor.ShopID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw
}
