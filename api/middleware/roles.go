package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/localdrop-backend/api/responses"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

// guard runs admit against the authenticated caller and rejects the
// request with its error. Requests that skipped Auth get a 401.
func guard(logg *logger.Logger, admit func(Actor) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			var err error = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
			if ok {
				err = admit(actor)
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits callers holding any of roles.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	return guard(logg, func(a Actor) error {
		if slices.Contains(roles, a.Role) {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "role required")
	})
}

// RequireShop admits shop owners whose account is linked to a shop. Anyone
// else sees 404 so the route does not reveal shop ownership.
func RequireShop(logg *logger.Logger) func(http.Handler) http.Handler {
	return guard(logg, func(a Actor) error {
		if a.Role == enums.UserRoleShopOwner && a.ShopID != nil {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
	})
}
