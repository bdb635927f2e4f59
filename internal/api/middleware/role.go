package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

// RoleLookup resolves a user's stored record.
type RoleLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// ResolveRole loads the caller's stored role into the context without
// denying anything. A caller with no user record keeps an empty role.
func ResolveRole(users RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}
			if actor.Role == "" {
				user, err := users.FindByEmail(r.Context(), actor.Email)
				switch {
				case err == nil:
					actor.Role = user.Role
				case errors.Is(err, common.ErrNotFound):
				default:
					log.Printf("ERROR: role lookup for %s: %v", actor.Email, err)
					common.RespondWithJSON(w, http.StatusInternalServerError, common.ResultResponse{Success: false, Message: "Server error"})
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole admits the caller only when their stored role is one of roles.
func RequireRole(users RoleLookup, roles ...string) func(http.Handler) http.Handler {
	resolve := ResolveRole(users)
	return func(next http.Handler) http.Handler {
		check := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := ActorFromContext(r.Context())
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondWithError(w, http.StatusForbidden, "forbidden access")
		})
		return resolve(check)
	}
}

func AdminOnly(users RoleLookup) func(http.Handler) http.Handler {
	return RequireRole(users, model.RoleAdmin)
}

func CreatorOrAdmin(users RoleLookup) func(http.Handler) http.Handler {
	return RequireRole(users, model.RoleCreator, model.RoleAdmin)
}
