package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
	"contesthub/internal/platform/identity"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const actorCtxKey contextKey = "actor"

// WithActor stores the verified caller. Role stays empty until a role
// middleware has resolved it.
func WithActor(ctx context.Context, a model.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, a)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	a, ok := ctx.Value(actorCtxKey).(model.Actor)
	return a, ok && a.Email != ""
}

// Authenticator verifies the bearer token and stores the caller's email in
// the request context.
func Authenticator(v identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := jwtauth.TokenFromHeader(r)
			if raw == "" {
				common.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			email, err := v.Verify(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, common.ErrUnauthorized) {
					log.Printf("ERROR: identity verification failed: %v", err)
				}
				common.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), model.Actor{Email: email})))
		})
	}
}
