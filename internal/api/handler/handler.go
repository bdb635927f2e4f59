package handler

import (
	"encoding/json"
	"net/http"

	"contesthub/internal/api/middleware"
	"contesthub/internal/common"
	"contesthub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// Guard builds the authentication and role chains routes are mounted behind.
type Guard struct {
	Authenticate func(http.Handler) http.Handler
	Users        middleware.RoleLookup
}

// Authenticated requires a verified caller and resolves their stored role.
func (g Guard) Authenticated(r chi.Router) chi.Router {
	return r.With(g.Authenticate, middleware.ResolveRole(g.Users))
}

func (g Guard) Admin(r chi.Router) chi.Router {
	return r.With(g.Authenticate, middleware.AdminOnly(g.Users))
}

func (g Guard) CreatorOrAdmin(r chi.Router) chi.Router {
	return r.With(g.Authenticate, middleware.CreatorOrAdmin(g.Users))
}

func actorFrom(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
	}
	return actor, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func respondResult(w http.ResponseWriter, success bool, message string) {
	common.RespondWithJSON(w, http.StatusOK, common.ResultResponse{Success: success, Message: message})
}
