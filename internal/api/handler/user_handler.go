package handler

import (
	"errors"
	"net/http"

	"contesthub/internal/app/service"
	"contesthub/internal/common"
	"contesthub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
	guard       Guard
}

func NewUserHandler(us *service.UserService, guard Guard) *UserHandler {
	return &UserHandler{userService: us, guard: guard}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users/{email}", h.getUser)

	authed := h.guard.Authenticated(r)
	authed.Post("/users", h.createUser)
	authed.Get("/users/role/{email}", h.getRole)
	authed.Patch("/users/{email}", h.updateProfile)

	admin := h.guard.Admin(r)
	admin.Get("/users", h.listUsers)
	admin.Patch("/users/role/{email}", h.updateRole)
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req service.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		req.Email = actor.Email
	}
	if req.Email != actor.Email {
		common.RespondWithError(w, http.StatusForbidden, "forbidden access")
		return
	}

	created, err := h.userService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	if !created {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "user exists"})
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "insertedId": req.Email})
}

func (h *UserHandler) getRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	role, err := h.userService.GetRole(r.Context(), actor, chi.URLParam(r, "email"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"role": role})
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.FindByEmail(r.Context(), chi.URLParam(r, "email"))
	if errors.Is(err, common.ErrNotFound) {
		common.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var upd model.ProfileUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	err := h.userService.UpdateProfile(r.Context(), actor, chi.URLParam(r, "email"), upd)
	if errors.Is(err, common.ErrForbidden) {
		common.RespondWithError(w, http.StatusForbidden, "Forbidden access: Cannot edit other profiles")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	respondResult(w, true, "Profile updated!")
}

func (h *UserHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.userService.UpdateRole(r.Context(), chi.URLParam(r, "email"), body.Role); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	respondResult(w, true, "Role updated")
}
