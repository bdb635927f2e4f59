package handler

import (
	"errors"
	"net/http"

	"contesthub/internal/app/service"
	"contesthub/internal/common"

	"github.com/go-chi/chi/v5"
)

type ParticipationHandler struct {
	participationService *service.ParticipationService
	guard                Guard
}

func NewParticipationHandler(ps *service.ParticipationService, guard Guard) *ParticipationHandler {
	return &ParticipationHandler{participationService: ps, guard: guard}
}

func (h *ParticipationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/participations", h.checkRegistered) // ?contestId=&userEmail=
	r.Get("/contest/participated/{email}", h.listParticipated)

	h.guard.Authenticated(r).Post("/participations", h.register)
}

func (h *ParticipationHandler) checkRegistered(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ok, err := h.participationService.CheckAlreadyRegistered(r.Context(), q.Get("contestId"), q.Get("userEmail"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"alreadyRegistered": ok})
}

func (h *ParticipationHandler) listParticipated(w http.ResponseWriter, r *http.Request) {
	list, err := h.participationService.ListByUser(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *ParticipationHandler) register(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.participationService.Register(r.Context(), actor, req)
	switch {
	case errors.Is(err, common.ErrConflict):
		common.RespondWithError(w, http.StatusBadRequest, "Already registered")
		return
	case errors.Is(err, common.ErrBadRequest) && (req.ContestID == "" || req.UserEmail == ""):
		common.RespondWithError(w, http.StatusBadRequest, "contestId & userEmail are required")
		return
	case err != nil:
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Successfully registered",
		"insertedId": id,
	})
}
