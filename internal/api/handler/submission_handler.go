package handler

import (
	"errors"
	"net/http"

	"contesthub/internal/app/service"
	"contesthub/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	guard             Guard
}

func NewSubmissionHandler(ss *service.SubmissionService, guard Guard) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, guard: guard}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	authed := h.guard.Authenticated(r)
	authed.Post("/submissions", h.createSubmission)
	authed.Get("/creator/all-submissions/{email}", h.listByCreator)

	h.guard.CreatorOrAdmin(r).Get("/creator/submissions/{contestId}", h.listByContest)
}

func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req service.CreateSubmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.submissionService.Create(r.Context(), actor, req)
	switch {
	case errors.Is(err, common.ErrConflict):
		respondResult(w, false, "You have already submitted this contest")
		return
	case errors.Is(err, common.ErrForbidden) && actor.Email == req.UserEmail:
		common.RespondWithError(w, http.StatusForbidden, "You must be registered/paid to submit a task.")
		return
	case err != nil:
		common.RespondWithServiceError(w, r, err)
		return
	}
	respondResult(w, true, "Task submitted successfully")
}

func (h *SubmissionHandler) listByContest(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissionService.ListByContest(r.Context(), chi.URLParam(r, "contestId"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) listByCreator(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	subs, err := h.submissionService.ListByCreator(r.Context(), actor, chi.URLParam(r, "email"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}
