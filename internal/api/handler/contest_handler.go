package handler

import (
	"errors"
	"net/http"

	"contesthub/internal/app/service"
	"contesthub/internal/common"
	"contesthub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService *service.ContestService
	guard          Guard
}

func NewContestHandler(cs *service.ContestService, guard Guard) *ContestHandler {
	return &ContestHandler{contestService: cs, guard: guard}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/contest", h.listAll)
	r.Get("/contest/creator/{email}", h.listByCreator)
	r.Get("/contest/won/{email}", h.listWon)
	r.Get("/contest/{id}", h.getContest)
	r.Get("/contests", h.listApproved) // ?category=Image Design
	r.Get("/contests/popular", h.listPopular)

	h.guard.CreatorOrAdmin(r).Post("/contest", h.createContest)

	authed := h.guard.Authenticated(r)
	authed.Patch("/contest/{id}", h.updateContest)
	authed.Patch("/contest/declare-winner/{id}", h.declareWinner)

	h.guard.Admin(r).Delete("/contest/{id}", h.deleteContest)
}

func (h *ContestHandler) respondList(w http.ResponseWriter, r *http.Request, contests []model.Contest, err error) {
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

func (h *ContestHandler) listAll(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListAll(r.Context())
	h.respondList(w, r, contests, err)
}

func (h *ContestHandler) listByCreator(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListByCreator(r.Context(), chi.URLParam(r, "email"))
	h.respondList(w, r, contests, err)
}

func (h *ContestHandler) listWon(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListWonBy(r.Context(), chi.URLParam(r, "email"))
	h.respondList(w, r, contests, err)
}

func (h *ContestHandler) listApproved(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListApproved(r.Context(), r.URL.Query().Get("category"))
	h.respondList(w, r, contests, err)
}

func (h *ContestHandler) listPopular(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListPopular(r.Context())
	h.respondList(w, r, contests, err)
}

func (h *ContestHandler) getContest(w http.ResponseWriter, r *http.Request) {
	contest, err := h.contestService.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, common.ErrNotFound) {
		common.RespondWithError(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) createContest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req service.CreateContestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contest, err := h.contestService.Create(r.Context(), actor, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contest)
}

func (h *ContestHandler) updateContest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var patch model.ContestPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	err := h.contestService.Update(r.Context(), actor, chi.URLParam(r, "id"), patch)
	if errors.Is(err, common.ErrNotFound) {
		common.RespondWithError(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	respondResult(w, true, "Contest updated successfully")
}

func (h *ContestHandler) declareWinner(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var winner model.Winner
	if !decodeJSON(w, r, &winner) {
		return
	}

	err := h.contestService.DeclareWinner(r.Context(), actor, chi.URLParam(r, "id"), winner)
	if errors.Is(err, common.ErrConflict) {
		respondResult(w, false, "Winner already declared")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	respondResult(w, true, "Winner declared")
}

func (h *ContestHandler) deleteContest(w http.ResponseWriter, r *http.Request) {
	if err := h.contestService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	respondResult(w, true, "Contest deleted")
}
