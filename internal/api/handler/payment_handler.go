package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"contesthub/internal/app/service"
	"contesthub/internal/common"
	"contesthub/internal/platform/payment"

	"github.com/go-chi/chi/v5"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	paymentService *service.PaymentService
	guard          Guard
}

func NewPaymentHandler(ps *service.PaymentService, guard Guard) *PaymentHandler {
	return &PaymentHandler{paymentService: ps, guard: guard}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	// The session id is only a lookup key; Reconcile trusts the provider's record.
	r.Patch("/payment-success", h.paymentSuccess)
	r.Post("/webhooks/stripe", h.handleWebhook)

	authed := h.guard.Authenticated(r)
	authed.Post("/create-checkout-session", h.createCheckoutSession)
	authed.Get("/payments", h.listPayments) // ?email=
}

func (h *PaymentHandler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req service.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	url, err := h.paymentService.CreateCheckoutSession(r.Context(), actor, req, r.Header.Get("Idempotency-Key"))
	if errors.Is(err, common.ErrConflict) {
		respondResult(w, false, "Already registered")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *PaymentHandler) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	res, err := h.paymentService.Reconcile(r.Context(), r.URL.Query().Get("session_id"))
	if errors.Is(err, payment.ErrSessionNotFound) {
		common.RespondWithError(w, http.StatusNotFound, "Checkout session not found")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, res)
}

func (h *PaymentHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	res, err := h.paymentService.HandleWebhook(r.Context(), payload, r.Header)
	if err != nil {
		log.Printf("ERROR: Webhook: %v", err)
		common.RespondWithServiceError(w, r, err)
		return
	}
	if res == nil {
		common.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, res)
}

func (h *PaymentHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	recs, err := h.paymentService.ListPayments(r.Context(), actor, r.URL.Query().Get("email"))
	if errors.Is(err, common.ErrForbidden) {
		common.RespondWithError(w, http.StatusForbidden, "forbidden access")
		return
	}
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, recs)
}
