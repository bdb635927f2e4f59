// Package payment wraps the hosted-checkout provider. The service layer only
// sees Provider; the concrete provider is picked by PAYMENT_PROVIDER.
package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/platform/config"
)

const (
	MetaContestID   = "contestId"
	MetaContestName = "contestName"

	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"

	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"

	ProviderStripe = "stripe"
	ProviderStub   = "stub"
)

var (
	ErrSessionNotFound  = fmt.Errorf("checkout session not found: %w", common.ErrNotFound)
	ErrInvalidSignature = fmt.Errorf("invalid webhook signature: %w", common.ErrBadRequest)
)

type CheckoutRequest struct {
	ContestID   string
	ContestName string
	UserEmail   string
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Session is the provider's own record of a checkout.
type Session struct {
	ID              string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	PaymentIntentID string
	CustomerEmail   string
	Metadata        map[string]string
	Created         time.Time
}

// WebhookEvent is a verified provider notification about a checkout session.
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
}

type Provider interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	// ParseWebhook authenticates payload and decodes it. SessionID is empty for
	// events that do not concern a checkout session.
	ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error)
}

func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.PaymentProvider {
	case ProviderStripe:
		return NewStripeProvider(cfg.StripeSecret, cfg.StripeWebhookSecret), nil
	case ProviderStub:
		return NewStubProvider(cfg.StubWebhookSecret, cfg.SiteDomain), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.PaymentProvider)
	}
}
