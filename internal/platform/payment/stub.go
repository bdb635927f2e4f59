package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionIDPlaceholder is substituted into success URLs by the provider.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// StubProvider keeps checkout sessions in memory for local runs. A session is
// unpaid until a webhook signed with the shared secret (X-Signature, hex
// HMAC-SHA256 of the body) reports it paid.
type StubProvider struct {
	secret     string
	siteDomain string

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStubProvider(secret, siteDomain string) *StubProvider {
	return &StubProvider{
		secret:     secret,
		siteDomain: strings.TrimRight(siteDomain, "/"),
		sessions:   make(map[string]*Session),
	}
}

func (p *StubProvider) Name() string { return ProviderStub }

func (p *StubProvider) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	id := "cs_stub_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	meta := map[string]string{
		MetaContestID:   req.ContestID,
		MetaContestName: req.ContestName,
	}

	p.mu.Lock()
	p.sessions[id] = &Session{
		ID:            id,
		PaymentStatus: StatusUnpaid,
		AmountTotal:   req.AmountMinor,
		Currency:      req.Currency,
		CustomerEmail: req.UserEmail,
		Metadata:      meta,
		Created:       time.Now().UTC().Truncate(time.Second),
	}
	p.mu.Unlock()

	return &CheckoutSession{ID: id, URL: strings.ReplaceAll(req.SuccessURL, SessionIDPlaceholder, id)}, nil
}

func (p *StubProvider) RetrieveSession(_ context.Context, sessionID string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *s
	out.Metadata = make(map[string]string, len(s.Metadata))
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}
	return &out, nil
}

// MarkPaid settles a session the way a completed hosted checkout would.
func (p *StubProvider) MarkPaid(sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if s.PaymentStatus != StatusPaid {
		s.PaymentStatus = StatusPaid
		s.PaymentIntentID = "pi_stub_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	}
	return nil
}

// Sign returns the X-Signature value for payload.
func (p *StubProvider) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

type stubWebhookPayload struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"` // paid/cancelled
}

func (p *StubProvider) ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error) {
	sig := header.Get("X-Signature")
	if sig == "" || !hmac.Equal([]byte(sig), []byte(p.Sign(payload))) {
		return nil, ErrInvalidSignature
	}

	var pl stubWebhookPayload
	if err := json.Unmarshal(payload, &pl); err != nil {
		return nil, fmt.Errorf("decode stub webhook: %w", err)
	}

	event := &WebhookEvent{ID: "evt_stub_" + uuid.NewString()}
	status := strings.TrimSpace(pl.Status)
	if status != "" && status != StatusPaid {
		event.Type = "checkout.session.expired"
		return event, nil
	}
	if err := p.MarkPaid(pl.SessionID); err != nil {
		return nil, err
	}
	event.Type = EventCheckoutCompleted
	event.SessionID = pl.SessionID
	return event, nil
}
