package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
	"contesthub/internal/domain/repository"
	"contesthub/internal/platform/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MsgPaymentPending   = "Payment not completed yet"
	MsgPaymentDuplicate = "Payment already processed"
	MsgPaymentRecorded  = "Payment successful & registered"
)

// CheckoutCache remembers checkout URLs per idempotency key.
type CheckoutCache interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, url string) (string, error)
}

type PaymentService struct {
	provider          payment.Provider
	paymentRepo       repository.PaymentRepository
	contestRepo       repository.ContestRepository
	participationRepo repository.ParticipationRepository
	checkouts         CheckoutCache
	siteDomain        string
	now               func() time.Time
}

// NewPaymentService wires the reconciler. checkouts may be nil, in which case
// Idempotency-Key headers are ignored.
func NewPaymentService(
	provider payment.Provider,
	paymentRepo repository.PaymentRepository,
	contestRepo repository.ContestRepository,
	participationRepo repository.ParticipationRepository,
	checkouts CheckoutCache,
	siteDomain string,
) *PaymentService {
	return &PaymentService{
		provider:          provider,
		paymentRepo:       paymentRepo,
		contestRepo:       contestRepo,
		participationRepo: participationRepo,
		checkouts:         checkouts,
		siteDomain:        strings.TrimRight(siteDomain, "/"),
		now:               func() time.Time { return time.Now().UTC() },
	}
}

type CheckoutRequest struct {
	ContestID   string          `json:"contestId"`
	ContestName string          `json:"contestName"`
	UserEmail   string          `json:"userEmail"`
	Price       decimal.Decimal `json:"price"`
}

// ReconcileResult is the success-shaped outcome of a reconciliation. Pending
// and duplicate outcomes are results, not errors.
type ReconcileResult struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	Status      string               `json:"status,omitempty"`
	Duplicate   bool                 `json:"duplicate,omitempty"`
	PaymentInfo *model.PaymentRecord `json:"paymentInfo,omitempty"`
}

// MinorUnits converts a major-unit price to integer cents, truncating
// fractions of a cent.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).IntPart()
}

// CreateCheckoutSession opens a hosted checkout for the actor's entry into a
// paid contest and returns its redirect URL. No local record is written.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, actor model.Actor, req CheckoutRequest, idempotencyKey string) (string, error) {
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	if req.UserEmail == "" {
		req.UserEmail = actor.Email
	}
	if err := validateID("contestId", req.ContestID); err != nil {
		return "", err
	}
	if !actor.CanActFor(req.UserEmail) {
		return "", fmt.Errorf("cannot pay for another user: %w", common.ErrForbidden)
	}
	if !req.Price.IsPositive() {
		return "", fmt.Errorf("price must be positive: %w", common.ErrValidation)
	}

	contest, err := s.contestRepo.FindByID(ctx, req.ContestID)
	if err != nil {
		return "", fmt.Errorf("contest not found: %w", err)
	}
	if !contest.Price.Equal(req.Price) {
		return "", fmt.Errorf("price does not match contest price: %w", common.ErrValidation)
	}
	if req.ContestName == "" {
		req.ContestName = contest.Name
	}

	registered, err := s.participationRepo.Exists(ctx, req.ContestID, req.UserEmail)
	if err != nil {
		return "", fmt.Errorf("failed to check participation: %w", err)
	}
	if registered {
		return "", fmt.Errorf("already registered: %w", common.ErrConflict)
	}

	cacheKey := ""
	if s.checkouts != nil && idempotencyKey != "" {
		cacheKey = req.UserEmail + ":" + idempotencyKey
		if url, err := s.checkouts.Get(ctx, cacheKey); err != nil {
			log.Printf("WARN: checkout idempotency lookup failed: %v", err)
		} else if url != "" {
			return url, nil
		}
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		ContestID:   req.ContestID,
		ContestName: req.ContestName,
		UserEmail:   req.UserEmail,
		AmountMinor: MinorUnits(req.Price),
		Currency:    model.CurrencyUSD,
		SuccessURL:  s.siteDomain + "/dashboard/payment-success?session_id=" + payment.SessionIDPlaceholder,
		CancelURL:   s.siteDomain + "/dashboard/payment-cancelled",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	if cacheKey != "" {
		winner, err := s.checkouts.Put(ctx, cacheKey, sess.URL)
		if err != nil {
			log.Printf("WARN: checkout idempotency store failed: %v", err)
			return sess.URL, nil
		}
		return winner, nil
	}
	return sess.URL, nil
}

// Reconcile confirms a checkout from the provider's own record and records
// it exactly once: one payment, one participation, one counter increment.
func (s *PaymentService) Reconcile(ctx context.Context, sessionID string) (*ReconcileResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required: %w", common.ErrBadRequest)
	}

	sess, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if sess.PaymentStatus != payment.StatusPaid {
		return &ReconcileResult{Success: false, Message: MsgPaymentPending, Status: sess.PaymentStatus}, nil
	}

	contestID := sess.Metadata[payment.MetaContestID]
	if contestID == "" || sess.CustomerEmail == "" || sess.PaymentIntentID == "" {
		return nil, fmt.Errorf("session %s lacks contest, customer or transaction: %w", sess.ID, common.ErrBadRequest)
	}

	now := s.now()
	rec := &model.PaymentRecord{
		ContestID:     contestID,
		ContestName:   sess.Metadata[payment.MetaContestName],
		UserEmail:     sess.CustomerEmail,
		Amount:        decimal.New(sess.AmountTotal, -2),
		Currency:      sess.Currency,
		TrackingID:    NewTrackingID(),
		TransactionID: sess.PaymentIntentID,
		RegisteredAt:  sess.Created,
	}
	if rec.RegisteredAt.IsZero() {
		rec.RegisteredAt = now
	}
	if rec.Currency == "" {
		rec.Currency = model.CurrencyUSD
	}
	txID := sess.PaymentIntentID
	part := &model.Participation{
		ID:            uuid.NewString(),
		ContestID:     contestID,
		UserEmail:     sess.CustomerEmail,
		TransactionID: &txID,
		RegisteredAt:  now,
	}

	out, err := s.paymentRepo.RecordPaidRegistration(ctx, rec, part)
	if errors.Is(err, common.ErrConflict) {
		return s.duplicate(ctx, txID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if !out.PaymentCreated {
		return s.duplicate(ctx, txID), nil
	}
	if !out.ParticipationCreated {
		log.Printf("WARN: payment %s recorded for %s on contest %s, participation already existed", txID, rec.UserEmail, contestID)
	} else if !out.CounterIncremented {
		log.Printf("WARN: payment %s recorded but contest %s is missing; counter not incremented", txID, contestID)
	}

	log.Printf("INFO: payment %s reconciled for %s on contest %s", txID, rec.UserEmail, contestID)
	return &ReconcileResult{Success: true, Message: MsgPaymentRecorded, PaymentInfo: rec}, nil
}

func (s *PaymentService) duplicate(ctx context.Context, transactionID string) *ReconcileResult {
	res := &ReconcileResult{Success: true, Message: MsgPaymentDuplicate, Duplicate: true}
	if rec, err := s.paymentRepo.FindByTransactionID(ctx, transactionID); err == nil {
		res.PaymentInfo = rec
	}
	return res
}

// HandleWebhook verifies a provider notification and reconciles the session it
// names. Events unrelated to checkout completion return a nil result.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, header http.Header) (*ReconcileResult, error) {
	event, err := s.provider.ParseWebhook(payload, header)
	if err != nil {
		return nil, err
	}
	switch event.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded:
	default:
		log.Printf("INFO: ignoring %s webhook event %s", s.provider.Name(), event.Type)
		return nil, nil
	}
	if event.SessionID == "" {
		return nil, fmt.Errorf("webhook event %s has no session: %w", event.ID, common.ErrBadRequest)
	}
	return s.Reconcile(ctx, event.SessionID)
}

// ListPayments returns the actor's own payments, or any user's (all users'
// when email is empty) for admins.
func (s *PaymentService) ListPayments(ctx context.Context, actor model.Actor, email string) ([]model.PaymentRecord, error) {
	if !actor.IsAdmin() {
		if email != "" && email != actor.Email {
			return nil, fmt.Errorf("cannot read another user's payments: %w", common.ErrForbidden)
		}
		email = actor.Email
	}
	recs, err := s.paymentRepo.List(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return recs, nil
}

// NewTrackingID returns a display code such as TRK-1A2B3C4D.
func NewTrackingID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRK-" + strings.ToUpper(id[:8])
}
