package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CurrencyUSD = "usd"

	PaymentStatusPaid = "paid"
)

// PaymentRecord is the ledger entry for one completed checkout. TransactionID
// is unique across all records.
type PaymentRecord struct {
	ID            int64           `json:"_id"`
	ContestID     string          `json:"contestId"`
	ContestName   string          `json:"contestName"`
	UserEmail     string          `json:"userEmail"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	TrackingID    string          `json:"trackingId"`
	TransactionID string          `json:"transactionId"`
	RegisteredAt  time.Time       `json:"registeredAt"`
}

// PaidRegistrationOutcome reports which rows a reconciliation actually created.
type PaidRegistrationOutcome struct {
	PaymentCreated       bool
	ParticipationCreated bool
	CounterIncremented   bool
}

// DuplicateTransactionGroup lists payment ids sharing a transaction id, in
// insertion order.
type DuplicateTransactionGroup struct {
	TransactionID string
	IDs           []int64
}
