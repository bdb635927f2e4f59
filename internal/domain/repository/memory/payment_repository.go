package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"contesthub/internal/common"
	"contesthub/internal/domain/model"
)

type paymentRepository struct {
	s *Store
}

func (r *paymentRepository) RecordPaidRegistration(_ context.Context, rec *model.PaymentRecord, p *model.Participation) (model.PaidRegistrationOutcome, error) {
	var out model.PaidRegistrationOutcome

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.payments {
		if existing.TransactionID == rec.TransactionID {
			return out, nil
		}
	}

	r.s.nextPaymentID++
	rec.ID = r.s.nextPaymentID
	r.s.payments = append(r.s.payments, *rec)
	out.PaymentCreated = true

	if !r.s.insertParticipationLocked(*p) {
		return out, nil
	}
	out.ParticipationCreated = true

	if c, ok := r.s.contests[rec.ContestID]; ok {
		c.ParticipantsCount++
		c.UpdatedAt = time.Now()
		r.s.contests[rec.ContestID] = c
		out.CounterIncremented = true
	}
	return out, nil
}

func (r *paymentRepository) FindByTransactionID(_ context.Context, transactionID string) (*model.PaymentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.payments {
		if p.TransactionID == transactionID {
			rec := p
			return &rec, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *paymentRepository) List(_ context.Context, userEmail string) ([]model.PaymentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []model.PaymentRecord{}
	for _, p := range r.s.payments {
		if userEmail == "" || p.UserEmail == userEmail {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}

// SeedPayment appends rec without the transaction id check, the way rows
// written before the unique index existed look. It returns the assigned id.
func (s *Store) SeedPayment(rec model.PaymentRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPaymentID++
	rec.ID = s.nextPaymentID
	s.payments = append(s.payments, rec)
	return rec.ID
}

func (r *paymentRepository) DuplicateTransactionGroups(context.Context) ([]model.DuplicateTransactionGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return duplicateGroups(r.s.payments), nil
}

func (r *paymentRepository) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.payments[:0]
	var deleted int64
	for _, p := range r.s.payments {
		if _, ok := drop[p.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	r.s.payments = kept
	return deleted, nil
}

func (r *paymentRepository) EnsureTransactionIDUnique(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if groups := duplicateGroups(r.s.payments); len(groups) > 0 {
		return fmt.Errorf("%d duplicate transaction ids remain: %w", len(groups), common.ErrConflict)
	}
	return nil
}

func duplicateGroups(payments []model.PaymentRecord) []model.DuplicateTransactionGroup {
	byTx := make(map[string][]int64)
	var order []string
	for _, p := range payments {
		if _, seen := byTx[p.TransactionID]; !seen {
			order = append(order, p.TransactionID)
		}
		byTx[p.TransactionID] = append(byTx[p.TransactionID], p.ID)
	}

	var groups []model.DuplicateTransactionGroup
	for _, txID := range order {
		ids := byTx[txID]
		if len(ids) < 2 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		groups = append(groups, model.DuplicateTransactionGroup{TransactionID: txID, IDs: ids})
	}
	return groups
}
