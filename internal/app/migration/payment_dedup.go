// Package migration holds the one-time data repairs run during bootstrap,
// before the HTTP server accepts traffic.
package migration

import (
	"context"
	"fmt"
	"log"

	"contesthub/internal/domain/model"
)

// PaymentDeduper is the slice of the payment repository the dedup pass needs.
type PaymentDeduper interface {
	DuplicateTransactionGroups(ctx context.Context) ([]model.DuplicateTransactionGroup, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	EnsureTransactionIDUnique(ctx context.Context) error
}

// Locker serialises the pass across replicas booting at the same time.
type Locker interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}

type Report struct {
	Groups  int
	Deleted int64
}

// DedupPayments collapses every group of payments sharing a transaction id to
// its first-inserted record (lowest id). Running it again finds nothing.
func DedupPayments(ctx context.Context, repo PaymentDeduper) (Report, error) {
	var rep Report

	groups, err := repo.DuplicateTransactionGroups(ctx)
	if err != nil {
		return rep, fmt.Errorf("failed to find duplicate payments: %w", err)
	}

	var doomed []int64
	for _, g := range groups {
		if len(g.IDs) < 2 {
			continue
		}
		keep := g.IDs[0]
		for _, id := range g.IDs[1:] {
			if id < keep {
				doomed = append(doomed, keep)
				keep = id
				continue
			}
			doomed = append(doomed, id)
		}
		rep.Groups++
		log.Printf("INFO: transaction %s has %d payment records, keeping %d", g.TransactionID, len(g.IDs), keep)
	}
	if len(doomed) == 0 {
		return rep, nil
	}

	rep.Deleted, err = repo.DeleteByIDs(ctx, doomed)
	if err != nil {
		return rep, fmt.Errorf("failed to delete duplicate payments: %w", err)
	}
	return rep, nil
}

// Run deduplicates payments and then installs the unique transaction id
// constraint. lock may be nil when only one process can be running.
func Run(ctx context.Context, repo PaymentDeduper, lock Locker) error {
	step := func(ctx context.Context) error {
		rep, err := DedupPayments(ctx, repo)
		if err != nil {
			return err
		}
		if rep.Deleted > 0 {
			log.Printf("WARN: removed %d duplicate payment records across %d transactions", rep.Deleted, rep.Groups)
		} else {
			log.Println("INFO: no duplicate payment records found")
		}
		if err := repo.EnsureTransactionIDUnique(ctx); err != nil {
			return fmt.Errorf("failed to enforce unique transaction ids: %w", err)
		}
		return nil
	}

	if lock == nil {
		return step(ctx)
	}
	return lock.WithLock(ctx, step)
}
