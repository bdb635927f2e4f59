// Package memory holds in-process implementations of the repository
// interfaces. They enforce the same uniqueness rules as the Postgres schema
// and are used for DB_DRIVER=memory and in tests.
package memory

import (
	"sync"

	"contesthub/internal/domain/model"
	"contesthub/internal/domain/repository"
)

type pairKey struct {
	contestID string
	userEmail string
}

// Store is the shared state behind every repository returned from it. One
// mutex guards all tables so multi-table writes are atomic.
type Store struct {
	mu sync.Mutex

	users          map[string]model.User
	contests       map[string]model.Contest
	contestOrder   []string
	participations []model.Participation
	registered     map[pairKey]struct{}
	submissions    []model.Submission
	submitted      map[pairKey]struct{}
	payments       []model.PaymentRecord
	nextPaymentID  int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]model.User),
		contests:   make(map[string]model.Contest),
		registered: make(map[pairKey]struct{}),
		submitted:  make(map[pairKey]struct{}),
	}
}

func (s *Store) Users() repository.UserRepository                   { return &userRepository{s: s} }
func (s *Store) Contests() repository.ContestRepository             { return &contestRepository{s: s} }
func (s *Store) Participations() repository.ParticipationRepository { return &participationRepository{s: s} }
func (s *Store) Submissions() repository.SubmissionRepository       { return &submissionRepository{s: s} }
func (s *Store) Payments() repository.PaymentRepository             { return &paymentRepository{s: s} }
