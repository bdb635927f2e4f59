package model

import "time"

type Participation struct {
	ID            string    `json:"_id"`
	ContestID     string    `json:"contestId"`
	UserEmail     string    `json:"userEmail"`
	TransactionID *string   `json:"transactionId,omitempty"`
	RegisteredAt  time.Time `json:"registeredAt"`
}

// ParticipatedContest is a contest decorated with the caller's registration
// time. Contest is nil when the contest was deleted after registration.
type ParticipatedContest struct {
	*Contest
	ContestID    string    `json:"contestId"`
	RegisteredAt time.Time `json:"registeredAt"`
}
