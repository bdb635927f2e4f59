package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContestStatus string

const (
	ContestPending   ContestStatus = "pending"
	ContestApproved  ContestStatus = "approved"
	ContestRejected  ContestStatus = "rejected"
	ContestCompleted ContestStatus = "completed"
)

// PopularContestsLimit is how many approved contests the popular listing returns.
const PopularContestsLimit = 6

type Contest struct {
	ID                string          `json:"_id"`
	Name              string          `json:"name"`
	Slug              string          `json:"slug"`
	Image             string          `json:"image,omitempty"`
	Description       string          `json:"description,omitempty"`
	Type              string          `json:"type"`
	Price             decimal.Decimal `json:"price"`
	PrizeMoney        decimal.Decimal `json:"prizeMoney"`
	TaskInstruction   string          `json:"taskInstruction,omitempty"`
	Deadline          *time.Time      `json:"deadline,omitempty"`
	CreatorEmail      string          `json:"creatorEmail"`
	CreatorName       string          `json:"creatorName,omitempty"`
	Status            ContestStatus   `json:"status"`
	ParticipantsCount int             `json:"participantsCount"`
	WinnerEmail       *string         `json:"winnerEmail,omitempty"`
	WinnerName        *string         `json:"winnerName,omitempty"`
	WinnerPhoto       *string         `json:"winnerPhoto,omitempty"`
	WinDate           *time.Time      `json:"winDate,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// HasWinner reports whether a winner has already been recorded.
func (c *Contest) HasWinner() bool {
	return c.WinnerEmail != nil && *c.WinnerEmail != ""
}

// ContestPatch is the generic update. Nil fields are left untouched.
type ContestPatch struct {
	Name            *string          `json:"name,omitempty"`
	Image           *string          `json:"image,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Type            *string          `json:"type,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	PrizeMoney      *decimal.Decimal `json:"prizeMoney,omitempty"`
	TaskInstruction *string          `json:"taskInstruction,omitempty"`
	Deadline        *time.Time       `json:"deadline,omitempty"`
	Status          *ContestStatus   `json:"status,omitempty"`

	Slug *string `json:"-"` // derived from Name by the service
}

// IsEmpty reports whether the patch changes nothing.
func (p ContestPatch) IsEmpty() bool {
	return p.Name == nil && p.Image == nil && p.Description == nil && p.Type == nil &&
		p.Price == nil && p.PrizeMoney == nil && p.TaskInstruction == nil &&
		p.Deadline == nil && p.Status == nil && p.Slug == nil
}

type Winner struct {
	Email string `json:"winnerEmail"`
	Name  string `json:"winnerName"`
	Photo string `json:"winnerPhoto"`
}

// ContestFilter narrows contest listings. Zero values mean "any".
type ContestFilter struct {
	CreatorEmail string
	WinnerEmail  string
	Status       ContestStatus
	Type         string
	OrderBy      ContestOrder
	Limit        int
}

type ContestOrder int

const (
	OrderNone ContestOrder = iota
	OrderNewestFirst
	OrderMostParticipants
)
