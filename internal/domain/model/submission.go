package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "pending"
)

type Submission struct {
	ID          string           `json:"_id"`
	ContestID   string           `json:"contestId"`
	UserEmail   string           `json:"userEmail"`
	TaskLink    string           `json:"taskLink"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submittedAt"`
}
