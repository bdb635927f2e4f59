package model

// LeaderboardLimit caps the leaderboard; there is no pagination.
const LeaderboardLimit = 10

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	PhotoURL string `json:"photoURL,omitempty"`
	WinCount int    `json:"winCount"`
}
