package service

import (
	"context"
	"fmt"

	"contesthub/internal/domain/model"
	"contesthub/internal/domain/repository"
)

type LeaderboardService struct {
	userRepo repository.UserRepository
}

func NewLeaderboardService(userRepo repository.UserRepository) *LeaderboardService {
	return &LeaderboardService{userRepo: userRepo}
}

// Top ranks users with at least one win, most wins first.
func (s *LeaderboardService) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	users, err := s.userRepo.TopByWins(ctx, model.LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	entries := make([]model.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = model.LeaderboardEntry{
			Rank:     i + 1,
			Email:    u.Email,
			Name:     u.Name,
			PhotoURL: u.PhotoURL,
			WinCount: u.WinCount,
		}
	}
	return entries, nil
}
