// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/repository"
	"github.com/civicsync/civic-dashboard/internal/service/gamification"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// UserRepository interface for user operations.
type UserRepository interface {
	List() ([]models.User, error)
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	UserID         string   `json:"user_id"`
	Name           string   `json:"name"`
	Avatar         string   `json:"avatar,omitempty"`
	Points         int      `json:"points"`
	Level          int      `json:"level"`
	IssuesReported int      `json:"issues_reported"`
	IssuesResolved int      `json:"issues_resolved"`
	Badges         []string `json:"badges"`
	Rank           int      `json:"rank"`
}

// Service handles leaderboard generation and user progress.
type Service struct {
	userRepo  UserRepository
	evaluator *gamification.Evaluator
	log       *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(userRepo repository.UserStore, evaluator *gamification.Evaluator, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(userRepo, evaluator, log)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, evaluator *gamification.Evaluator, log *logger.Logger) *Service {
	return &Service{
		userRepo:  userRepo,
		evaluator: evaluator,
		log:       log,
	}
}

// GetLeaderboard returns users ranked by points. limit <= 0 returns everyone.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	ranked, err := s.rankedUsers(ctx)
	if err != nil {
		return nil, err
	}

	// Apply limit
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]Entry, 0, len(ranked))
	for _, u := range ranked {
		badges := u.Badges
		if badges == nil {
			badges = []string{}
		}
		entries = append(entries, Entry{
			UserID:         u.ID,
			Name:           u.Name,
			Avatar:         u.Avatar,
			Points:         u.Points,
			Level:          u.Level,
			IssuesReported: u.IssuesReported,
			IssuesResolved: u.IssuesResolved,
			Badges:         badges,
			Rank:           u.Rank,
		})
	}
	return entries, nil
}

func (s *Service) rankedUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return gamification.Rank(users), nil
}
