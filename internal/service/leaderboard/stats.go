package leaderboard

import (
	"context"
	"fmt"

	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/service/gamification"
)

// UserProgress is the presentation-ready gamification view of one user.
type UserProgress struct {
	User                 models.User       `json:"user"`
	Rank                 int               `json:"rank"`
	LevelProgressPercent float64           `json:"level_progress_percent"`
	PointsToNextLevel    int               `json:"points_to_next_level"`
	Achievements         []AchievementView `json:"achievements"`
	UnlockedCount        int               `json:"unlocked_count"`
}

// AchievementView adds the computed progress percentage to an achievement.
type AchievementView struct {
	models.Achievement
	ProgressPercent *float64 `json:"progress_percent,omitempty"`
}

// GetUserProgress returns rank, level progress and achievements for a user.
func (s *Service) GetUserProgress(ctx context.Context, userID string) (*UserProgress, error) {
	ranked, err := s.rankedUsers(ctx)
	if err != nil {
		return nil, err
	}

	var user *models.User
	for i := range ranked {
		if ranked[i].ID == userID {
			user = &ranked[i]
			break
		}
	}
	if user == nil {
		return nil, models.UserNotFound(userID)
	}

	achievements, err := s.evaluator.Evaluate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate achievements: %w", err)
	}

	progress := &UserProgress{
		User:                 *user,
		Rank:                 user.Rank,
		LevelProgressPercent: gamification.LevelProgressPercent(user.Points),
		PointsToNextLevel:    gamification.PointsToNextLevel(user.Points),
		Achievements:         make([]AchievementView, 0, len(achievements)),
	}

	for _, a := range achievements {
		view := AchievementView{Achievement: a}
		if a.Progress != nil {
			if pct, ok := gamification.AchievementProgressPercent(*a.Progress, a.MaxProgress); ok {
				view.ProgressPercent = &pct
			}
		}
		if a.Unlocked {
			progress.UnlockedCount++
		}
		progress.Achievements = append(progress.Achievements, view)
	}

	s.log.Debug().
		Str("user_id", userID).
		Int("rank", user.Rank).
		Int("unlocked", progress.UnlockedCount).
		Msg("Computed user progress")

	return progress, nil
}
