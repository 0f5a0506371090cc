// Package gamification derives level progress, rankings and achievements from user records.
package gamification

import (
	"sort"

	"github.com/civicsync/civic-dashboard/internal/models"
)

// PointsPerLevel is the width of one level band.
const PointsPerLevel = 500

// LevelProgressPercent returns progress within the current level band, 0 to 100 (exclusive).
func LevelProgressPercent(points int) float64 {
	return float64(bandPoints(points)) / (PointsPerLevel / 100)
}

// PointsToNextLevel returns the points missing to complete the current band. Always between 1 and PointsPerLevel.
func PointsToNextLevel(points int) int {
	return PointsPerLevel - bandPoints(points)
}

// AchievementProgressPercent returns 100*progress/maxProgress, capped at 100.
// ok is false when the achievement is binary (no maxProgress).
func AchievementProgressPercent(progress int, maxProgress *int) (percent float64, ok bool) {
	if maxProgress == nil || *maxProgress <= 0 {
		return 0, false
	}
	if progress > *maxProgress {
		progress = *maxProgress
	}
	if progress < 0 {
		progress = 0
	}
	return 100 * float64(progress) / float64(*maxProgress), true
}

// Rank orders users by points, highest first, and sets Rank starting at 1.
// Ties keep their input order and still receive distinct consecutive ranks.
func Rank(users []models.User) []models.User {
	ranked := make([]models.User, len(users))
	copy(ranked, users)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// bandPoints is points mod PointsPerLevel, kept non-negative.
func bandPoints(points int) int {
	r := points % PointsPerLevel
	if r < 0 {
		r += PointsPerLevel
	}
	return r
}
