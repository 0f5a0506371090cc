package scheduler

import (
	"fmt"
	"sort"
	"time"

	prommetrics "github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
)

// selectStale returns unassigned pending issues reported at least minAge before now, oldest first.
func selectStale(issues []models.Issue, minAge time.Duration, now time.Time) []models.Issue {
	var stale []models.Issue
	for _, issue := range issues {
		if issue.Status != models.StatusPending || issue.IsAssigned() {
			continue
		}
		if now.Sub(issue.ReportedAt) >= minAge {
			stale = append(stale, issue)
		}
	}

	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].ReportedAt.Before(stale[j].ReportedAt)
	})
	return stale
}

// refreshStatusGauges publishes the current per-status issue counts and returns the pending issues.
func (s *Service) refreshStatusGauges() ([]models.Issue, error) {
	var pending []models.Issue
	for _, status := range models.Statuses {
		issues, err := s.issues.ListByStatus(status)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s issues: %w", status, err)
		}
		prommetrics.SetIssuesByStatus(string(status), len(issues))
		if status == models.StatusPending {
			pending = issues
		}
	}
	return pending, nil
}
