// Package stats summarizes the issue list for the dashboard header cards.
package stats

import (
	"sort"

	"github.com/civicsync/civic-dashboard/internal/models"
)

// DefaultTopN is the number of top-voted issues reported when none is requested.
const DefaultTopN = 5

// Summary holds dashboard totals.
type Summary struct {
	Total      int                     `json:"total"`
	Open       int                     `json:"open"`
	ByStatus   map[models.Status]int   `json:"byStatus"`
	ByCategory map[models.Category]int `json:"byCategory"`
	Unassigned int                     `json:"unassigned"`
	TotalVotes int                     `json:"totalVotes"`
	TopVoted   []models.Issue          `json:"topVoted"`
}

// Summarize computes totals over issues. Every known status and category is present in the maps.
// TopVoted holds up to topN issues by votes, ties keeping input order.
func Summarize(issues []models.Issue, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	s := Summary{
		Total:      len(issues),
		ByStatus:   make(map[models.Status]int, len(models.Statuses)),
		ByCategory: make(map[models.Category]int, len(models.Categories)),
	}
	for _, st := range models.Statuses {
		s.ByStatus[st] = 0
	}
	for _, c := range models.Categories {
		s.ByCategory[c] = 0
	}

	for i := range issues {
		issue := &issues[i]
		s.ByStatus[issue.Status]++
		s.ByCategory[issue.Category]++
		s.TotalVotes += issue.Votes
		if issue.IsOpen() {
			s.Open++
			if !issue.IsAssigned() {
				s.Unassigned++
			}
		}
	}

	sorted := make([]models.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Votes > sorted[j].Votes
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	s.TopVoted = sorted

	return s
}
