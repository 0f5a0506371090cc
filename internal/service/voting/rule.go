// Package voting applies per-user vote toggling on top of the issue store.
package voting

import "github.com/civicsync/civic-dashboard/internal/models"

// Rule computes vote toggles.
//
// Clicking the active direction again undoes the vote. Switching directly from one
// direction to the other applies a single unit by default, which leaves the previous
// vote counted; ReverseOnSwitch applies two units so the switch fully reverses it.
type Rule struct {
	ReverseOnSwitch bool
}

// Toggle returns the user's new vote and the change to apply to the issue's vote count.
func (r Rule) Toggle(current models.UserVote, direction models.VoteDirection) (models.UserVote, int) {
	if current == "" {
		current = models.UserVoteNone
	}

	unit := direction.Unit()
	if current == models.VoteFor(direction) {
		return models.UserVoteNone, -unit
	}

	delta := unit
	if r.ReverseOnSwitch && current != models.UserVoteNone {
		delta = 2 * unit
	}
	return models.VoteFor(direction), delta
}
