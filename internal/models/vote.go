package models

import (
	"fmt"
	"strings"
)

// VoteDirection is the direction of a single vote click.
type VoteDirection string

// VoteDirection constants.
const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Unit returns the vote count change for one vote in this direction.
func (d VoteDirection) Unit() int {
	if d == VoteDown {
		return -1
	}
	return 1
}

// ParseVoteDirection converts a raw value into a VoteDirection.
func ParseVoteDirection(raw string) (VoteDirection, error) {
	switch d := VoteDirection(strings.ToLower(strings.TrimSpace(raw))); d {
	case VoteUp, VoteDown:
		return d, nil
	default:
		return "", &ValidationError{Field: "direction", Message: fmt.Sprintf("unknown vote direction %q", raw)}
	}
}

// UserVote is a single user's active vote on a single issue.
type UserVote string

// UserVote constants.
const (
	UserVoteNone UserVote = "none"
	UserVoteUp   UserVote = "up"
	UserVoteDown UserVote = "down"
)

// VoteFor maps a direction to the matching active vote.
func VoteFor(d VoteDirection) UserVote {
	if d == VoteDown {
		return UserVoteDown
	}
	return UserVoteUp
}
