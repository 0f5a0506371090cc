package voting

import (
	"context"
	"fmt"
	"sync"

	"github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/repository"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// IssueRepository is the part of the issue store voting needs.
type IssueRepository interface {
	GetByID(id string) (*models.Issue, error)
	AdjustVotes(id string, delta int) (*models.Issue, error)
}

// Result is the outcome of one vote click.
type Result struct {
	Issue    *models.Issue   `json:"issue"`
	UserVote models.UserVote `json:"user_vote"`
	Delta    int             `json:"delta"`
}

// Service applies the toggle rule for a user and forwards the delta to the issue store.
type Service struct {
	issues IssueRepository
	state  StateStore
	rule   Rule
	log    *logger.Logger

	// Serializes read-toggle-write so concurrent clicks from one user cannot double count.
	mu sync.Mutex
}

// NewService creates a new voting service with concrete dependencies.
func NewService(issues repository.IssueStore, state StateStore, rule Rule, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(issues, state, rule, log)
}

// NewServiceWithInterfaces creates a new voting service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(issues IssueRepository, state StateStore, rule Rule, log *logger.Logger) *Service {
	return &Service{
		issues: issues,
		state:  state,
		rule:   rule,
		log:    log,
	}
}

// Cast toggles the actor's vote on an issue.
// Unknown issues fail with NotFoundError before any state changes.
func (s *Service) Cast(ctx context.Context, actor models.Actor, issueID string, direction models.VoteDirection) (*Result, error) {
	if actor.UserID == "" {
		return nil, &models.ValidationError{Field: "user", Message: "a user id is required to vote"}
	}
	if _, err := models.ParseVoteDirection(string(direction)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issue, err := s.issues.GetByID(issueID)
	if err != nil {
		return nil, err
	}

	current, err := s.state.Get(ctx, actor.UserID, issueID)
	if err != nil {
		return nil, err
	}

	next, delta := s.rule.Toggle(current, direction)

	if delta != 0 {
		issue, err = s.issues.AdjustVotes(issueID, delta)
		if err != nil {
			return nil, fmt.Errorf("failed to apply vote: %w", err)
		}
	}

	if err := s.state.Set(ctx, actor.UserID, issueID, next); err != nil {
		if delta != 0 {
			s.revert(issueID, delta)
		}
		return nil, err
	}

	metrics.RecordVote(string(direction), string(next))
	s.log.Info().
		Str("issue_id", issueID).
		Str("user_id", actor.UserID).
		Str("direction", string(direction)).
		Str("user_vote", string(next)).
		Int("votes", issue.Votes).
		Msg("Vote toggled")

	return &Result{Issue: issue, UserVote: next, Delta: delta}, nil
}

// Current returns the actor's active vote on an issue.
func (s *Service) Current(ctx context.Context, actor models.Actor, issueID string) (models.UserVote, error) {
	if actor.UserID == "" {
		return models.UserVoteNone, nil
	}
	return s.state.Get(ctx, actor.UserID, issueID)
}

// revert undoes an applied delta when the user's vote state could not be saved.
func (s *Service) revert(issueID string, delta int) {
	if _, err := s.issues.AdjustVotes(issueID, -delta); err != nil {
		s.log.Error().
			Err(err).
			Str("issue_id", issueID).
			Int("delta", delta).
			Msg("Failed to revert vote after state write error")
	}
}
