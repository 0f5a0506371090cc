// Package submission accepts citizen issue reports.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/civicsync/civic-dashboard/internal/config"
	"github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/notify"
	"github.com/civicsync/civic-dashboard/internal/repository"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// IssueCreator is the part of the issue store submission needs.
type IssueCreator interface {
	Create(issue *models.Issue) error
}

// RateLimiter gates submissions per user. Only stored reports are recorded.
type RateLimiter interface {
	Check(ctx context.Context, userID string) error
	Record(ctx context.Context, userID string) error
}

// Result is delivered exactly once by SubmitAsync.
type Result struct {
	Issue *models.Issue
	Err   error
}

// Service validates drafts and turns them into pending issues.
type Service struct {
	issues        IssueCreator
	limiter       RateLimiter
	notifier      notify.Notifier
	maxPhotos     int
	maxPhotoBytes int64
	timeout       time.Duration
	newID         func() string
	now           func() time.Time
	log           *logger.Logger
}

// NewService creates a new submission service with concrete dependencies.
func NewService(
	issues repository.IssueStore,
	limiter *Limiter,
	notifier notify.Notifier,
	cfg *config.SubmissionConfig,
	log *logger.Logger,
) *Service {
	var rl RateLimiter
	if limiter != nil {
		rl = limiter
	}
	return NewServiceWithInterfaces(issues, rl, notifier, cfg, log)
}

// NewServiceWithInterfaces creates a new submission service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	issues IssueCreator,
	limiter RateLimiter,
	notifier notify.Notifier,
	cfg *config.SubmissionConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		issues:        issues,
		limiter:       limiter,
		notifier:      notifier,
		maxPhotos:     cfg.MaxPhotos,
		maxPhotoBytes: cfg.MaxPhotoBytes(),
		timeout:       cfg.TimeoutDuration(),
		newID:         uuid.NewString,
		now:           time.Now,
		log:           log,
	}
}

// Submit validates the draft, applies the rate limit and stores a new pending issue with zero votes.
// On failure nothing is stored, so the same draft can be resubmitted.
func (s *Service) Submit(ctx context.Context, actor models.Actor, draft models.IssueDraft) (*models.Issue, error) {
	start := s.now()

	if err := draft.Validate(s.maxPhotos, s.maxPhotoBytes); err != nil {
		metrics.RecordSubmissionRejected("validation")
		s.log.Debug().Err(err).Str("user_id", actor.UserID).Msg("Submission rejected")
		s.notifyRejected(ctx, err)
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, actor.UserID); err != nil {
			if errors.Is(err, models.ErrRateLimited) {
				metrics.RecordSubmissionRejected("rate_limited")
				s.log.Warn().Str("user_id", actor.UserID).Msg("Submission rate limited")
				notify.Dispatch(ctx, s.notifier, s.log, notify.Notification{
					Title:       "Too many reports",
					Description: "You have reached the daily report limit. Please try again later.",
					Variant:     notify.VariantDestructive,
				})
			}
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("submission cancelled: %w", err)
	}

	issue := draft.ToIssue(s.newID(), actor.UserID, s.now())
	if err := s.issues.Create(issue); err != nil {
		s.log.Error().Err(err).Str("user_id", actor.UserID).Msg("Failed to store issue")
		notify.Dispatch(ctx, s.notifier, s.log, notify.Notification{
			Title:       "Submission failed",
			Description: "Your issue could not be saved. Please try again.",
			Variant:     notify.VariantDestructive,
		})
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Record(ctx, actor.UserID); err != nil {
			s.log.Warn().Err(err).Str("user_id", actor.UserID).Msg("Failed to record submission against rate limit")
		}
	}

	metrics.RecordIssueReported(string(issue.Category))
	metrics.ObserveSubmissionDuration(s.now().Sub(start).Seconds())
	s.log.Info().
		Str("issue_id", issue.ID).
		Str("user_id", actor.UserID).
		Str("category", string(issue.Category)).
		Int("photos", issue.PhotoCount).
		Msg("Issue reported")

	notify.Dispatch(ctx, s.notifier, s.log, notify.Notification{
		Title:       "Issue reported successfully!",
		Description: "Your issue has been submitted and will be reviewed by the authorities.",
		Variant:     notify.VariantDefault,
	})
	return issue, nil
}

// SubmitAsync runs Submit in the background under the configured timeout.
// The returned channel receives exactly one Result and is then closed.
func (s *Service) SubmitAsync(ctx context.Context, actor models.Actor, draft models.IssueDraft) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		issue, err := s.Submit(ctx, actor, draft)
		out <- Result{Issue: issue, Err: err}
	}()
	return out
}

func (s *Service) notifyRejected(ctx context.Context, err error) {
	n := notify.Notification{
		Title:       "Missing information",
		Description: "Please fill in all required fields.",
		Variant:     notify.VariantDestructive,
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) && verr.Message != models.MsgRequiredFieldMissing {
		n.Title = "Invalid submission"
		n.Description = verr.Error()
	}
	notify.Dispatch(ctx, s.notifier, s.log, n)
}
