// Package scheduler provides the daily digest of issues still waiting for triage.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/civicsync/civic-dashboard/internal/config"
	"github.com/civicsync/civic-dashboard/internal/mattermost"
	prommetrics "github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/repository"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// IssueLister interface for reading issues by status.
type IssueLister interface {
	ListByStatus(status models.Status) ([]models.Issue, error)
}

// DigestSender delivers the pending-issue digest.
type DigestSender interface {
	SendPendingDigest(ctx context.Context, issues []models.Issue, now time.Time) error
}

// Service handles daily digest scheduling.
type Service struct {
	config *config.SchedulerConfig
	issues IssueLister
	sender DigestSender
	log    *logger.Logger
	cron   *cron.Cron
	now    func() time.Time
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.SchedulerConfig,
	issues repository.IssueStore,
	mattermostClient *mattermost.Client,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(cfg, issues, mattermostClient, log)
}

// NewServiceWithInterfaces creates a new scheduler service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(cfg *config.SchedulerConfig, issues IssueLister, sender DigestSender, log *logger.Logger) *Service {
	return &Service{
		config: cfg,
		issues: issues,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.runPendingDigest(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register pending digest job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Timezone).
		Str("time", s.config.Time).
		Bool("skip_weekends", s.config.SkipWeekends).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression generates a cron expression from config.
func (s *Service) buildCronExpression() (string, error) {
	// Parse time string (format: "HH:MM")
	parts := strings.Split(s.config.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	if s.config.SkipWeekends {
		return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// runPendingDigest executes the digest job.
func (s *Service) runPendingDigest(ctx context.Context) {
	start := time.Now()

	defer func() {
		prommetrics.ObserveSchedulerJobDuration(time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun()
	}()

	s.log.Info().Msg("Running pending digest job")

	pending, err := s.refreshStatusGauges()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list issues")
		prommetrics.RecordSchedulerJobRun("error")
		return
	}

	now := s.now()
	minAge := time.Duration(s.config.MinPendingAge) * time.Hour
	stale := selectStale(pending, minAge, now)

	s.log.Info().
		Int("pending", len(pending)).
		Int("stale", len(stale)).
		Dur("min_age", minAge).
		Msg("Selected stale pending issues")

	prommetrics.SetSchedulerPendingIssues(len(stale))

	if len(stale) == 0 {
		s.log.Debug().Msg("No stale pending issues to notify about")
		prommetrics.RecordSchedulerJobRun("success")
		return
	}

	sendStart := time.Now()
	if err := s.sender.SendPendingDigest(ctx, stale, now); err != nil {
		s.log.Error().
			Err(err).
			Dur("send_duration", time.Since(sendStart)).
			Msg("Failed to send pending digest")
		prommetrics.RecordSchedulerJobRun("error")
		return
	}

	prommetrics.RecordSchedulerJobRun("success")

	s.log.Info().
		Int("issue_count", len(stale)).
		Dur("total_duration", time.Since(start)).
		Msg("Successfully sent pending digest")
}
