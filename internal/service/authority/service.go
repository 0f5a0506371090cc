// Package authority implements the role-gated triage workflow: status changes, assignment and priority.
package authority

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/notify"
	"github.com/civicsync/civic-dashboard/internal/repository"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// IssueRepository is the part of the issue store the workflow mutates.
type IssueRepository interface {
	SetStatus(id string, status models.Status) (*models.Issue, error)
	Assign(id, department string) (*models.Issue, error)
	SetPriority(id string, priority models.Priority) (*models.Issue, error)
}

// Service performs authority actions and confirms each one through the notifier.
// It is permissive by construction: resolved issues can be reassigned and any status transition is allowed.
type Service struct {
	issues      IssueRepository
	notifier    notify.Notifier
	departments []string
	log         *logger.Logger
}

// NewService creates a new authority service with concrete dependencies.
func NewService(issues repository.IssueStore, notifier notify.Notifier, departments []string, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(issues, notifier, departments, log)
}

// NewServiceWithInterfaces creates a new authority service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(issues IssueRepository, notifier notify.Notifier, departments []string, log *logger.Logger) *Service {
	return &Service{
		issues:      issues,
		notifier:    notifier,
		departments: append([]string(nil), departments...),
		log:         log,
	}
}

// Departments returns the departments issues can be assigned to.
func (s *Service) Departments() []string {
	return append([]string(nil), s.departments...)
}

// UpdateStatus overwrites an issue's status.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, issueID string, status models.Status) (*models.Issue, error) {
	if err := requireAuthority(actor); err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(string(status))
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.SetStatus(issueID, status)
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusChange(string(status))
	s.log.Info().
		Str("issue_id", issueID).
		Str("user_id", actor.UserID).
		Str("status", string(status)).
		Msg("Issue status updated")

	notify.Dispatch(ctx, s.notifier, s.log, notify.Notification{
		Title:       "Status Updated",
		Description: fmt.Sprintf("Issue status changed to %s", status),
		Variant:     notify.VariantDefault,
	})
	return issue, nil
}

// Assign hands an issue to a department. The issue always ends up in progress.
func (s *Service) Assign(ctx context.Context, actor models.Actor, issueID, department string) (*models.Issue, error) {
	if err := requireAuthority(actor); err != nil {
		return nil, err
	}
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, &models.ValidationError{Field: "department", Message: "department is required"}
	}

	issue, err := s.issues.Assign(issueID, department)
	if err != nil {
		return nil, err
	}

	metrics.RecordAssignment(department)
	s.log.Info().
		Str("issue_id", issueID).
		Str("user_id", actor.UserID).
		Str("department", department).
		Bool("known_department", s.isKnownDepartment(department)).
		Msg("Issue assigned")

	notify.Dispatch(ctx, s.notifier, s.log, notify.Notification{
		Title:       "Issue Assigned",
		Description: fmt.Sprintf("Issue assigned to %s", department),
		Variant:     notify.VariantDefault,
	})
	return issue, nil
}

// SetPriority records the triage priority of an issue.
func (s *Service) SetPriority(ctx context.Context, actor models.Actor, issueID string, priority models.Priority) (*models.Issue, error) {
	if err := requireAuthority(actor); err != nil {
		return nil, err
	}
	priority, err := models.ParsePriority(string(priority))
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.SetPriority(issueID, priority)
	if err != nil {
		return nil, err
	}

	metrics.RecordPriorityChange(string(priority))
	s.log.Info().
		Str("issue_id", issueID).
		Str("user_id", actor.UserID).
		Str("priority", string(priority)).
		Msg("Issue priority updated")

	notify.Dispatch(ctx, s.notifier, s.log, notify.Notification{
		Title:       "Priority Updated",
		Description: fmt.Sprintf("Issue priority changed to %s", priority),
		Variant:     notify.VariantDefault,
	})
	return issue, nil
}

func (s *Service) isKnownDepartment(name string) bool {
	for _, d := range s.departments {
		if d == name {
			return true
		}
	}
	return false
}

func requireAuthority(actor models.Actor) error {
	if !actor.IsAuthority() {
		return fmt.Errorf("%w: authority role required", models.ErrForbidden)
	}
	return nil
}
