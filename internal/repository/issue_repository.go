package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/civicsync/civic-dashboard/internal/models"
)

// IssueRepository handles issue persistence through GORM.
type IssueRepository struct {
	db *DB
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts a new issue after the current last one.
func (r *IssueRepository) Create(issue *models.Issue) error {
	if issue.ID == "" {
		return &models.ValidationError{Field: "id", Message: "issue id is required"}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.db.lockForAppend(tx, "issues"); err != nil {
			return err
		}
		var maxSeq int64
		if err := tx.Model(&models.Issue{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
			return fmt.Errorf("failed to read issue sequence: %w", err)
		}
		issue.Seq = maxSeq + 1
		if issue.ReportedAt.IsZero() {
			issue.ReportedAt = time.Now()
		}

		if err := tx.Create(issue).Error; err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an issue by ID.
func (r *IssueRepository) GetByID(id string) (*models.Issue, error) {
	return r.getByID(r.db.DB, id)
}

// List retrieves all issues in insertion order.
func (r *IssueRepository) List() ([]models.Issue, error) {
	var issues []models.Issue
	if err := r.db.Order("seq ASC").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, nil
}

// ListByStatus retrieves issues with the given status in insertion order.
func (r *IssueRepository) ListByStatus(status models.Status) ([]models.Issue, error) {
	var issues []models.Issue
	if err := r.db.Where("status = ?", status).Order("seq ASC").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("failed to list issues by status %s: %w", status, err)
	}
	return issues, nil
}

// Vote adjusts the vote count atomically by one in the given direction.
func (r *IssueRepository) Vote(id string, direction models.VoteDirection) (*models.Issue, error) {
	return r.AdjustVotes(id, direction.Unit())
}

// AdjustVotes adds delta to the vote count in a single statement.
func (r *IssueRepository) AdjustVotes(id string, delta int) (*models.Issue, error) {
	return r.update(id, map[string]interface{}{
		"votes": gorm.Expr("votes + ?", delta),
	})
}

// SetStatus overwrites the status of an issue.
func (r *IssueRepository) SetStatus(id string, status models.Status) (*models.Issue, error) {
	return r.update(id, map[string]interface{}{"status": status})
}

// Assign hands the issue to a department and forces it in progress.
func (r *IssueRepository) Assign(id, department string) (*models.Issue, error) {
	return r.update(id, map[string]interface{}{
		"assigned_to": department,
		"status":      models.StatusInProgress,
	})
}

// SetPriority records the triage priority of an issue.
func (r *IssueRepository) SetPriority(id string, priority models.Priority) (*models.Issue, error) {
	return r.update(id, map[string]interface{}{"priority": priority})
}

// Count returns the number of stored issues.
func (r *IssueRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Issue{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count issues: %w", err)
	}
	return count, nil
}

func (r *IssueRepository) update(id string, fields map[string]interface{}) (*models.Issue, error) {
	var updated *models.Issue
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.getByID(tx, id); err != nil {
			return err
		}

		fields["updated_at"] = time.Now()
		if err := tx.Model(&models.Issue{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update issue %s: %w", id, err)
		}

		issue, err := r.getByID(tx, id)
		if err != nil {
			return err
		}
		updated = issue
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *IssueRepository) getByID(db *gorm.DB, id string) (*models.Issue, error) {
	var issue models.Issue
	if err := db.Where("id = ?", id).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.IssueNotFound(id)
		}
		return nil, fmt.Errorf("failed to get issue by id %s: %w", id, err)
	}
	return &issue, nil
}
