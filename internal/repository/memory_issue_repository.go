package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/civicsync/civic-dashboard/internal/models"
)

// MemoryIssueRepository keeps issues in process memory. It is constructed once per process
// and owns its collection; callers only ever see copies.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[string]*models.Issue
	order  []string
	seq    int64
	now    func() time.Time
}

// NewMemoryIssueRepository creates an empty in-memory issue repository.
func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{
		issues: make(map[string]*models.Issue),
		now:    time.Now,
	}
}

// Create adds a new issue at the end of the collection.
func (r *MemoryIssueRepository) Create(issue *models.Issue) error {
	if issue.ID == "" {
		return &models.ValidationError{Field: "id", Message: "issue id is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.issues[issue.ID]; exists {
		return fmt.Errorf("failed to create issue: id %q already exists", issue.ID)
	}

	r.seq++
	issue.Seq = r.seq
	if issue.ReportedAt.IsZero() {
		issue.ReportedAt = r.now()
	}
	if issue.UpdatedAt.IsZero() {
		issue.UpdatedAt = issue.ReportedAt
	}

	r.issues[issue.ID] = cloneIssue(issue)
	r.order = append(r.order, issue.ID)
	return nil
}

// GetByID returns a copy of the issue with the given id.
func (r *MemoryIssueRepository) GetByID(id string) (*models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, models.IssueNotFound(id)
	}
	return cloneIssue(issue), nil
}

// List returns every issue in insertion order.
func (r *MemoryIssueRepository) List() ([]models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issues := make([]models.Issue, 0, len(r.order))
	for _, id := range r.order {
		issues = append(issues, *cloneIssue(r.issues[id]))
	}
	return issues, nil
}

// ListByStatus returns the issues with the given status in insertion order.
func (r *MemoryIssueRepository) ListByStatus(status models.Status) ([]models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issues := make([]models.Issue, 0)
	for _, id := range r.order {
		if issue := r.issues[id]; issue.Status == status {
			issues = append(issues, *cloneIssue(issue))
		}
	}
	return issues, nil
}

// Vote adjusts the vote count by one in the given direction. No floor is enforced.
func (r *MemoryIssueRepository) Vote(id string, direction models.VoteDirection) (*models.Issue, error) {
	return r.AdjustVotes(id, direction.Unit())
}

// AdjustVotes adds delta to the vote count under a single lock.
func (r *MemoryIssueRepository) AdjustVotes(id string, delta int) (*models.Issue, error) {
	return r.update(id, func(issue *models.Issue) {
		issue.Votes += delta
	})
}

// SetStatus overwrites the status. Any transition is permitted.
func (r *MemoryIssueRepository) SetStatus(id string, status models.Status) (*models.Issue, error) {
	return r.update(id, func(issue *models.Issue) {
		issue.Status = status
	})
}

// Assign hands the issue to a department and forces it in progress.
func (r *MemoryIssueRepository) Assign(id, department string) (*models.Issue, error) {
	return r.update(id, func(issue *models.Issue) {
		issue.AssignedTo = department
		issue.Status = models.StatusInProgress
	})
}

// SetPriority records the authority's triage priority.
func (r *MemoryIssueRepository) SetPriority(id string, priority models.Priority) (*models.Issue, error) {
	return r.update(id, func(issue *models.Issue) {
		issue.Priority = priority
	})
}

// Count returns the number of stored issues.
func (r *MemoryIssueRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *MemoryIssueRepository) update(id string, mutate func(*models.Issue)) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, models.IssueNotFound(id)
	}

	mutate(issue)
	issue.UpdatedAt = r.now()
	return cloneIssue(issue), nil
}

func cloneIssue(issue *models.Issue) *models.Issue {
	c := *issue
	if issue.Latitude != nil {
		lat := *issue.Latitude
		c.Latitude = &lat
	}
	if issue.Longitude != nil {
		lng := *issue.Longitude
		c.Longitude = &lng
	}
	return &c
}
