package repository

import (
	"github.com/civicsync/civic-dashboard/internal/models"
)

// IssueStore is the canonical owner of issues. All mutations flow through it.
// Implementations keep List in insertion order and return NotFoundError for unknown ids,
// leaving the store unchanged.
type IssueStore interface {
	Create(issue *models.Issue) error
	GetByID(id string) (*models.Issue, error)
	List() ([]models.Issue, error)
	ListByStatus(status models.Status) ([]models.Issue, error)
	Vote(id string, direction models.VoteDirection) (*models.Issue, error)
	AdjustVotes(id string, delta int) (*models.Issue, error)
	SetStatus(id string, status models.Status) (*models.Issue, error)
	Assign(id, department string) (*models.Issue, error)
	SetPriority(id string, priority models.Priority) (*models.Issue, error)
}

// UserStore holds leaderboard participants.
type UserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	List() ([]models.User, error)
}

var (
	_ IssueStore = (*IssueRepository)(nil)
	_ IssueStore = (*MemoryIssueRepository)(nil)
	_ UserStore  = (*UserRepository)(nil)
	_ UserStore  = (*MemoryUserRepository)(nil)
)
