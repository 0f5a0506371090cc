package mocks

import "github.com/civicsync/civic-dashboard/internal/models"

// MockIssueStore is a func-field mock for repository.IssueStore.
// Unset functions return zero values.
type MockIssueStore struct {
	CreateFunc       func(issue *models.Issue) error
	GetByIDFunc      func(id string) (*models.Issue, error)
	ListFunc         func() ([]models.Issue, error)
	ListByStatusFunc func(status models.Status) ([]models.Issue, error)
	VoteFunc         func(id string, direction models.VoteDirection) (*models.Issue, error)
	AdjustVotesFunc  func(id string, delta int) (*models.Issue, error)
	SetStatusFunc    func(id string, status models.Status) (*models.Issue, error)
	AssignFunc       func(id, department string) (*models.Issue, error)
	SetPriorityFunc  func(id string, priority models.Priority) (*models.Issue, error)
}

func (m *MockIssueStore) Create(issue *models.Issue) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(issue)
	}
	return nil
}

func (m *MockIssueStore) GetByID(id string) (*models.Issue, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, models.IssueNotFound(id)
}

func (m *MockIssueStore) List() ([]models.Issue, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []models.Issue{}, nil
}

func (m *MockIssueStore) ListByStatus(status models.Status) ([]models.Issue, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(status)
	}
	return []models.Issue{}, nil
}

func (m *MockIssueStore) Vote(id string, direction models.VoteDirection) (*models.Issue, error) {
	if m.VoteFunc != nil {
		return m.VoteFunc(id, direction)
	}
	return nil, models.IssueNotFound(id)
}

func (m *MockIssueStore) AdjustVotes(id string, delta int) (*models.Issue, error) {
	if m.AdjustVotesFunc != nil {
		return m.AdjustVotesFunc(id, delta)
	}
	return nil, models.IssueNotFound(id)
}

func (m *MockIssueStore) SetStatus(id string, status models.Status) (*models.Issue, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(id, status)
	}
	return nil, models.IssueNotFound(id)
}

func (m *MockIssueStore) Assign(id, department string) (*models.Issue, error) {
	if m.AssignFunc != nil {
		return m.AssignFunc(id, department)
	}
	return nil, models.IssueNotFound(id)
}

func (m *MockIssueStore) SetPriority(id string, priority models.Priority) (*models.Issue, error) {
	if m.SetPriorityFunc != nil {
		return m.SetPriorityFunc(id, priority)
	}
	return nil, models.IssueNotFound(id)
}

// MockUserStore is a func-field mock for repository.UserStore.
type MockUserStore struct {
	CreateFunc  func(user *models.User) error
	GetByIDFunc func(id string) (*models.User, error)
	ListFunc    func() ([]models.User, error)
}

func (m *MockUserStore) Create(user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	return nil
}

func (m *MockUserStore) GetByID(id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, models.UserNotFound(id)
}

func (m *MockUserStore) List() ([]models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []models.User{}, nil
}
