package repository

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/civicsync/civic-dashboard/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.db.lockForAppend(tx, "users"); err != nil {
			return err
		}
		var maxSeq int64
		if err := tx.Model(&models.User{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
			return fmt.Errorf("failed to read user sequence: %w", err)
		}
		user.Seq = maxSeq + 1
		if user.Level < 1 {
			user.Level = 1
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.UserNotFound(id)
		}
		return nil, fmt.Errorf("failed to get user by id %s: %w", id, err)
	}
	return &user, nil
}

// List retrieves all users in insertion order.
func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("seq ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	order []string
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

// Create adds a user at the end of the collection.
func (r *MemoryUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		return &models.ValidationError{Field: "id", Message: "user id is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("failed to create user: id %q already exists", user.ID)
	}
	if user.Level < 1 {
		user.Level = 1
	}
	user.Seq = int64(len(r.order) + 1)

	stored := *user
	stored.Badges = append([]string(nil), user.Badges...)
	r.users[user.ID] = stored
	r.order = append(r.order, user.ID)
	return nil
}

// GetByID retrieves a user by ID.
func (r *MemoryUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, models.UserNotFound(id)
	}
	user.Badges = append([]string(nil), user.Badges...)
	return &user, nil
}

// List returns all users in insertion order.
func (r *MemoryUserRepository) List() ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.order))
	for _, id := range r.order {
		user := r.users[id]
		user.Badges = append([]string(nil), user.Badges...)
		users = append(users, user)
	}
	return users, nil
}
