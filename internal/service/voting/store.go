package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/civicsync/civic-dashboard/internal/cache"
	"github.com/civicsync/civic-dashboard/internal/models"
)

// StateStore keeps each user's active vote per issue for the length of a session.
type StateStore interface {
	Get(ctx context.Context, userID, issueID string) (models.UserVote, error)
	Set(ctx context.Context, userID, issueID string, vote models.UserVote) error
}

// CacheStore keeps vote state in the shared cache so it survives restarts and is seen by every replica.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCacheStore creates a cache-backed store. Entries expire after ttl (0 keeps them).
func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func voteKey(userID, issueID string) string {
	return fmt.Sprintf("vote:%s:%s", userID, issueID)
}

// Get returns the active vote, or UserVoteNone.
func (s *CacheStore) Get(ctx context.Context, userID, issueID string) (models.UserVote, error) {
	val, err := s.cache.Get(ctx, voteKey(userID, issueID))
	if err != nil {
		return "", fmt.Errorf("failed to read vote state: %w", err)
	}
	switch models.UserVote(val) {
	case models.UserVoteUp, models.UserVoteDown:
		return models.UserVote(val), nil
	default:
		return models.UserVoteNone, nil
	}
}

// Set records the active vote. UserVoteNone deletes the key.
func (s *CacheStore) Set(ctx context.Context, userID, issueID string, vote models.UserVote) error {
	key := voteKey(userID, issueID)
	if vote == models.UserVoteNone {
		if err := s.cache.Del(ctx, key); err != nil {
			return fmt.Errorf("failed to clear vote state: %w", err)
		}
		return nil
	}
	if err := s.cache.Set(ctx, key, string(vote), s.ttl); err != nil {
		return fmt.Errorf("failed to store vote state: %w", err)
	}
	return nil
}
