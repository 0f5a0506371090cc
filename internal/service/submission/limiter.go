package submission

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/civicsync/civic-dashboard/internal/cache"
	"github.com/civicsync/civic-dashboard/internal/models"
)

const (
	limiterPrefix = "issue_limit"
	limiterWindow = 24 * time.Hour
)

// Limiter caps how many issues one user may report per rolling day.
// The counter starts its 24h window on the first stored report.
type Limiter struct {
	cache  cache.Cache
	limit  int
	window time.Duration
}

// NewLimiter creates a limiter allowing limit reports per day. limit <= 0 disables it.
func NewLimiter(c cache.Cache, limit int) *Limiter {
	return &Limiter{cache: c, limit: limit, window: limiterWindow}
}

// Check returns a RateLimitError when userID has already used the day's quota. It records nothing.
func (l *Limiter) Check(ctx context.Context, userID string) error {
	if l == nil || l.limit <= 0 {
		return nil
	}
	key := l.key(userID)

	raw, err := l.cache.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read submission count: %w", err)
	}
	if raw == "" {
		return nil
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("failed to parse submission count %q: %w", raw, err)
	}

	if count >= int64(l.limit) {
		retryAfter, err := l.cache.TTL(ctx, key)
		if err != nil || retryAfter < 0 {
			retryAfter = l.window
		}
		return &models.RateLimitError{Limit: l.limit, RetryAfter: retryAfter}
	}
	return nil
}

// Record counts one stored report for userID. The first report of a window starts it.
func (l *Limiter) Record(ctx context.Context, userID string) error {
	if l == nil || l.limit <= 0 {
		return nil
	}
	if _, err := l.cache.IncrWithExpire(ctx, l.key(userID), l.window); err != nil {
		return fmt.Errorf("failed to count submission: %w", err)
	}
	return nil
}

func (l *Limiter) key(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("%s:%s", limiterPrefix, userID)
}
