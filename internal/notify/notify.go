// Package notify delivers user-visible workflow notifications.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// Variant selects how a notification is presented.
type Variant string

// Variant constants.
const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a (title, description, variant) triple.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Notifier receives notifications. Delivery is fire-and-forget: callers log errors and move on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Dispatch sends n and logs any delivery failure instead of returning it.
func Dispatch(ctx context.Context, notifier Notifier, log *logger.Logger, n Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		log.Warn().Err(err).Str("title", n.Title).Msg("Failed to deliver notification")
	}
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a notifier that logs each notification.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	n.log.Info().
		Str("title", note.Title).
		Str("description", note.Description).
		Str("variant", string(note.Variant)).
		Msg("Notification")
	metrics.RecordNotificationSent("log", string(note.Variant))
	return nil
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

// Notify delivers to every notifier even if some fail.
func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Async delivers through the wrapped notifier on a background goroutine.
// Failures are logged. Close waits for in-flight deliveries.
type Async struct {
	next Notifier
	log  *logger.Logger
	wg   sync.WaitGroup
}

// NewAsync wraps next so Notify never blocks the caller.
func NewAsync(next Notifier, log *logger.Logger) *Async {
	return &Async{next: next, log: log}
}

// Notify schedules delivery and returns immediately.
func (a *Async) Notify(ctx context.Context, n Notification) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		// The request context is usually cancelled once the handler returns.
		Dispatch(context.WithoutCancel(ctx), a.next, a.log, n)
	}()
	return nil
}

// Close waits for pending deliveries.
func (a *Async) Close() {
	a.wg.Wait()
}

// Feed keeps the most recent notifications in memory so clients can poll them.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	size  int
}

// NewFeed creates a feed holding at most size notifications.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size}
}

// Notify appends n, evicting the oldest entry when full.
func (f *Feed) Notify(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.size {
		f.items = f.items[len(f.items)-f.size:]
	}
	return nil
}

// Recent returns up to limit notifications, newest first. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.items)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Notification, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, f.items[i])
	}
	return out
}
