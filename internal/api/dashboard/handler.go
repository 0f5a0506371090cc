// Package dashboard provides REST API handlers for the civic issue dashboard.
// It exposes endpoints for issues, voting, authority triage, statistics, leaderboards and notifications.
package dashboard

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/notify"
	"github.com/civicsync/civic-dashboard/internal/service/leaderboard"
	"github.com/civicsync/civic-dashboard/internal/service/submission"
	"github.com/civicsync/civic-dashboard/internal/service/voting"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// IssueReader interface for issue lookups.
type IssueReader interface {
	List() ([]models.Issue, error)
	GetByID(id string) (*models.Issue, error)
}

// VotingService interface for vote operations.
type VotingService interface {
	Cast(ctx context.Context, actor models.Actor, issueID string, direction models.VoteDirection) (*voting.Result, error)
	Current(ctx context.Context, actor models.Actor, issueID string) (models.UserVote, error)
}

// AuthorityService interface for triage operations.
type AuthorityService interface {
	Departments() []string
	UpdateStatus(ctx context.Context, actor models.Actor, issueID string, status models.Status) (*models.Issue, error)
	Assign(ctx context.Context, actor models.Actor, issueID, department string) (*models.Issue, error)
	SetPriority(ctx context.Context, actor models.Actor, issueID string, priority models.Priority) (*models.Issue, error)
}

// SubmissionService interface for reporting new issues.
type SubmissionService interface {
	SubmitAsync(ctx context.Context, actor models.Actor, draft models.IssueDraft) <-chan submission.Result
}

// LeaderboardService interface for gamification views.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	GetUserProgress(ctx context.Context, userID string) (*leaderboard.UserProgress, error)
}

// NotificationFeed interface for recent notifications.
type NotificationFeed interface {
	Recent(limit int) []notify.Notification
}

// HealthCheck reports the health of one dependency.
type HealthCheck func(ctx context.Context) error

// Dependencies groups the services the handler serves.
type Dependencies struct {
	Issues      IssueReader
	Voting      VotingService
	Authority   AuthorityService
	Submission  SubmissionService
	Leaderboard LeaderboardService
	Feed        NotificationFeed
}

// Handler handles dashboard API requests.
type Handler struct {
	issues        IssueReader
	voting        VotingService
	authority     AuthorityService
	submission    SubmissionService
	leaderboard   LeaderboardService
	feed          NotificationFeed
	healthChecks  map[string]HealthCheck
	healthTimeout time.Duration
	log           *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(deps Dependencies, log *logger.Logger) *Handler {
	return &Handler{
		issues:        deps.Issues,
		voting:        deps.Voting,
		authority:     deps.Authority,
		submission:    deps.Submission,
		leaderboard:   deps.Leaderboard,
		feed:          deps.Feed,
		healthChecks:  make(map[string]HealthCheck),
		healthTimeout: 2 * time.Second,
		log:           log,
	}
}

// AddHealthCheck registers a dependency probe reported by GET /health.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.healthChecks[name] = check
}

// RegisterRoutes mounts every dashboard route on router.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	api.Use(Identity())

	api.GET("/issues", h.ListIssues)
	api.POST("/issues", h.CreateIssue)
	api.GET("/issues/:id", h.GetIssue)
	api.POST("/issues/:id/vote", h.Vote)
	api.PATCH("/issues/:id/status", h.UpdateStatus)
	api.PATCH("/issues/:id/assignment", h.Assign)
	api.PATCH("/issues/:id/priority", h.SetPriority)

	api.GET("/departments", h.GetDepartments)
	api.GET("/stats", h.GetStats)
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/users/:id/progress", h.GetUserProgress)
	api.GET("/notifications", h.GetNotifications)
}

// Health reports service and dependency health.
// GET /health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.healthTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.healthChecks))
	for name, check := range h.healthChecks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("check", name).Msg("Health check failed")
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// GetDepartments returns the departments issues can be assigned to.
// GET /api/v1/departments.
func (h *Handler) GetDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"departments": h.authority.Departments(),
	})
}

// GetLeaderboard returns users ranked by points.
// GET /api/v1/leaderboard?limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve leaderboard")
		return
	}

	h.log.Debug().
		Int("limit", limit).
		Int("entries", len(entries)).
		Msg("Retrieved leaderboard")

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetUserProgress returns rank, level progress and achievements for a user.
// GET /api/v1/users/:id/progress.
func (h *Handler) GetUserProgress(c *gin.Context) {
	userID := c.Param("id")

	progress, err := h.leaderboard.GetUserProgress(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve user progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"progress":     progress,
		"generated_at": time.Now().UTC(),
	})
}

// GetNotifications returns the most recent notifications, newest first.
// GET /api/v1/notifications?limit=20.
func (h *Handler) GetNotifications(c *gin.Context) {
	limit, err := h.parseLimit(c, 20)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items := h.feed.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"total":         len(items),
	})
}

// Helper functions

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	return parseIntQuery(c, "limit", defaultLimit, 1, 100)
}

func parseIntQuery(c *gin.Context, name string, def, minimum, maximum int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.ValidationError{Field: name, Message: "must be an integer"}
	}
	if v < minimum || v > maximum {
		return 0, &models.ValidationError{
			Field:   name,
			Message: "must be between " + strconv.Itoa(minimum) + " and " + strconv.Itoa(maximum),
		}
	}
	return v, nil
}

// handleError maps service errors onto HTTP status codes.
// Unrecognized errors are logged and reported with the generic message.
func (h *Handler) handleError(c *gin.Context, err error, message string) {
	var rateErr *models.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rateErr.RetryAfter.Seconds()))))
		h.errorResponse(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, models.ErrRateLimited):
		h.errorResponse(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, models.ErrNotFound):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrValidation):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrForbidden):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warn().Err(err).Str("path", c.FullPath()).Msg("Request timed out")
		h.errorResponse(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
		h.errorResponse(c, http.StatusInternalServerError, message)
	}
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
