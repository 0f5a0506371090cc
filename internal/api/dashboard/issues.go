package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/service/filter"
	"github.com/civicsync/civic-dashboard/internal/service/stats"
)

type voteRequest struct {
	Direction string `json:"direction" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type assignmentRequest struct {
	Department string `json:"department" binding:"required"`
}

type priorityRequest struct {
	Priority string `json:"priority" binding:"required"`
}

// ListIssues returns a filtered, paginated issue list.
// GET /api/v1/issues?search=pothole&category=all&status=pending&page=1&limit=10.
func (h *Handler) ListIssues(c *gin.Context) {
	criteria := filter.Criteria{
		Search:   c.Query("search"),
		Category: c.DefaultQuery("category", filter.All),
		Status:   c.DefaultQuery("status", filter.All),
	}
	if err := criteria.Validate(); err != nil {
		h.handleError(c, err, "Invalid filter")
		return
	}

	page, err := parseIntQuery(c, "page", 1, 1, 1<<20)
	if err != nil {
		h.handleError(c, err, "Invalid page")
		return
	}
	limit, err := parseIntQuery(c, "limit", filter.DefaultLimit, 1, filter.MaxLimit)
	if err != nil {
		h.handleError(c, err, "Invalid limit")
		return
	}

	issues, err := h.issues.List()
	if err != nil {
		h.handleError(c, err, "Failed to retrieve issues")
		return
	}

	c.JSON(http.StatusOK, filter.Paginate(filter.Apply(issues, criteria), page, limit))
}

// GetIssue returns one issue and the caller's current vote on it.
// GET /api/v1/issues/:id.
func (h *Handler) GetIssue(c *gin.Context) {
	id := c.Param("id")

	issue, err := h.issues.GetByID(id)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve issue")
		return
	}

	userVote, err := h.voting.Current(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve vote state")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":    issue,
		"userVote": userVote,
	})
}

// CreateIssue submits a new issue report.
// POST /api/v1/issues.
func (h *Handler) CreateIssue(c *gin.Context) {
	var draft models.IssueDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result := <-h.submission.SubmitAsync(c.Request.Context(), actorFrom(c), draft)
	if result.Err != nil {
		h.handleError(c, result.Err, "Failed to submit issue")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"issue": result.Issue,
	})
}

// Vote toggles the caller's vote on an issue.
// POST /api/v1/issues/:id/vote.
func (h *Handler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	direction, err := models.ParseVoteDirection(req.Direction)
	if err != nil {
		h.handleError(c, err, "Invalid vote")
		return
	}

	result, err := h.voting.Cast(c.Request.Context(), actorFrom(c), c.Param("id"), direction)
	if err != nil {
		h.handleError(c, err, "Failed to record vote")
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStatus moves an issue to a new status. Authority only.
// PATCH /api/v1/issues/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		h.handleError(c, err, "Invalid status")
		return
	}

	issue, err := h.authority.UpdateStatus(c.Request.Context(), actorFrom(c), c.Param("id"), status)
	if err != nil {
		h.handleError(c, err, "Failed to update status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// Assign hands an issue to a department. Authority only.
// PATCH /api/v1/issues/:id/assignment.
func (h *Handler) Assign(c *gin.Context) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	issue, err := h.authority.Assign(c.Request.Context(), actorFrom(c), c.Param("id"), req.Department)
	if err != nil {
		h.handleError(c, err, "Failed to assign issue")
		return
	}

	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// SetPriority sets the triage priority of an issue. Authority only.
// PATCH /api/v1/issues/:id/priority.
func (h *Handler) SetPriority(c *gin.Context) {
	var req priorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		h.handleError(c, err, "Invalid priority")
		return
	}

	issue, err := h.authority.SetPriority(c.Request.Context(), actorFrom(c), c.Param("id"), priority)
	if err != nil {
		h.handleError(c, err, "Failed to set priority")
		return
	}

	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// GetStats returns dashboard totals.
// GET /api/v1/stats?top=5.
func (h *Handler) GetStats(c *gin.Context) {
	top, err := parseIntQuery(c, "top", stats.DefaultTopN, 1, 100)
	if err != nil {
		h.handleError(c, err, "Invalid top")
		return
	}

	issues, err := h.issues.List()
	if err != nil {
		h.handleError(c, err, "Failed to retrieve issues")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats.Summarize(issues, top),
		"generated_at": time.Now().UTC(),
	})
}
