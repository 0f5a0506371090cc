// Package filter computes filtered and paginated views over an issue list.
// All functions are pure: the same inputs always produce the same output.
package filter

import (
	"strings"

	"github.com/civicsync/civic-dashboard/internal/models"
)

// All is the wildcard value accepted for category and status.
const All = "all"

// Pagination defaults.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Criteria holds the search predicates. Empty Category or Status means All.
type Criteria struct {
	Search   string
	Category string
	Status   string
}

// Matches reports whether a single issue satisfies the criteria.
// The search term matches title or description case-insensitively and is not trimmed.
func (c Criteria) Matches(issue *models.Issue) bool {
	if c.Search != "" {
		term := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(issue.Title), term) &&
			!strings.Contains(strings.ToLower(issue.Description), term) {
			return false
		}
	}
	if !isAll(c.Category) && string(issue.Category) != c.Category {
		return false
	}
	if !isAll(c.Status) && string(issue.Status) != c.Status {
		return false
	}
	return true
}

// Validate rejects category or status values that are neither "all" nor known.
func (c Criteria) Validate() error {
	if !isAll(c.Category) && !knownCategory(c.Category) {
		return &models.ValidationError{Field: "category", Message: "unknown category " + c.Category}
	}
	if !isAll(c.Status) && !knownStatus(c.Status) {
		return &models.ValidationError{Field: "status", Message: "unknown status " + c.Status}
	}
	return nil
}

func knownCategory(v string) bool {
	for _, c := range models.Categories {
		if string(c) == v {
			return true
		}
	}
	return false
}

func knownStatus(v string) bool {
	for _, s := range models.Statuses {
		if string(s) == v {
			return true
		}
	}
	return false
}

// Apply returns the issues matching the criteria, preserving their relative order.
// The result is never nil.
func Apply(issues []models.Issue, c Criteria) []models.Issue {
	out := make([]models.Issue, 0, len(issues))
	for i := range issues {
		if c.Matches(&issues[i]) {
			out = append(out, issues[i])
		}
	}
	return out
}

// Page is one slice of a paginated result.
type Page struct {
	Items      []models.Issue `json:"items"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// Paginate slices issues into pages. page < 1 is treated as 1; limit outside 1..MaxLimit falls back to DefaultLimit.
// A page past the end yields no items.
func Paginate(issues []models.Issue, page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	total := len(issues)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	items := []models.Issue{}
	if start < total {
		end := start + limit
		if end > total {
			end = total
		}
		items = issues[start:end]
	}

	return Page{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func isAll(v string) bool {
	return v == "" || v == All
}
