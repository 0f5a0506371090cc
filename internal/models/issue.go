// Package models defines domain models for the civic issue dashboard.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is the kind of civic problem an issue reports.
type Category string

// Category constants.
const (
	CategoryPothole     Category = "pothole"
	CategoryGarbage     Category = "garbage"
	CategoryStreetlight Category = "streetlight"
	CategoryWater       Category = "water"
	CategoryTraffic     Category = "traffic"
	CategoryOther       Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryPothole,
	CategoryGarbage,
	CategoryStreetlight,
	CategoryWater,
	CategoryTraffic,
	CategoryOther,
}

// Status is the triage state of an issue.
type Status string

// Status constants.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

// Priority is set by authorities while triaging. The zero value means unset.
type Priority string

// Priority constants.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Issue represents a civic issue reported by a citizen.
type Issue struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" yaml:"id"`
	Seq         int64     `gorm:"not null;uniqueIndex" json:"-" yaml:"-"` // insertion order
	Title       string    `gorm:"type:text;not null" json:"title" yaml:"title"`
	Description string    `gorm:"type:text;not null" json:"description" yaml:"description"`
	Category    Category  `gorm:"size:32;not null;index" json:"category" yaml:"category"`
	Status      Status    `gorm:"size:32;not null;index" json:"status" yaml:"status"`
	Priority    Priority  `gorm:"size:16" json:"priority,omitempty" yaml:"priority"`
	Votes       int       `gorm:"not null;default:0" json:"votes" yaml:"votes"`
	Location    string    `gorm:"type:text" json:"location,omitempty" yaml:"location"`
	Latitude    *float64  `json:"latitude,omitempty" yaml:"latitude"`
	Longitude   *float64  `json:"longitude,omitempty" yaml:"longitude"`
	AssignedTo  string    `gorm:"size:100" json:"assignedTo,omitempty" yaml:"assigned_to"`
	ReporterID  string    `gorm:"size:64;index" json:"reporterId,omitempty" yaml:"reporter_id"`
	PhotoCount  int       `gorm:"default:0" json:"photoCount" yaml:"photo_count"`
	ReportedAt  time.Time `gorm:"not null;index" json:"reportedAt" yaml:"reported_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

// TableName specifies the table name for Issue model.
func (Issue) TableName() string {
	return "issues"
}

// IsAssigned reports whether a department owns the issue.
func (i *Issue) IsAssigned() bool {
	return i.AssignedTo != ""
}

// IsOpen reports whether the issue still needs work.
func (i *Issue) IsOpen() bool {
	return i.Status != StatusResolved
}

// ParseCategory converts a raw value into a known Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", raw)}
}

// ParseStatus converts a raw value into a known Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", raw)}
}

// ParsePriority converts a raw value into a known Priority.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", raw)}
	}
}
