package models

import (
	"time"
)

// Role is the permission level supplied by the identity collaborator.
type Role string

// Role constants.
const (
	RoleCitizen   Role = "citizen"
	RoleAuthority Role = "authority"
)

// Actor is the opaque "current user" context for an operation.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsAuthority reports whether the actor may triage issues.
func (a Actor) IsAuthority() bool {
	return a.Role == RoleAuthority
}

// User is a participant on the leaderboard.
type User struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Seq            int64     `gorm:"not null;uniqueIndex" json:"-" yaml:"-"`
	Name           string    `gorm:"size:255;not null" json:"name" yaml:"name"`
	Avatar         string    `gorm:"type:text" json:"avatar,omitempty" yaml:"avatar"`
	Points         int       `gorm:"not null;default:0" json:"points" yaml:"points"`
	IssuesReported int       `gorm:"not null;default:0" json:"issuesReported" yaml:"issues_reported"`
	IssuesResolved int       `gorm:"not null;default:0" json:"issuesResolved" yaml:"issues_resolved"`
	Level          int       `gorm:"not null;default:1" json:"level" yaml:"level"`
	Badges         []string  `gorm:"serializer:json;type:text" json:"badges" yaml:"badges"`
	Rank           int       `gorm:"-" json:"rank" yaml:"-"` // derived from points ordering
	CreatedAt      time.Time `json:"-" yaml:"-"`
	UpdatedAt      time.Time `json:"-" yaml:"-"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// Achievement is a gamification milestone, either binary or progress-tracked.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Unlocked    bool   `json:"unlocked"`
	Progress    *int   `json:"progress,omitempty"`
	MaxProgress *int   `json:"maxProgress,omitempty"`
}
