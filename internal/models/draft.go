package models

import (
	"fmt"
	"strings"
	"time"
)

// Default submission limits.
const (
	DefaultMaxPhotos     = 5
	DefaultMaxPhotoBytes = 10 << 20
)

// MsgRequiredFieldMissing is the ValidationError message for drafts lacking title, category or description.
const MsgRequiredFieldMissing = "required field missing"

// Attachment describes a photo uploaded with a draft. Only metadata is kept.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// IssueDraft is a citizen's not-yet-submitted report.
type IssueDraft struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Location    string       `json:"location"`
	Latitude    *float64     `json:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty"`
	Photos      []Attachment `json:"photos,omitempty"`
}

// Validate checks required fields and photo limits.
// Non-positive limits fall back to the defaults.
func (d *IssueDraft) Validate(maxPhotos int, maxPhotoBytes int64) error {
	if maxPhotos <= 0 {
		maxPhotos = DefaultMaxPhotos
	}
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = DefaultMaxPhotoBytes
	}

	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Field:   strings.Join(missing, ","),
			Message: MsgRequiredFieldMissing,
		}
	}

	if _, err := ParseCategory(d.Category); err != nil {
		return err
	}

	if len(d.Photos) > maxPhotos {
		return &ValidationError{Field: "photos", Message: fmt.Sprintf("at most %d photos allowed", maxPhotos)}
	}
	for _, p := range d.Photos {
		switch strings.ToLower(p.ContentType) {
		case "image/png", "image/jpeg", "image/jpg":
		default:
			return &ValidationError{Field: "photos", Message: fmt.Sprintf("%s: only PNG or JPG images are accepted", p.Name)}
		}
		if p.Size > maxPhotoBytes {
			return &ValidationError{Field: "photos", Message: fmt.Sprintf("%s exceeds %d bytes", p.Name, maxPhotoBytes)}
		}
	}

	if (d.Latitude == nil) != (d.Longitude == nil) {
		return &ValidationError{Field: "location", Message: "latitude and longitude must be set together"}
	}

	return nil
}

// ToIssue builds a pending issue from a validated draft.
func (d *IssueDraft) ToIssue(id, reporterID string, now time.Time) *Issue {
	category, _ := ParseCategory(d.Category)
	return &Issue{
		ID:          id,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Category:    category,
		Status:      StatusPending,
		Votes:       0,
		Location:    strings.TrimSpace(d.Location),
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		ReporterID:  reporterID,
		PhotoCount:  len(d.Photos),
		ReportedAt:  now,
		UpdatedAt:   now,
	}
}
