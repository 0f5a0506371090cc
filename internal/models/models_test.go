package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueDraft_Validate(t *testing.T) {
	lat := 40.7128
	lng := -74.0060

	tests := []struct {
		name      string
		draft     IssueDraft
		wantField string
	}{
		{
			name:  "valid draft",
			draft: IssueDraft{Title: "Pothole", Category: "pothole", Description: "Deep one"},
		},
		{
			name:      "missing title",
			draft:     IssueDraft{Category: "pothole", Description: "Deep one"},
			wantField: "title",
		},
		{
			name:      "missing everything",
			draft:     IssueDraft{},
			wantField: "title,category,description",
		},
		{
			name:      "unknown category",
			draft:     IssueDraft{Title: "x", Category: "volcano", Description: "y"},
			wantField: "category",
		},
		{
			name: "too many photos",
			draft: IssueDraft{Title: "x", Category: "other", Description: "y", Photos: []Attachment{
				{Name: "1.png", ContentType: "image/png"}, {Name: "2.png", ContentType: "image/png"},
				{Name: "3.png", ContentType: "image/png"}, {Name: "4.png", ContentType: "image/png"},
				{Name: "5.png", ContentType: "image/png"}, {Name: "6.png", ContentType: "image/png"},
			}},
			wantField: "photos",
		},
		{
			name: "wrong photo type",
			draft: IssueDraft{Title: "x", Category: "other", Description: "y", Photos: []Attachment{
				{Name: "clip.gif", ContentType: "image/gif", Size: 10},
			}},
			wantField: "photos",
		},
		{
			name: "photo too large",
			draft: IssueDraft{Title: "x", Category: "other", Description: "y", Photos: []Attachment{
				{Name: "big.jpg", ContentType: "image/jpeg", Size: DefaultMaxPhotoBytes + 1},
			}},
			wantField: "photos",
		},
		{
			name:      "half a coordinate",
			draft:     IssueDraft{Title: "x", Category: "water", Description: "y", Latitude: &lat},
			wantField: "location",
		},
		{
			name:  "full coordinate",
			draft: IssueDraft{Title: "x", Category: "water", Description: "y", Latitude: &lat, Longitude: &lng},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate(0, 0)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestIssueDraft_ToIssue(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	draft := IssueDraft{
		Title:       "  Large pothole  ",
		Description: "Deep pothole on Main Street",
		Category:    "Pothole",
		Location:    "Main St & 5th Ave",
		Photos:      []Attachment{{Name: "a.jpg", ContentType: "image/jpeg"}},
	}

	issue := draft.ToIssue("abc", "user-1", now)

	assert.Equal(t, "abc", issue.ID)
	assert.Equal(t, "Large pothole", issue.Title)
	assert.Equal(t, CategoryPothole, issue.Category)
	assert.Equal(t, StatusPending, issue.Status)
	assert.Equal(t, 0, issue.Votes)
	assert.Equal(t, 1, issue.PhotoCount)
	assert.Equal(t, "user-1", issue.ReporterID)
	assert.Equal(t, now, issue.ReportedAt)
	assert.False(t, issue.IsAssigned())
	assert.True(t, issue.IsOpen())
}

func TestParseHelpers(t *testing.T) {
	s, err := ParseStatus("In-Progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseStatus("closed")
	assert.ErrorIs(t, err, ErrValidation)

	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	d, err := ParseVoteDirection("down")
	require.NoError(t, err)
	assert.Equal(t, -1, d.Unit())
	assert.Equal(t, UserVoteDown, VoteFor(d))

	_, err = ParseVoteDirection("sideways")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNotFoundError(t *testing.T) {
	err := IssueNotFound("42")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `issue "42" not found`, err.Error())

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "issue", nf.Resource)
}

func TestRateLimitError(t *testing.T) {
	err := error(&RateLimitError{Limit: 10, RetryAfter: 90 * time.Minute})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "rate limit of 10 exceeded, retry after 1h30m0s", err.Error())
}
