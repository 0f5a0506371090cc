package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsync/civic-dashboard/internal/config"
	prommetrics "github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/repository"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

type fakeLister struct {
	issues  []models.Issue
	err     error
	queried []models.Status
}

func (f *fakeLister) ListByStatus(status models.Status) ([]models.Issue, error) {
	f.queried = append(f.queried, status)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Issue
	for _, issue := range f.issues {
		if issue.Status == status {
			out = append(out, issue)
		}
	}
	return out, nil
}

type fakeSender struct {
	calls  int
	issues []models.Issue
	now    time.Time
	err    error
}

func (f *fakeSender) SendPendingDigest(_ context.Context, issues []models.Issue, now time.Time) error {
	f.calls++
	f.issues = issues
	f.now = now
	return f.err
}

var fixedNow = time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)

func sampleIssues() []models.Issue {
	return []models.Issue{
		{ID: "1", Status: models.StatusPending, ReportedAt: fixedNow.Add(-24 * time.Hour)},
		{ID: "2", Status: models.StatusPending, ReportedAt: fixedNow.Add(-72 * time.Hour)},
		{ID: "3", Status: models.StatusPending, ReportedAt: fixedNow.Add(-2 * time.Hour)},
		{ID: "4", Status: models.StatusResolved, ReportedAt: fixedNow.Add(-96 * time.Hour)},
		{ID: "5", Status: models.StatusPending, AssignedTo: "Roads Dept.", ReportedAt: fixedNow.Add(-96 * time.Hour)},
		{ID: "6", Status: models.StatusInProgress, ReportedAt: fixedNow.Add(-96 * time.Hour)},
	}
}

func newTestService(cfg *config.SchedulerConfig, lister IssueLister, sender DigestSender) *Service {
	s := NewServiceWithInterfaces(cfg, lister, sender, logger.Nop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestBuildCronExpression(t *testing.T) {
	tests := []struct {
		name         string
		time         string
		skipWeekends bool
		want         string
		wantErr      bool
	}{
		{name: "daily at 9am", time: "09:00", want: "0 9 * * *"},
		{name: "weekdays at 9am", time: "09:00", skipWeekends: true, want: "0 9 * * 1-5"},
		{name: "daily at 14:30", time: "14:30", want: "30 14 * * *"},
		{name: "invalid format no colon", time: "0900", wantErr: true},
		{name: "invalid hour", time: "25:00", wantErr: true},
		{name: "invalid minute", time: "09:60", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Service{config: &config.SchedulerConfig{Time: tt.time, SkipWeekends: tt.skipWeekends}}

			got, err := s.buildCronExpression()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectStale(t *testing.T) {
	tests := []struct {
		name    string
		minAge  time.Duration
		wantIDs []string
	}{
		{name: "48 hour minimum", minAge: 48 * time.Hour, wantIDs: []string{"2"}},
		{name: "zero min age keeps all unassigned pending", minAge: 0, wantIDs: []string{"2", "1", "3"}},
		{name: "all filtered with very high min age", minAge: 500 * time.Hour, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectStale(sampleIssues(), tt.minAge, fixedNow)

			var ids []string
			for _, issue := range got {
				ids = append(ids, issue.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRunPendingDigest_SendsStaleIssues(t *testing.T) {
	sender := &fakeSender{}
	lister := &fakeLister{issues: sampleIssues()}
	s := newTestService(&config.SchedulerConfig{MinPendingAge: 12}, lister, sender)
	before := testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues("success"))

	s.runPendingDigest(context.Background())

	require.Equal(t, 1, sender.calls)
	require.Len(t, sender.issues, 2)
	assert.Equal(t, "2", sender.issues[0].ID)
	assert.Equal(t, "1", sender.issues[1].ID)
	assert.Equal(t, fixedNow, sender.now)

	assert.Equal(t, before+1, testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(prommetrics.SchedulerPendingIssuesCount))
	assert.Equal(t, 4.0, testutil.ToFloat64(prommetrics.IssuesByStatus.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prommetrics.IssuesByStatus.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prommetrics.IssuesByStatus.WithLabelValues("in-progress")))
	assert.Equal(t, models.Statuses, lister.queried)
}

func TestRunPendingDigest_MemoryRepository(t *testing.T) {
	repo := repository.NewMemoryIssueRepository()
	for _, issue := range sampleIssues() {
		issue := issue
		require.NoError(t, repo.Create(&issue))
	}
	sender := &fakeSender{}
	s := newTestService(&config.SchedulerConfig{MinPendingAge: 48}, repo, sender)

	s.runPendingDigest(context.Background())

	require.Equal(t, 1, sender.calls)
	require.Len(t, sender.issues, 1)
	assert.Equal(t, "2", sender.issues[0].ID)
}

func TestRunPendingDigest_NothingStale(t *testing.T) {
	sender := &fakeSender{}
	s := newTestService(&config.SchedulerConfig{MinPendingAge: 500}, &fakeLister{issues: sampleIssues()}, sender)

	s.runPendingDigest(context.Background())

	assert.Zero(t, sender.calls)
}

func TestRunPendingDigest_Errors(t *testing.T) {
	t.Run("list failure", func(t *testing.T) {
		sender := &fakeSender{}
		s := newTestService(&config.SchedulerConfig{}, &fakeLister{err: errors.New("db down")}, sender)
		before := testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues("error"))

		s.runPendingDigest(context.Background())

		assert.Zero(t, sender.calls)
		assert.Equal(t, before+1, testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues("error")))
	})

	t.Run("send failure", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("webhook 500")}
		s := newTestService(&config.SchedulerConfig{}, &fakeLister{issues: sampleIssues()}, sender)
		before := testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues("error"))

		s.runPendingDigest(context.Background())

		assert.Equal(t, 1, sender.calls)
		assert.Equal(t, before+1, testutil.ToFloat64(prommetrics.SchedulerJobsRunTotal.WithLabelValues("error")))
	})
}

func TestStartStop(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestService(&config.SchedulerConfig{Enabled: false}, &fakeLister{}, &fakeSender{})
		require.NoError(t, s.Start())
		assert.Nil(t, s.cron)
		s.Stop()
	})

	t.Run("enabled", func(t *testing.T) {
		s := newTestService(&config.SchedulerConfig{Enabled: true, Time: "09:00", Timezone: "UTC", SkipWeekends: true}, &fakeLister{}, &fakeSender{})
		require.NoError(t, s.Start())
		require.Len(t, s.cron.Entries(), 1)
		s.Stop()
	})

	t.Run("bad timezone", func(t *testing.T) {
		s := newTestService(&config.SchedulerConfig{Enabled: true, Time: "09:00", Timezone: "Mars/Olympus"}, &fakeLister{}, &fakeSender{})
		assert.Error(t, s.Start())
	})
}
