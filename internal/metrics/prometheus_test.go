package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordIssueReported(t *testing.T) {
	// Reset the counter before test
	IssuesReportedTotal.Reset()

	RecordIssueReported("pothole")
	RecordIssueReported("pothole")
	RecordIssueReported("water")

	count := testutil.ToFloat64(IssuesReportedTotal.WithLabelValues("pothole"))
	if count != 2 {
		t.Errorf("Expected pothole count = 2, got %f", count)
	}

	count = testutil.ToFloat64(IssuesReportedTotal.WithLabelValues("water"))
	if count != 1 {
		t.Errorf("Expected water count = 1, got %f", count)
	}
}

func TestRecordSubmissionRejected(t *testing.T) {
	SubmissionsRejectedTotal.Reset()

	RecordSubmissionRejected("validation")
	RecordSubmissionRejected("rate_limited")
	RecordSubmissionRejected("validation")

	count := testutil.ToFloat64(SubmissionsRejectedTotal.WithLabelValues("validation"))
	if count != 2 {
		t.Errorf("Expected validation rejections = 2, got %f", count)
	}
}

func TestRecordVote(t *testing.T) {
	VotesCastTotal.Reset()

	RecordVote("up", "up")
	RecordVote("up", "none")

	if got := testutil.ToFloat64(VotesCastTotal.WithLabelValues("up", "none")); got != 1 {
		t.Errorf("Expected up/none = 1, got %f", got)
	}
}

func TestRecordAuthorityActions(t *testing.T) {
	StatusChangesTotal.Reset()
	AssignmentsTotal.Reset()
	PriorityChangesTotal.Reset()

	RecordStatusChange("resolved")
	RecordAssignment("Roads Dept.")
	RecordAssignment("Roads Dept.")
	RecordPriorityChange("high")

	if got := testutil.ToFloat64(StatusChangesTotal.WithLabelValues("resolved")); got != 1 {
		t.Errorf("Expected resolved changes = 1, got %f", got)
	}
	if got := testutil.ToFloat64(AssignmentsTotal.WithLabelValues("Roads Dept.")); got != 2 {
		t.Errorf("Expected Roads Dept. assignments = 2, got %f", got)
	}
	if got := testutil.ToFloat64(PriorityChangesTotal.WithLabelValues("high")); got != 1 {
		t.Errorf("Expected high priority changes = 1, got %f", got)
	}
}

func TestRecordNotifications(t *testing.T) {
	NotificationsSentTotal.Reset()
	NotificationsFailedTotal.Reset()

	RecordNotificationSent("mattermost", "default")
	RecordNotificationFailed("mattermost")

	if got := testutil.ToFloat64(NotificationsSentTotal.WithLabelValues("mattermost", "default")); got != 1 {
		t.Errorf("Expected sent = 1, got %f", got)
	}
	if got := testutil.ToFloat64(NotificationsFailedTotal.WithLabelValues("mattermost")); got != 1 {
		t.Errorf("Expected failed = 1, got %f", got)
	}
}

func TestSetIssuesByStatus(t *testing.T) {
	SetIssuesByStatus("pending", 2)
	SetIssuesByStatus("resolved", 1)

	if got := testutil.ToFloat64(IssuesByStatus.WithLabelValues("pending")); got != 2 {
		t.Errorf("Expected pending = 2, got %f", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("GET", "/api/v1/issues", "200", 0.01)

	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/issues", "200")); got != 1 {
		t.Errorf("Expected request count = 1, got %f", got)
	}
}

func TestSchedulerMetrics(t *testing.T) {
	SchedulerJobsRunTotal.Reset()

	RecordSchedulerJobRun("success")
	SetSchedulerPendingIssues(4)
	SetSchedulerLastRun()
	ObserveSchedulerJobDuration(0.5)
	ObserveSubmissionDuration(0.002)

	if got := testutil.ToFloat64(SchedulerJobsRunTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected success runs = 1, got %f", got)
	}
	if got := testutil.ToFloat64(SchedulerPendingIssuesCount); got != 4 {
		t.Errorf("Expected pending issues = 4, got %f", got)
	}
	if got := testutil.ToFloat64(SchedulerLastRunTimestamp); got <= 0 {
		t.Errorf("Expected last run timestamp to be set, got %f", got)
	}
}

func TestMetricsRegistration(t *testing.T) {
	// Verify all metrics are registered
	metrics := []prometheus.Collector{
		IssuesReportedTotal,
		SubmissionsRejectedTotal,
		VotesCastTotal,
		StatusChangesTotal,
		AssignmentsTotal,
		PriorityChangesTotal,
		NotificationsSentTotal,
		NotificationsFailedTotal,
		HTTPRequestsTotal,
		IssuesByStatus,
		SubmissionDurationSeconds,
		HTTPRequestDurationSeconds,
		SchedulerJobsRunTotal,
		SchedulerPendingIssuesCount,
		SchedulerLastRunTimestamp,
		SchedulerJobDurationSeconds,
	}

	for i, metric := range metrics {
		if metric == nil {
			t.Errorf("Metric %d is nil", i)
		}
	}
}
