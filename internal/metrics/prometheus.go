// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the civic issue dashboard.
var (
	// Counters.
	IssuesReportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_issues_reported_total",
			Help: "Total number of issues submitted by citizens",
		},
		[]string{"category"},
	)

	SubmissionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_submissions_rejected_total",
			Help: "Total number of rejected issue submissions",
		},
		[]string{"reason"},
	)

	VotesCastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_votes_cast_total",
			Help: "Total number of vote toggles, by direction and resulting user vote",
		},
		[]string{"direction", "result"},
	)

	StatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_issue_status_changes_total",
			Help: "Total number of status changes made by authorities",
		},
		[]string{"status"},
	)

	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_issue_assignments_total",
			Help: "Total number of issue assignments per department",
		},
		[]string{"department"},
	)

	PriorityChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_issue_priority_changes_total",
			Help: "Total number of priority changes made by authorities",
		},
		[]string{"priority"},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_notifications_sent_total",
			Help: "Total notifications delivered",
		},
		[]string{"channel", "variant"},
	)

	NotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_notifications_failed_total",
			Help: "Total notification delivery failures",
		},
		[]string{"channel"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_http_requests_total",
			Help: "Total HTTP requests handled",
		},
		[]string{"method", "route", "code"},
	)

	// Gauges.
	IssuesByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "civic_issues",
			Help: "Current number of issues per status",
		},
		[]string{"status"},
	)

	// Histograms.
	SubmissionDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "civic_submission_duration_seconds",
			Help:    "Time taken to accept an issue submission",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "civic_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civic_scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"status"},
	)

	SchedulerPendingIssuesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "civic_scheduler_pending_issues",
			Help: "Number of stale pending issues in the last digest",
		},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "civic_scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "civic_scheduler_job_duration_seconds",
			Help:    "Time taken to execute the pending-issue digest job",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)
)

// RecordIssueReported records an accepted submission.
func RecordIssueReported(category string) {
	IssuesReportedTotal.WithLabelValues(category).Inc()
}

// RecordSubmissionRejected records a rejected submission.
func RecordSubmissionRejected(reason string) {
	SubmissionsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordVote records a vote toggle.
func RecordVote(direction, result string) {
	VotesCastTotal.WithLabelValues(direction, result).Inc()
}

// RecordStatusChange records an authority status change.
func RecordStatusChange(status string) {
	StatusChangesTotal.WithLabelValues(status).Inc()
}

// RecordAssignment records an assignment to a department.
func RecordAssignment(department string) {
	AssignmentsTotal.WithLabelValues(department).Inc()
}

// RecordPriorityChange records an authority priority change.
func RecordPriorityChange(priority string) {
	PriorityChangesTotal.WithLabelValues(priority).Inc()
}

// RecordNotificationSent records a delivered notification.
func RecordNotificationSent(channel, variant string) {
	NotificationsSentTotal.WithLabelValues(channel, variant).Inc()
}

// RecordNotificationFailed records a failed notification.
func RecordNotificationFailed(channel string) {
	NotificationsFailedTotal.WithLabelValues(channel).Inc()
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, route, code string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(seconds)
}

// SetIssuesByStatus sets the current number of issues with a status.
func SetIssuesByStatus(status string, count int) {
	IssuesByStatus.WithLabelValues(status).Set(float64(count))
}

// ObserveSubmissionDuration observes how long a submission took.
func ObserveSubmissionDuration(seconds float64) {
	SubmissionDurationSeconds.Observe(seconds)
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(status string) {
	SchedulerJobsRunTotal.WithLabelValues(status).Inc()
}

// SetSchedulerPendingIssues sets the number of stale pending issues in the last digest.
func SetSchedulerPendingIssues(count int) {
	SchedulerPendingIssuesCount.Set(float64(count))
}

// SetSchedulerLastRun sets the timestamp of the last scheduler run.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(seconds float64) {
	SchedulerJobDurationSeconds.Observe(seconds)
}
