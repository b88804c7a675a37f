package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database metrics
var DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "db_query_duration_seconds",
	Help:    "Duration of database queries in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"query_type", "repository", "status"})

var DBQueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "db_query_errors_total",
	Help: "Total number of failed database queries.",
}, []string{"query_type", "repository"})

// Usage-reporting job metrics
var UsageEventsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "usage_events_emitted_total",
	Help: "Total number of metered usage events sent to the billing processor.",
})

var UsageUsersSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "usage_users_skipped_total",
	Help: "Users skipped during a usage-reporting run, by reason.",
}, []string{"reason"})

var UsageReportErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "usage_report_errors_total",
	Help: "Total number of per-user failures during usage-reporting runs.",
})

var AppTotalUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "app_total_users",
	Help: "Total number of registered users in the application.",
})

// OTP metrics
var OTPVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "otp_verifications_total",
	Help: "OTP verification attempts by outcome.",
}, []string{"purpose", "outcome"})
