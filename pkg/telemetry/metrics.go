package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ─── API ─────────────────────────────────────────────────────────────────────

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "todoweb",
		Subsystem: "api",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and status.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "status"})

	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "api",
		Name:      "tasks_created_total",
		Help:      "Total tasks created through the API.",
	})

	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "api",
		Name:      "chat_requests_total",
		Help:      "Total chat requests, labelled by outcome.",
	}, []string{"outcome"})

	// ─── Events ──────────────────────────────────────────────────────────────────

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Domain event publish attempts, labelled by type and outcome (ok, error, disabled).",
	}, []string{"type", "outcome"})

	AuditAppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "events",
		Name:      "audit_append_failures_total",
		Help:      "Failed appends to the local events audit table.",
	})

	// ─── Reminder worker ─────────────────────────────────────────────────────────

	RemindersScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "worker",
		Name:      "reminders_scheduled_total",
		Help:      "Pending reminder rows created from reminder.scheduled events.",
	})

	RemindersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "worker",
		Name:      "reminders_cancelled_total",
		Help:      "Pending reminders cancelled from cancellation events.",
	})

	RemindersFired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "worker",
		Name:      "reminders_fired_total",
		Help:      "Reminders transitioned to fired by the poll loop.",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "worker",
		Name:      "notifications_total",
		Help:      "Notification delivery outcomes, labelled by channel and status.",
	}, []string{"channel", "status"})

	NotificationRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todoweb",
		Subsystem: "worker",
		Name:      "notification_retries_total",
		Help:      "Notification delivery retry attempts by channel.",
	}, []string{"channel"})
)
