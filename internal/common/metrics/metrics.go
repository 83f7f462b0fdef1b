// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChangeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_change_events_total",
			Help: "Total number of change events observed, by kind",
		},
		[]string{"kind"},
	)

	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_notifications_sent_total",
			Help: "Total number of notification emails sent successfully",
		},
	)

	RecordFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_record_failures_total",
			Help: "Total number of records skipped, by error code",
		},
		[]string{"error_code"},
	)

	Resubscriptions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_resubscriptions_total",
			Help: "Total number of subscription re-establishments after errors",
		},
	)

	EventDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "notifier_event_duration_seconds",
			Help: "Duration of per-event processing in seconds",
		},
	)
)
