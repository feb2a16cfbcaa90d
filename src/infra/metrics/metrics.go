package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors of the exchange engine.
//
// NewMetrics registers them once per process, so every service can call it
// from its constructor without tripping duplicate registration.
//
//   - exchange_matches_found_total{kind}
//   - exchange_agreement_transitions_total{to,outcome}
//   - exchange_cascade_failures_total{step}
//   - exchange_notifications_dispatched_total{channel,outcome}
//   - exchange_notifications_deduplicated_total
//   - exchange_response_links_total{outcome}
//   - exchange_notification_tasks_processed_total{outcome}
type Metrics struct {
	MatchesFound              *prometheus.CounterVec
	AgreementTransitions      *prometheus.CounterVec
	CascadeFailures           *prometheus.CounterVec
	NotificationsDispatched   *prometheus.CounterVec
	NotificationsDeduplicated prometheus.Counter
	ResponseLinks             *prometheus.CounterVec
	NotificationTasks         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			MatchesFound: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "exchange_matches_found_total",
					Help: "Counterparts yielded by the matchmaker",
				},
				[]string{"kind"}, // kind of the input exchange
			),
			AgreementTransitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "exchange_agreement_transitions_total",
					Help: "Agreement creations and status transitions",
				},
				[]string{"to", "outcome"}, // to: pending|accepted|rejected, outcome: ok|state_error|error
			),
			CascadeFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "exchange_cascade_failures_total",
					Help: "Non-critical cascade steps that failed after an agreement was created",
				},
				[]string{"step"},
			),
			NotificationsDispatched: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "exchange_notifications_dispatched_total",
					Help: "Notification deliveries per channel",
				},
				[]string{"channel", "outcome"}, // channel: record|live|durable
			),
			NotificationsDeduplicated: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "exchange_notifications_deduplicated_total",
					Help: "Match notifications skipped because an unread one already exists",
				},
			),
			ResponseLinks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "exchange_response_links_total",
					Help: "Response links recorded by the response linker",
				},
				[]string{"outcome"},
			),
			NotificationTasks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "exchange_notification_tasks_processed_total",
					Help: "Durable notification tasks handled by the worker",
				},
				[]string{"outcome"},
			),
		}
	})
	return globalMetrics
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
