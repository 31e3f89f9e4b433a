package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsTotal counts inbound status notifications by reported
	// status and processing outcome (processed, duplicate, rejected, error).
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_integration_notifications_total",
		Help: "The total number of task status notifications received",
	}, []string{"status", "outcome"})

	// RemoteTaskCallsTotal counts outbound task API calls by operation and
	// result.
	RemoteTaskCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_integration_remote_task_calls_total",
		Help: "The total number of calls against the remote task API",
	}, []string{"operation", "result"})

	// DispatchFailuresTotal counts refused dispatch attempts by precondition.
	DispatchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_integration_dispatch_failures_total",
		Help: "The total number of dispatch attempts refused by a precondition",
	}, []string{"reason"})

	// OrdersProcessing tracks how many orders currently have an
	// outstanding remote task.
	OrdersProcessing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mqtt_integration_orders_processing",
		Help: "The number of orders currently in the processing state",
	})
)
