// Package metrics defines and registers all custom Prometheus metrics for the
// expense approval service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expenses"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// ExpensesSubmittedTotal counts newly created expenses.
// Label:
//   - category: the expense category (e.g. "Travel")
var ExpensesSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submitted_total",
		Help:      "Total number of expenses submitted, by category.",
	},
	[]string{"category"},
)

// TransitionsTotal counts successful status-changing operations.
// Labels:
//   - action: "decide" or "override"
//   - status: the resulting status (e.g. "Approved")
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of expense status transitions, by action and resulting status.",
	},
	[]string{"action", "status"},
)

// ConflictsTotal counts conditional updates lost to a concurrent writer.
// Label:
//   - action: "decide" or "override"
var ConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflicts_total",
		Help:      "Total number of conditional updates rejected because the expense changed concurrently.",
	},
	[]string{"action"},
)

// RejectedActionsTotal counts workflow actions refused before any write.
// Label:
//   - code: the error code (e.g. "NOT_AUTHORIZED", "NO_MANAGER_ASSIGNED")
var RejectedActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_actions_total",
		Help:      "Total number of workflow actions rejected by precondition or authorization checks.",
	},
	[]string{"code"},
)

// ── Assistant metrics ─────────────────────────────────────────────────────────

// AssistantCallsTotal counts assistant requests.
// Labels:
//   - operation: "description" or "summary"
//   - result: "ok", "cached", "error" or "empty"
var AssistantCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assistant_calls_total",
		Help:      "Total number of assistant calls, by operation and result.",
	},
	[]string{"operation", "result"},
)

// AssistantDuration measures upstream text-generation latency.
var AssistantDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "assistant_duration_seconds",
		Help:      "Duration of text-generation calls to the assistant provider.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
	},
	[]string{"operation"},
)

// ── Live view metrics ─────────────────────────────────────────────────────────

// StreamSubscribers tracks open live-view subscriptions.
// Label:
//   - view: "mine", "queue", "team" or "company"
var StreamSubscribers = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Current number of live expense view subscribers.",
	},
	[]string{"view"},
)

// StreamDroppedTotal counts change notifications dropped for slow subscribers.
var StreamDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_dropped_total",
		Help:      "Total number of change notifications dropped because a subscriber was not keeping up.",
	},
)

// StreamQueueDepth tracks pending notifications per hub worker.
var StreamQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_queue_depth",
		Help:      "Current number of change notifications pending in each hub worker channel.",
	},
	[]string{"worker_id"},
)
