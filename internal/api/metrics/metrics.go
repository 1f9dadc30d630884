// Package metrics defines and registers all custom Prometheus metrics for the
// timeclock API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timeclock"

// ── Clock metrics ─────────────────────────────────────────────────────────────

// ClockTransitionsTotal counts accepted clock events.
// Label:
//   - type: IN, OUT, BREAK_START or BREAK_END
var ClockTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_transitions_total",
		Help:      "Total number of clock events recorded, by type.",
	},
	[]string{"type"},
)

// ClockRejectionsTotal counts clock requests that were not recorded.
// Label:
//   - reason: "invalid_kind", "illegal_transition", "busy", "partial_write" or "error"
var ClockRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_rejections_total",
		Help:      "Total number of clock requests rejected or failed, by reason.",
	},
	[]string{"reason"},
)

// ClockQueueDepth tracks the number of clock actions waiting in each serializer worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ClockQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "clock_queue_depth",
		Help:      "Current number of clock actions pending in each serializer worker channel.",
	},
	[]string{"worker_id"},
)

// ClockActionDuration measures how long a serialized clock action takes once dequeued.
var ClockActionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clock_action_duration_seconds",
		Help:      "Duration of a clock action from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Messaging metrics ─────────────────────────────────────────────────────────

// ClockOutAnnexTotal counts clock-outs by annex shape.
// Label:
//   - kind: "none", "summary" or "questions"
var ClockOutAnnexTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_out_annex_total",
		Help:      "Total number of clock-outs, by attached annex.",
	},
	[]string{"kind"},
)

// AnswersTotal counts answer batch entries.
// Label:
//   - result: "answered", "not_found", "failed" or "invalid"
var AnswersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Total number of submitted answers, by outcome.",
	},
	[]string{"result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// QuoteCacheLookupsTotal counts quote-of-the-day cache lookups.
// Label:
//   - result: "hit" or "miss"
var QuoteCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_cache_lookups_total",
		Help:      "Total number of quote cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
