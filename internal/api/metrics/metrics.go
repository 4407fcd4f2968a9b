// Package metrics defines and registers all custom Prometheus metrics for
// the task service. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register themselves with the default Prometheus registry at
// package init via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskhub"

// ── Auth metrics ─────────────────────────────────────────────────────────────

// SignupsTotal counts successfully registered accounts.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Task metrics ─────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// ── Email metrics ────────────────────────────────────────────────────────────

// EmailsSentTotal counts notification deliveries attempted by the dispatcher.
// Labels:
//   - kind: "welcome" or "cancellation"
//   - result: "success" or "failure"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of notification emails attempted, by kind and result.",
	},
	[]string{"kind", "result"},
)

// EmailQueueDepth tracks the number of jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EmailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "email_queue_depth",
		Help:      "Current number of email jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EmailSendDuration measures how long a single delivery takes end-to-end.
// Label:
//   - kind: "welcome" or "cancellation"
var EmailSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "email_send_duration_seconds",
		Help:      "Duration of a notification delivery from dequeue to provider response.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"kind"},
)

// ── Avatar cache metrics ─────────────────────────────────────────────────────

// AvatarCacheTotal counts avatar cache lookups.
// Label:
//   - result: "hit" or "miss"
var AvatarCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "avatar_cache_total",
		Help:      "Total number of avatar cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
