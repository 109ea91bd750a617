// Package metrics defines the forum's custom Prometheus metrics. HTTP request
// metrics come from echoprometheus; everything here is domain level.
//
// All metrics register with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forum"

// ── Content ──────────────────────────────────────────────────────────────────

// ThreadsCreatedTotal counts threads created through the web form.
var ThreadsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "threads_created_total",
		Help:      "Total number of threads created.",
	},
)

// PostsCreatedTotal counts stored posts.
// Label:
//   - kind: "opening" for a thread's first post, "reply" otherwise
var PostsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of posts stored, by kind.",
	},
	[]string{"kind"},
)

// ReplyDuration measures a reply from validation to broadcast.
// Label:
//   - outcome: "ok", "invalid", "not_found" or "error"
var ReplyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reply_duration_seconds",
		Help:      "Duration of reply submissions, by outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Realtime ─────────────────────────────────────────────────────────────────

// LiveConnections is the number of open WebSocket connections.
var LiveConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_connections",
		Help:      "Current number of open live connections.",
	},
)

// ActiveRooms is the number of threads with at least one live viewer.
var ActiveRooms = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_rooms",
		Help:      "Current number of threads with live viewers.",
	},
)

// BroadcastDeliveries counts per-viewer delivery attempts.
// Label:
//   - result: "queued" or "dropped" (viewer queue full)
var BroadcastDeliveries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_deliveries_total",
		Help:      "Total number of per-viewer broadcast deliveries, by result.",
	},
	[]string{"result"},
)
