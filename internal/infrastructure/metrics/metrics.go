// Package metrics defines and registers all custom Prometheus metrics for the
// LC Studio API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto; HTTP request metrics are produced
// separately by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lcstudio"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// DevicesRevokedTotal counts devices removed from a user's session list.
var DevicesRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "devices_revoked_total",
		Help:      "Total number of login devices revoked.",
	},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UsersCreatedTotal counts created users.
// Label:
//   - role: "SUPER_ADMIN" or "TEACHER"
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created, by role.",
	},
	[]string{"role"},
)

// UsernameCollisionsTotal counts create/update requests rejected because the
// username was taken.
var UsernameCollisionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "username_collisions_total",
		Help:      "Total number of username collisions answered with suggestions.",
	},
)

// ── Attendance metrics ────────────────────────────────────────────────────────

// AttendanceItemsTotal counts bulk attendance items.
// Label:
//   - status: "updated" or "skipped"
var AttendanceItemsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_items_total",
		Help:      "Total number of bulk attendance items, by outcome.",
	},
	[]string{"status"},
)

// AttendanceBatchDuration measures how long a bulk attendance request takes.
var AttendanceBatchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "attendance_batch_duration_seconds",
		Help:      "Duration of bulk attendance updates from first lookup to last write.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
