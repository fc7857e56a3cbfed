package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	sweepRunsTotal         prometheus.Counter
	sweepDurationSeconds   prometheus.Histogram
	remindersClaimedTotal  *prometheus.CounterVec
	claimConflictsTotal    prometheus.Counter
	notificationsSentTotal *prometheus.CounterVec
	notificationsFailTotal *prometheus.CounterVec
	opsRequestsTotal       *prometheus.CounterVec
	opsLatencySeconds      *prometheus.HistogramVec
	sseClientsActive       prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors for the dispatch
// engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		sweepRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_sweep_runs_total",
			Help: "Total number of reminder sweep passes executed.",
		})

		sweepDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reminder_sweep_duration_seconds",
			Help:    "Duration distribution of reminder sweep passes.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0},
		})

		remindersClaimedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reminders_claimed_total",
			Help: "Total number of reminder rows claimed, by kind.",
		}, []string{"kind"})

		claimConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_claim_conflicts_total",
			Help: "Total number of claim attempts lost to another dispatcher replica.",
		})

		notificationsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notification deliveries that succeeded, by channel and type.",
		}, []string{"channel", "type"})

		notificationsFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of notification deliveries that failed, by channel and type.",
		}, []string{"channel", "type"})

		opsRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ops_requests_total",
			Help: "Total number of ops API requests served.",
		}, []string{"method", "route", "status"})

		opsLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ops_latency_seconds",
			Help:    "Latency distribution for ops API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inbox_sse_clients_active",
			Help: "Number of currently connected inbox SSE clients.",
		})

		prometheus.MustRegister(
			sweepRunsTotal,
			sweepDurationSeconds,
			remindersClaimedTotal,
			claimConflictsTotal,
			notificationsSentTotal,
			notificationsFailTotal,
			opsRequestsTotal,
			opsLatencySeconds,
			sseClientsActive,
		)
	})
}

// SweepRuns exposes the sweep pass counter.
func SweepRuns() prometheus.Counter {
	RegisterMetrics()
	return sweepRunsTotal
}

// SweepDuration exposes the sweep duration histogram.
func SweepDuration() prometheus.Histogram {
	RegisterMetrics()
	return sweepDurationSeconds
}

// RemindersClaimed exposes the claim counter.
func RemindersClaimed() *prometheus.CounterVec {
	RegisterMetrics()
	return remindersClaimedTotal
}

// ClaimConflicts exposes the lost-race counter.
func ClaimConflicts() prometheus.Counter {
	RegisterMetrics()
	return claimConflictsTotal
}

// NotificationsSent exposes the success counter.
func NotificationsSent() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsSentTotal
}

// NotificationsFailed exposes the failure counter.
func NotificationsFailed() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsFailTotal
}

// OpsRequests exposes the counter for ops API requests.
func OpsRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return opsRequestsTotal
}

// OpsLatency exposes the latency histogram for ops API requests.
func OpsLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return opsLatencySeconds
}

// SSEClientsActive exposes the live SSE client gauge.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
