package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of the submission pipeline and the HTTP layer.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	ReputationAwarded  prometheus.Counter
	BadgeTransitions   *prometheus.CounterVec
	LedgerSyncTotal    *prometheus.CounterVec
	LeaderboardCache   *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainrivals_submissions_total",
				Help: "Recorded submissions by challenge category and outcome",
			},
			[]string{"category", "outcome"},
		),
		ReputationAwarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chainrivals_reputation_awarded_total",
				Help: "Reputation points granted for winning submissions",
			},
		),
		BadgeTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainrivals_badge_transitions_total",
				Help: "Badge creations and level-ups applied",
			},
			[]string{"badge_type", "kind"},
		),
		LedgerSyncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainrivals_ledger_sync_total",
				Help: "Ledger sync attempts by operation and result",
			},
			[]string{"operation", "result"},
		),
		LeaderboardCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainrivals_leaderboard_cache_total",
				Help: "Leaderboard cache lookups by result",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		HTTPRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}

	reg.MustRegister(
		m.SubmissionsTotal,
		m.ReputationAwarded,
		m.BadgeTransitions,
		m.LedgerSyncTotal,
		m.LeaderboardCache,
		m.HTTPRequestsTotal,
		m.HTTPRequestSeconds,
	)
	return m
}

// NewUnregistered is used by tests and tools that do not expose /metrics.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveLedgerSync counts one ledger call.
func (m *Metrics) ObserveLedgerSync(operation string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.LedgerSyncTotal.WithLabelValues(operation, result).Inc()
}
