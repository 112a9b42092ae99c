package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RisksProcessed counts risks the correlator has finished handling
	RisksProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "risks_processed_total",
			Help:      "Total number of security risks processed",
		},
	)

	// RisksMerged counts risks absorbed into an existing finding
	RisksMerged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "risks_merged_total",
			Help:      "Total number of security risks merged into an existing finding",
		},
	)

	// RisksUnattributed counts processed risks with no resource attribution
	RisksUnattributed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "risks_unattributed_total",
			Help:      "Total number of security risks processed without attribution",
		},
	)

	// RisksExpired counts risks removed by the expiry sweeper
	RisksExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "risks_expired_total",
			Help:      "Total number of security risks removed after expiry",
		},
	)

	// ControlPlaneErrors counts failed control-plane round trips
	ControlPlaneErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskwatch",
			Name:      "control_plane_errors_total",
			Help:      "Total number of failed cloud control-plane calls",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(RisksProcessed)
		prometheus.DefaultRegisterer.Register(RisksMerged)
		prometheus.DefaultRegisterer.Register(RisksUnattributed)
		prometheus.DefaultRegisterer.Register(RisksExpired)
		prometheus.DefaultRegisterer.Register(ControlPlaneErrors)
	})
}
