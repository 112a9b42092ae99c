package telemetry

import (
	"log/slog"

	"github.com/osvik/riskwatch/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	risksByTypeDesc = prometheus.NewDesc(
		"riskwatch_security_risks",
		"Number of security risks per type",
		[]string{"type"}, nil,
	)
	projectsWithRisksDesc = prometheus.NewDesc(
		"riskwatch_projects_with_risks",
		"Number of projects with risks",
		nil, nil,
	)
)

// StoreCollector exports point-in-time gauges derived from store counts.
// Scrapes query the store directly, so values are always current.
type StoreCollector struct {
	store ports.Storage
}

// NewStoreCollector creates a collector over the given store.
func NewStoreCollector(store ports.Storage) *StoreCollector {
	return &StoreCollector{store: store}
}

func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- risksByTypeDesc
	ch <- projectsWithRisksDesc
}

func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.store.CountRisksByType()
	if err != nil {
		slog.Error("collecting risk counts", "error", err)
		return
	}
	for name, count := range counts {
		ch <- prometheus.MustNewConstMetric(
			risksByTypeDesc, prometheus.GaugeValue, float64(count), name)
	}

	projects, err := c.store.CountProjectsWithRisks()
	if err != nil {
		slog.Error("collecting project count", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(
		projectsWithRisksDesc, prometheus.GaugeValue, float64(projects))
}

// Ensure interface compliance
var _ prometheus.Collector = (*StoreCollector)(nil)
