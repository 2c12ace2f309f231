// Package metrics provides Prometheus metrics for the arbitrage service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/mwilcox/tcg-arbitrage/internal/models"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arb_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Opportunity Query Metrics
	OpportunityQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_opportunity_queries_total",
			Help: "Opportunity queries by outcome",
		},
		[]string{"result"}, // "ok", "invalid", "error"
	)

	OpportunitySignalsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arb_opportunity_signals_returned",
			Help:    "Number of signals returned per opportunity query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
	)

	// Ingest Worker Metrics
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_ingest_runs_total",
			Help: "Ingest sync runs by outcome",
		},
		[]string{"result"}, // "success" or "failed"
	)

	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arb_ingest_run_duration_seconds",
			Help:    "Time taken by one ingest sync run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	IngestCardsSynced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arb_ingest_cards_synced_total",
			Help: "Total number of cards written by ingest runs",
		},
	)

	IngestSnapshotsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arb_ingest_snapshots_written_total",
			Help: "Total number of price snapshots appended",
		},
	)

	// Pokemon TCG API Metrics
	TCGioRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arb_tcgio_requests_total",
			Help: "Total number of pokemontcg.io API requests made",
		},
	)

	TCGioRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arb_tcgio_request_duration_seconds",
			Help:    "pokemontcg.io API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Catalog Metrics
	CatalogCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arb_catalog_cards_total",
			Help: "Number of cards in the catalog",
		},
	)

	CatalogSetsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arb_catalog_sets_total",
			Help: "Number of sets in the catalog",
		},
	)

	CatalogSnapshotsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arb_catalog_snapshots_total",
			Help: "Number of price snapshots in the append-only log",
		},
	)
)

// UpdateCatalogMetrics refreshes the catalog size gauges. The ingest worker
// calls this after every sync run.
func UpdateCatalogMetrics(db *gorm.DB) {
	var cards, sets, snapshots int64

	if err := db.Model(&models.Card{}).Count(&cards).Error; err != nil {
		log.Printf("Failed to count cards for metrics: %v", err)
		return
	}
	if err := db.Model(&models.Set{}).Count(&sets).Error; err != nil {
		log.Printf("Failed to count sets for metrics: %v", err)
		return
	}
	if err := db.Model(&models.PriceSnapshot{}).Count(&snapshots).Error; err != nil {
		log.Printf("Failed to count snapshots for metrics: %v", err)
		return
	}

	CatalogCardsTotal.Set(float64(cards))
	CatalogSetsTotal.Set(float64(sets))
	CatalogSnapshotsTotal.Set(float64(snapshots))
}
