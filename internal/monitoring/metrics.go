package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ScrapesTotal      *prometheus.CounterVec
	CardsDroppedTotal *prometheus.CounterVec
	WriteBatchesTotal *prometheus.CounterVec
	AnalysesTotal     *prometheus.CounterVec
	ScrapeDuration    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		ScrapesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_scrapes_total",
			Help: "The total number of source scrapes by outcome",
		}, []string{"source", "outcome"}), // outcome: 'ok', 'failed', 'cached'
		CardsDroppedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_cards_dropped_total",
			Help: "The total number of product cards dropped during extraction",
		}, []string{"source"}),
		WriteBatchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_write_batches_total",
			Help: "The total number of observation write batches by outcome",
		}, []string{"outcome"}), // 'ok', 'failed', 'skipped'
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_analyses_total",
			Help: "The total number of trend analyses by result",
		}, []string{"result"}), // 'ok', 'insufficient_data', 'failed'
		ScrapeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricescout_scrape_duration_seconds",
			Help:    "Time spent rendering and extracting one source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
	}
}

func (m *Metrics) IncScrapes(source, outcome string) {
	m.ScrapesTotal.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) IncCardsDropped(source string) {
	m.CardsDroppedTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) IncWriteBatches(outcome string) {
	m.WriteBatchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAnalyses(result string) {
	m.AnalysesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveScrapeDuration(source string, seconds float64) {
	m.ScrapeDuration.WithLabelValues(source).Observe(seconds)
}
