package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sjsage522/listingwatch/logger"
)

// Metrics holds all Prometheus metrics for listingwatch
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched      *prometheus.CounterVec
	EntriesNormalized *prometheus.CounterVec
	FilterDecisions   *prometheus.CounterVec
	RecordsReported   *prometheus.CounterVec
	CrawlDuration     *prometheus.HistogramVec
}

// NewMetrics creates the metrics on their own registry
func NewMetrics() *Metrics {
	pagesFetched := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listingwatch_pages_fetched_total",
			Help: "Total number of listing pages fetched by source and result",
		},
		[]string{"source", "result"},
	)

	entriesNormalized := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listingwatch_entries_normalized_total",
			Help: "Total number of listing entries turned into records by source and result",
		},
		[]string{"source", "result"},
	)

	filterDecisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listingwatch_filter_decisions_total",
			Help: "Total number of records evaluated against the filter expression",
		},
		[]string{"source", "decision"},
	)

	recordsReported := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listingwatch_records_reported_total",
			Help: "Total number of new matching records handed to reporters",
		},
		[]string{"source"},
	)

	crawlDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listingwatch_crawl_duration_seconds",
			Help:    "Duration of a full crawl of one source",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"source"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(pagesFetched, entriesNormalized, filterDecisions, recordsReported, crawlDuration)

	return &Metrics{
		registry:          registry,
		PagesFetched:      pagesFetched,
		EntriesNormalized: entriesNormalized,
		FilterDecisions:   filterDecisions,
		RecordsReported:   recordsReported,
		CrawlDuration:     crawlDuration,
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// PageFetched counts a fetched page
func (m *Metrics) PageFetched(source string, err error) {
	m.PagesFetched.WithLabelValues(source, result(err)).Inc()
}

// EntryNormalized counts a normalized entry
func (m *Metrics) EntryNormalized(source string, err error) {
	m.EntriesNormalized.WithLabelValues(source, result(err)).Inc()
}

// RecordDecision counts a filter decision
func (m *Metrics) RecordDecision(source string, matched bool) {
	decision := "rejected"
	if matched {
		decision = "matched"
	}
	m.FilterDecisions.WithLabelValues(source, decision).Inc()
}

// ReportedRecords counts records handed to reporters
func (m *Metrics) ReportedRecords(source string, count int) {
	m.RecordsReported.WithLabelValues(source).Add(float64(count))
}

// ObserveCrawl records how long a crawl took
func (m *Metrics) ObserveCrawl(source string, d time.Duration) {
	m.CrawlDuration.WithLabelValues(source).Observe(d.Seconds())
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
