// Package metrics exposes Prometheus instrumentation for report computation
// and imports.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
)

const (
	OutcomeSuccess       = "success"
	OutcomeInvalidPeriod = "invalid_period"
	OutcomeError         = "error"
)

type Recorder struct {
	registry *prometheus.Registry

	aggregations        *prometheus.CounterVec
	aggregationDuration *prometheus.HistogramVec
	aggregatedRows      prometheus.Histogram
	importedRows        *prometheus.CounterVec
}

// NewRecorder registers the collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		aggregations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_aggregations_total",
				Help: "Total number of report aggregations by period kind and outcome",
			},
			[]string{"period", "outcome"},
		),
		aggregationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_aggregation_duration_seconds",
				Help:    "Report aggregation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"period"},
		),
		aggregatedRows: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "report_transactions",
				Help:    "Number of transactions kept in a report after filtering",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		importedRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_rows_total",
				Help: "Total number of imported CSV rows by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry is exposed for tests and for callers adding their own collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveImport(imported, skipped int) {
	r.importedRows.WithLabelValues(OutcomeSuccess).Add(float64(imported))
	r.importedRows.WithLabelValues("skipped").Add(float64(skipped))
}

func (r *Recorder) observeAggregation(kind period.Kind, outcome string, elapsed time.Duration, rows int) {
	label := string(kind)
	if outcome == OutcomeInvalidPeriod {
		// Unknown kinds come from user input and must not explode cardinality.
		label = "invalid"
	}

	r.aggregations.WithLabelValues(label, outcome).Inc()
	r.aggregationDuration.WithLabelValues(label).Observe(elapsed.Seconds())

	if outcome == OutcomeSuccess {
		r.aggregatedRows.Observe(float64(rows))
	}
}

type instrumented struct {
	next report.Aggregator
	rec  *Recorder
}

// Instrument wraps an aggregator so every call is counted and timed.
func Instrument(next report.Aggregator, rec *Recorder) report.Aggregator {
	return &instrumented{next: next, rec: rec}
}

func (i *instrumented) Aggregate(ctx context.Context, q report.Query) (*report.Result, error) {
	start := time.Now()

	res, err := i.next.Aggregate(ctx, q)

	outcome, rows := OutcomeSuccess, 0

	switch {
	case errors.Is(err, period.ErrUnknownPeriod), errors.Is(err, period.ErrInvalidCustomRange):
		outcome = OutcomeInvalidPeriod
	case err != nil:
		outcome = OutcomeError
	default:
		rows = len(res.Transactions)
	}

	i.rec.observeAggregation(q.Period.Period, outcome, time.Since(start), rows)

	return res, err
}
