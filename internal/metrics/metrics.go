package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loganalyser/internal/models"
)

// Line outcome label for lines that could not be classified.
const OutcomeMalformed = "malformed"

var (
	storedAnalysesDesc = prometheus.NewDesc(
		"loganalyser_stored_analyses",
		"Number of analyses in the store",
		nil,
		nil,
	)
	storedLinesDesc = prometheus.NewDesc(
		"loganalyser_stored_lines",
		"Lines across all stored analyses by outcome",
		[]string{"outcome"},
		nil,
	)
)

// SummaryReader reads aggregate totals from the store.
type SummaryReader interface {
	SummarizeAnalyses(ctx context.Context) (models.AnalysisSummary, error)
}

// StoreCollector is a custom Prometheus collector that reads stored analysis
// totals from the database on each scrape.
type StoreCollector struct {
	store   SummaryReader
	timeout time.Duration
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- storedAnalysesDesc
	ch <- storedLinesDesc
}

// Collect queries the store totals and emits them as gauges.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	summary, err := c.store.SummarizeAnalyses(ctx)
	if err != nil {
		slog.Error("failed to collect stored analysis metrics", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(storedAnalysesDesc, prometheus.GaugeValue, float64(summary.Analyses))
	for _, level := range models.Levels {
		ch <- prometheus.MustNewConstMetric(storedLinesDesc, prometheus.GaugeValue, float64(summary.Counts.Get(level)), level)
	}
	ch <- prometheus.MustNewConstMetric(storedLinesDesc, prometheus.GaugeValue, float64(summary.MalformedLines), OutcomeMalformed)
}

// Recorder owns the service's Prometheus registry and live counters.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry  *prometheus.Registry
	analyses  prometheus.Counter
	lines     *prometheus.CounterVec
	batchSize prometheus.Histogram
	storeUp   prometheus.Gauge
}

// New creates a recorder with its own registry. When store is non-nil the
// stored totals are exported through a StoreCollector.
func New(store SummaryReader) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loganalyser_analyses_total",
			Help: "Total analyses classified and stored",
		}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loganalyser_lines_total",
			Help: "Total lines classified by outcome",
		}, []string{"outcome"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loganalyser_analysis_lines",
			Help:    "Lines per submitted analysis",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		storeUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loganalyser_store_up",
			Help: "Whether the last store check succeeded (1) or failed (0)",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.analyses,
		r.lines,
		r.batchSize,
		r.storeUp,
	)
	if store != nil {
		r.registry.MustRegister(&StoreCollector{store: store, timeout: 5 * time.Second})
	}

	return r
}

// ObserveResult records a stored classification result.
func (r *Recorder) ObserveResult(res models.Result) {
	if r == nil {
		return
	}
	r.analyses.Inc()
	for _, level := range models.Levels {
		r.lines.WithLabelValues(level).Add(float64(res.Counts.Get(level)))
	}
	r.lines.WithLabelValues(OutcomeMalformed).Add(float64(res.MalformedLines))
	r.batchSize.Observe(float64(res.TotalLines))
}

// SetStoreUp records the outcome of a store health check.
func (r *Recorder) SetStoreUp(up bool) {
	if r == nil {
		return
	}
	if up {
		r.storeUp.Set(1)
	} else {
		r.storeUp.Set(0)
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
