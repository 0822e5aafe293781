package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "degreeday"

// Run outcomes used as the "outcome" label of RunsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors for runs, stages and adapters.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec // labels: outcome={success,rejected,error}
	RunDuration prometheus.Histogram

	// Stage counters, accumulated across runs.
	StationsRead       prometheus.Counter
	StationsDropped    *prometheus.CounterVec // labels: reason={incomplete,active_season}
	InvalidDates       prometheus.Counter
	QualifyingRows     prometheus.Counter
	SummariesUnmatched prometheus.Counter
	CoordinatesInvalid prometheus.Counter
	YearsProduced      prometheus.Counter
	ResultHeld         prometheus.Gauge

	// Kafka publishing.
	RowsPublished prometheus.Counter
	PublishErrors prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Computation runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete computation run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		StationsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_read_total",
			Help:      "Station files parsed.",
		}),
		StationsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_dropped_total",
			Help:      "Stations removed by the completeness filter, by reason.",
		}, []string{"reason"}),
		InvalidDates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_dates_total",
			Help:      "Daily rows whose year, month and day do not form a calendar date.",
		}),
		QualifyingRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qualifying_rows_total",
			Help:      "Daily rows whose window sum exceeded the required degree-days.",
		}),
		SummariesUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_unmatched_total",
			Help:      "Year summaries dropped because no coordinate row matched.",
		}),
		CoordinatesInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinates_invalid_total",
			Help:      "Coordinate rows dropped for a non-numeric station id.",
		}),
		YearsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "years_produced_total",
			Help:      "Yearly output tables produced.",
		}),
		ResultHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "result_held",
			Help:      "1 when a computed result is available for download, 0 otherwise.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_published_total",
			Help:      "Joined rows written to the Kafka sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish a run to Kafka.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RunsTotal,
		m.RunDuration,
		m.StationsRead,
		m.StationsDropped,
		m.InvalidDates,
		m.QualifyingRows,
		m.SummariesUnmatched,
		m.CoordinatesInvalid,
		m.YearsProduced,
		m.ResultHeld,
		m.RowsPublished,
		m.PublishErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
