package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agro_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL
// pipelines and the prediction service.
type Metrics struct {
	RowsExtracted    *prometheus.CounterVec   // labels: table
	RowsLoaded       *prometheus.CounterVec   // labels: table, sink
	LoadErrors       *prometheus.CounterVec   // labels: sink
	PipelineRuns     *prometheus.CounterVec   // labels: pipeline, outcome={success,error}
	PipelineDuration *prometheus.HistogramVec // labels: pipeline
	PipelineRunning  prometheus.Gauge

	// Fertilizer workbook metrics.
	MalformedBlocks       prometheus.Counter
	UnresolvedFertilizers prometheus.Counter
	ExtrapolatedRecords   prometheus.Counter

	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={gus,open-meteo}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source

	// Prediction service metrics.
	Predictions        *prometheus.CounterVec // labels: outcome={success,invalid,error}
	PredictionDuration prometheus.Histogram
	ModelLoaded        prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.RowsExtracted,
		m.RowsLoaded,
		m.LoadErrors,
		m.PipelineRuns,
		m.PipelineDuration,
		m.PipelineRunning,
		m.MalformedBlocks,
		m.UnresolvedFertilizers,
		m.ExtrapolatedRecords,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Predictions,
		m.PredictionDuration,
		m.ModelLoaded,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_extracted_total",
			Help:      "Rows produced by extractors, by output table.",
		}, []string{"table"}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows written by loaders, by output table and sink.",
		}, []string{"table", "sink"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed table loads by sink.",
		}, []string{"sink"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		PipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete extract-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
		}, []string{"pipeline"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is active.",
		}),
		MalformedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_blocks_total",
			Help:      "Workbook blocks rejected for a missing year.",
		}),
		UnresolvedFertilizers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_fertilizers_total",
			Help:      "Price records dropped because the fertilizer has no nutrient entry.",
		}),
		ExtrapolatedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extrapolated_records_total",
			Help:      "Nutrient price records projected for missing years.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Yield prediction requests by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent evaluating the yield model.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_loaded",
			Help:      "1 when the yield model is loaded, 0 otherwise.",
		}),
	}
}
