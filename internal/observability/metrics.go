package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration       prometheus.Histogram
	EarlyTerminations prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Scraping metrics.
	EventsScraped   *prometheus.CounterVec // labels: source={rsoe,reliefweb,emsc}
	ScrapeErrors    *prometheus.CounterVec // labels: source
	EventsDiscarded *prometheus.CounterVec // labels: reason={blank_title,duplicate_content,over_limit}
	EventsMerged    prometheus.Counter

	// Dataset metrics.
	StoreEvents   *prometheus.GaugeVec // labels: segment={current,past}
	AffectedAreas prometheus.Gauge
	RiskClusters  prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete scrape-transform-persist cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		EarlyTerminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "early_terminations_total",
			Help:      "Runs cut short by the consecutive-duplicate streak limit.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		EventsScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "events_scraped_total",
			Help:      "Raw records pulled per feed.",
		}, []string{"source"}),
		ScrapeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "scrape_errors_total",
			Help:      "Feed fetches that failed after retries, per feed.",
		}, []string{"source"}),
		EventsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "events_discarded_total",
			Help:      "Candidate records dropped before persistence, by reason.",
		}, []string{"reason"}),
		EventsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "events_merged_total",
			Help:      "New records merged into the dataset.",
		}),
		StoreEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "store_events",
			Help:      "Events persisted per segment after the latest run.",
		}, []string{"segment"}),
		AffectedAreas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "affected_areas",
			Help:      "Geographic clusters in the current window.",
		}),
		RiskClusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "risk_clusters",
			Help:      "Clusters over the alert thresholds after the latest run.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_etl",
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.EarlyTerminations,
		m.PipelineRunning,
		m.EventsScraped,
		m.ScrapeErrors,
		m.EventsDiscarded,
		m.EventsMerged,
		m.StoreEvents,
		m.AffectedAreas,
		m.RiskClusters,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "runs_total"}, []string{"outcome"}),
		RunDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "disaster_etl", Name: "run_duration_seconds"}),
		EarlyTerminations:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "early_terminations_total"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "disaster_etl", Name: "pipeline_running"}),
		EventsScraped:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "events_scraped_total"}, []string{"source"}),
		ScrapeErrors:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "scrape_errors_total"}, []string{"source"}),
		EventsDiscarded:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "events_discarded_total"}, []string{"reason"}),
		EventsMerged:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "events_merged_total"}),
		StoreEvents:        prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "disaster_etl", Name: "store_events"}, []string{"segment"}),
		AffectedAreas:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "disaster_etl", Name: "affected_areas"}),
		RiskClusters:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "disaster_etl", Name: "risk_clusters"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "disaster_etl", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "disaster_etl", Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "disaster_etl", Name: "geocode_enabled"}),
	}
}
