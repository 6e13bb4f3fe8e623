package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	Searches         *prometheus.CounterVec // labels: outcome={selected,empty_query,not_found,lookup_error,malformed}
	SearchSuperseded prometheus.Counter
	CurrentPPM       prometheus.Gauge
	PanelRenders     *prometheus.CounterVec // labels: panel={legend,instructions,history,close}
	EventsDropped    prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider

	// Selection event feed metrics.
	EventsPublished      prometheus.Counter
	PublishErrors        prometheus.Counter
	FeedRunning          prometheus.Gauge
	BatchSize            prometheus.Histogram
	BatchPublishDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Searches,
		m.SearchSuperseded,
		m.CurrentPPM,
		m.PanelRenders,
		m.EventsDropped,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.EventsPublished,
		m.PublishErrors,
		m.FeedRunning,
		m.BatchSize,
		m.BatchPublishDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "searches_total",
			Help:      "Place searches by outcome.",
		}, []string{"outcome"}),
		SearchSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "search_superseded_total",
			Help:      "Search responses that overwrote the selection after a newer search had started.",
		}),
		CurrentPPM: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "co2map",
			Name:      "current_ppm",
			Help:      "Current synthetic CO2 reading of the selected place.",
		}),
		PanelRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "panel_renders_total",
			Help:      "Panel actions by panel.",
		}, []string{"panel"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "events_dropped_total",
			Help:      "Selection events dropped because the feed buffer was full.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "co2map",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "events_published_total",
			Help:      "Selection events written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "co2map",
			Name:      "publish_errors_total",
			Help:      "Failed selection event batch writes.",
		}),
		FeedRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "co2map",
			Name:      "feed_running",
			Help:      "1 when the selection event feed is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "co2map",
			Name:      "feed_batch_size",
			Help:      "Number of selection events per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchPublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "co2map",
			Name:      "feed_batch_publish_duration_seconds",
			Help:      "Duration of a selection event batch write.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
