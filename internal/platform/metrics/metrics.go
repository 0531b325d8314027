package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ehr/namaste/internal/platform/fallback"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Registry metrics
	registryCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminology_registry_calls_total",
			Help: "Calls to the external terminology registry by operation, result source and failure class",
		},
		[]string{"op", "source", "class"},
	)

	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminology_searches_total",
			Help: "Terminology searches by the source that answered",
		},
		[]string{"source"},
	)

	// Diagnosis metrics
	diagnosisCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnosis_commits_total",
			Help: "Diagnosis commits by outcome",
		},
		[]string{"status"},
	)
)

// Handler returns the Prometheus scrape endpoint as an echo handler.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Middleware records request counts and latency keyed by the matched route
// template, so path parameters do not explode label cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// ObserveRegistryCall matches fallback.Policy.Observe.
func ObserveRegistryCall(op string, source fallback.Source, class fallback.Class) {
	label := string(class)
	if label == "" {
		label = "none"
	}
	registryCallsTotal.WithLabelValues(op, string(source), label).Inc()
}

// RecordSearch records which source answered a terminology search.
func RecordSearch(source string) {
	searchesTotal.WithLabelValues(source).Inc()
}

// RecordCommit records the outcome of a diagnosis commit.
func RecordCommit(status string) {
	diagnosisCommitsTotal.WithLabelValues(status).Inc()
}
