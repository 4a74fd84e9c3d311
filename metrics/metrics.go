package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "opening_hours_"

	ResultSuccess = "success"
	ResultError   = "error"

	SourceApplicationData = "application_data"
	SourceCalendar        = "calendar"
)

var (
	registerOnce sync.Once

	cacheLoads       *prometheus.CounterVec
	gatewayTotal     *prometheus.CounterVec
	gatewayLatency   *prometheus.HistogramVec
	openGauge        prometheus.Gauge
	visibilityTotal  *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
	httpTotal        *prometheus.CounterVec
)

// Init registers the service metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		cacheLoads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_loads_total",
				Help: "Weekly cache populations by source and result",
			},
			[]string{"source", "result"},
		)
		gatewayTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "gateway_requests_total",
				Help: "Calendar gateway calls by operation and result",
			},
			[]string{"op", "result"},
		)
		gatewayLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "gateway_latency_seconds",
				Help:    "Calendar gateway latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)
		openGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "open",
				Help: "1 while the location is open according to the last evaluation",
			},
		)
		visibilityTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "visibility_toggles_total",
				Help: "Visibility toggles by result",
			},
			[]string{"result"},
		)
		submissionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "slot_submissions_total",
				Help: "Time slot submissions by outcome",
			},
			[]string{"outcome"},
		)
		httpTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		)

		prometheus.MustRegister(
			cacheLoads,
			gatewayTotal,
			gatewayLatency,
			openGauge,
			visibilityTotal,
			submissionsTotal,
			httpTotal,
		)
	})
}

// IncCacheLoad counts one weekly cache population.
func IncCacheLoad(source, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if cacheLoads != nil {
		cacheLoads.WithLabelValues(source, result).Inc()
	}
}

// ObserveGateway records a calendar gateway call.
func ObserveGateway(op, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if gatewayTotal != nil {
		gatewayTotal.WithLabelValues(op, result).Inc()
	}
	if gatewayLatency != nil {
		gatewayLatency.WithLabelValues(op).Observe(duration.Seconds())
	}
}

// SetOpen publishes the result of the last open/closed evaluation.
func SetOpen(open bool) {
	if openGauge == nil {
		return
	}
	if open {
		openGauge.Set(1)
	} else {
		openGauge.Set(0)
	}
}

// IncVisibilityToggle counts one visibility toggle attempt.
func IncVisibilityToggle(result string) {
	if visibilityTotal != nil {
		visibilityTotal.WithLabelValues(result).Inc()
	}
}

// IncSubmission counts one slot submission by outcome.
func IncSubmission(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if submissionsTotal != nil {
		submissionsTotal.WithLabelValues(outcome).Inc()
	}
}

// IncHTTPRequest counts one served HTTP request.
func IncHTTPRequest(route string, code int) {
	if route == "" {
		route = "unknown"
	}
	if httpTotal != nil {
		httpTotal.WithLabelValues(route, statusLabel(code)).Inc()
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
