// internal/metrics/metrics.go

// Package metrics exposes Prometheus collectors for the server and the
// static build. All methods are safe to call on a nil *Metrics, which
// records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the docuwhat collectors on an isolated registry so tests
// can each build their own.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
	RendersTotal           *prometheus.CounterVec
	SearchesTotal          prometheus.Counter
	SearchResults          prometheus.Histogram
	BuildPages             prometheus.Gauge
	BuildDurationSeconds   prometheus.Histogram
	ReloadsTotal           prometheus.Counter
	BuildInfo              *prometheus.GaugeVec
}

func New(version string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuwhat_http_requests_total",
				Help: "HTTP requests served, by route and status code.",
			},
			[]string{"route", "code"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docuwhat_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"route"},
		),
		RendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuwhat_page_renders_total",
				Help: "Pages rendered, by page kind and result.",
			},
			[]string{"kind", "result"},
		),
		SearchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docuwhat_searches_total",
			Help: "Search queries answered.",
		}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docuwhat_search_results",
			Help:    "Number of results returned per search.",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		BuildPages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docuwhat_build_pages",
			Help: "Pages written by the last static build.",
		}),
		BuildDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docuwhat_build_duration_seconds",
			Help:    "Static build duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		ReloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docuwhat_live_reloads_total",
			Help: "Reload broadcasts sent to live-reload clients.",
		}),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "docuwhat_info",
				Help: "Build information.",
			},
			[]string{"version"},
		),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSeconds,
		m.RendersTotal,
		m.SearchesTotal,
		m.SearchResults,
		m.BuildPages,
		m.BuildDurationSeconds,
		m.ReloadsTotal,
		m.BuildInfo,
	)
	m.BuildInfo.WithLabelValues(version).Set(1)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDurationSeconds.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) ObserveRender(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RendersTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveSearch(results int) {
	if m == nil {
		return
	}
	m.SearchesTotal.Inc()
	m.SearchResults.Observe(float64(results))
}

func (m *Metrics) ObserveBuild(pages int, d time.Duration) {
	if m == nil {
		return
	}
	m.BuildPages.Set(float64(pages))
	m.BuildDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) ObserveReload() {
	if m == nil {
		return
	}
	m.ReloadsTotal.Inc()
}
