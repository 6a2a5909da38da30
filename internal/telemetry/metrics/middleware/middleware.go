// Package middleware instruments plain http handlers (the metrics endpoint itself)
// with the promhttp instrumentation helpers.
package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Middleware interface {
	WrapHandler(handlerName string, handler http.Handler) http.Handler
}

type middleware struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// New registers the handler metrics on reg. Nil buckets fall back to the prometheus defaults.
func New(reg prometheus.Registerer, buckets []float64) Middleware {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	factory := promauto.With(reg)
	return &middleware{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Tracks the number of HTTP requests.",
			}, []string{"method", "code", "handler"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Tracks the latencies for HTTP requests.",
				Buckets: buckets,
			},
			[]string{"method", "code", "handler"},
		),
		requestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served.",
		}),
	}
}

func (m *middleware) WrapHandler(handlerName string, handler http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": handlerName}
	return promhttp.InstrumentHandlerInFlight(
		m.requestsInFlight,
		promhttp.InstrumentHandlerDuration(
			m.requestDuration.MustCurryWith(labels),
			promhttp.InstrumentHandlerCounter(
				m.requestsTotal.MustCurryWith(labels),
				handler,
			),
		),
	)
}
