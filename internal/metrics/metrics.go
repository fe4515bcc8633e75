// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers HTTP and relay metrics for the TradeTide API.
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    prometheus.Histogram
	relayEvents    *prometheus.CounterVec
	relayConnected prometheus.Gauge
	messagesSent   prometheus.Counter
	registry       *prometheus.Registry
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradetide_http_requests_total",
			Help: "HTTP responses by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradetide_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		relayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradetide_relay_events_total",
			Help: "Relay events processed by event name",
		}, []string{"event"}),
		relayConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradetide_relay_connections",
			Help: "Currently connected relay clients",
		}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradetide_messages_sent_total",
			Help: "Chat messages persisted",
		}),
		registry: registry,
	}

	registry.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.relayEvents,
		c.relayConnected,
		c.messagesSent,
	)

	return c
}

// Handler returns the /metrics endpoint handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTP records one completed HTTP request.
func (c *Collector) RecordHTTP(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordRelayEvent records one processed relay event.
func (c *Collector) RecordRelayEvent(event string) {
	c.relayEvents.WithLabelValues(event).Inc()
}

// RelayConnected tracks a relay client connecting (+1) or leaving (-1).
func (c *Collector) RelayConnected(delta int) {
	c.relayConnected.Add(float64(delta))
}

// RecordMessageSent records one persisted chat message.
func (c *Collector) RecordMessageSent() {
	c.messagesSent.Inc()
}

// Middleware instruments HTTP handlers with the request counter and latency
// histogram.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.RecordHTTP(r.Method, r.URL.Path, rec.statusCode, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Hijack passes through to the underlying writer so websocket upgrades work
// behind this middleware.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}
