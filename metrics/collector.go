// File: /metrics/collector.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service metrics on a private registry.
type Collector struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec // method, route, status

	TrailsCreated      prometheus.Counter
	Submissions        *prometheus.CounterVec // outcome: success|validation|auth|network|encoding|error
	SubmissionDuration prometheus.Histogram

	RoutingLegs      prometheus.Counter
	RoutingFallbacks prometheus.Counter

	ActiveSessions prometheus.Gauge

	EventsPublished *prometheus.CounterVec // subject
	EventErrors     prometheus.Counter
	NATSConnected   prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailcraft_http_requests_total",
			Help: "HTTP requests handled, by route and status.",
		}, []string{"method", "route", "status"}),
		TrailsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailcraft_trails_created_total",
			Help: "Trails stored through the API.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailcraft_submissions_total",
			Help: "createTrail submissions by outcome.",
		}, []string{"outcome"}),
		SubmissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trailcraft_submission_duration_seconds",
			Help:    "Time from submit request to external acknowledgement or failure.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		RoutingLegs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailcraft_routing_legs_total",
			Help: "Point pairs sent through directions routing.",
		}),
		RoutingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailcraft_routing_fallbacks_total",
			Help: "Legs that fell back to a straight line.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trailcraft_active_sessions",
			Help: "Editing sessions currently held in memory.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailcraft_events_published_total",
			Help: "Events published to NATS, by subject.",
		}, []string{"subject"}),
		EventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailcraft_event_publish_errors_total",
			Help: "Failed NATS publishes.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trailcraft_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.HTTPRequests,
		c.TrailsCreated, c.Submissions, c.SubmissionDuration,
		c.RoutingLegs, c.RoutingFallbacks,
		c.ActiveSessions,
		c.EventsPublished, c.EventErrors, c.NATSConnected,
	)

	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// SubmissionObserved counts a finished submission and records its duration.
func (c *Collector) SubmissionObserved(outcome string, d time.Duration) {
	c.Submissions.WithLabelValues(outcome).Inc()
	c.SubmissionDuration.Observe(d.Seconds())
}

func (c *Collector) ActiveSessionsSet(n int) { c.ActiveSessions.Set(float64(n)) }

// RoutingObserved counts routed legs and how many fell back to straight lines.
func (c *Collector) RoutingObserved(legs, fallbacks int) {
	c.RoutingLegs.Add(float64(legs))
	c.RoutingFallbacks.Add(float64(fallbacks))
}

func (c *Collector) TrailCreated() { c.TrailsCreated.Inc() }

// RequestObserved counts one handled HTTP request.
func (c *Collector) RequestObserved(method, route string, status int) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// EventPublished counts a publish attempt; failures go to the error counter.
func (c *Collector) EventPublished(subject string, err error) {
	if err != nil {
		c.EventErrors.Inc()
		return
	}
	c.EventsPublished.WithLabelValues(subject).Inc()
}

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}
