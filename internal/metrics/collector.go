package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector manages Prometheus metrics for the compliance engine
type Collector struct {
	evaluationsTotal    *prometheus.CounterVec
	readinessScore      *prometheus.GaugeVec
	reportDuration      prometheus.Histogram
	reportCacheTotal    *prometheus.CounterVec
	sweepsTotal         *prometheus.CounterVec
	sweepDuration       prometheus.Histogram
	eventsPublished     *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates the collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_engine_evaluations_total",
				Help: "Total number of compliance rule evaluations",
			},
			[]string{"rule", "outcome"},
		),
		readinessScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "compliance_engine_readiness_score",
				Help: "Most recent overall readiness score per organisation",
			},
			[]string{"organization_id", "jurisdiction"},
		),
		reportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "compliance_engine_readiness_report_duration_seconds",
				Help:    "Time spent building readiness reports",
				Buckets: prometheus.DefBuckets,
			},
		),
		reportCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_engine_report_cache_total",
				Help: "Readiness report cache lookups",
			},
			[]string{"result"},
		),
		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_engine_sweeps_total",
				Help: "Scheduled readiness sweeps per organisation",
			},
			[]string{"status"},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "compliance_engine_sweep_duration_seconds",
				Help:    "Duration of full readiness sweeps",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_engine_events_published_total",
				Help: "Compliance events published",
			},
			[]string{"type", "status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_engine_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compliance_engine_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}

	reg.MustRegister(
		c.evaluationsTotal,
		c.readinessScore,
		c.reportDuration,
		c.reportCacheTotal,
		c.sweepsTotal,
		c.sweepDuration,
		c.eventsPublished,
		c.httpRequestsTotal,
		c.httpRequestDuration,
	)

	return c
}

// RecordEvaluation counts a rule evaluation
func (c *Collector) RecordEvaluation(rule string, compliant bool) {
	outcome := "non_compliant"
	if compliant {
		outcome = "compliant"
	}
	c.evaluationsTotal.WithLabelValues(rule, outcome).Inc()
}

// RecordReadiness records a freshly built report
func (c *Collector) RecordReadiness(orgID, jurisdiction string, score int, duration time.Duration) {
	c.readinessScore.WithLabelValues(orgID, jurisdiction).Set(float64(score))
	c.reportDuration.Observe(duration.Seconds())
}

// RecordCacheLookup counts a report cache hit or miss
func (c *Collector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.reportCacheTotal.WithLabelValues(result).Inc()
}

// RecordSweep records the outcome of a full sweep
func (c *Collector) RecordSweep(succeeded, failed int, duration time.Duration) {
	c.sweepsTotal.WithLabelValues("success").Add(float64(succeeded))
	c.sweepsTotal.WithLabelValues("error").Add(float64(failed))
	c.sweepDuration.Observe(duration.Seconds())
}

// RecordEventPublished counts a published or failed event
func (c *Collector) RecordEventPublished(eventType string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.eventsPublished.WithLabelValues(eventType, status).Inc()
}

// RecordHTTPRequest records HTTP request metrics
func (c *Collector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// GinMiddleware records request counts and latency by route template
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		c.RecordHTTPRequest(ctx.Request.Method, endpoint, strconv.Itoa(ctx.Writer.Status()), time.Since(start))
	}
}
