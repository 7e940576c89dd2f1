package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	t.Run("Evaluations", func(t *testing.T) {
		c := NewCollector(prometheus.NewRegistry())
		c.RecordEvaluation("release_distance", true)
		c.RecordEvaluation("release_distance", false)
		c.RecordEvaluation("release_distance", false)

		assert.Equal(t, 1.0, testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("release_distance", "compliant")))
		assert.Equal(t, 2.0, testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("release_distance", "non_compliant")))
	})

	t.Run("Readiness Score", func(t *testing.T) {
		c := NewCollector(prometheus.NewRegistry())
		c.RecordReadiness("org-1", "ACT", 85, 10*time.Millisecond)
		c.RecordReadiness("org-1", "ACT", 70, 10*time.Millisecond)

		assert.Equal(t, 70.0, testutil.ToFloat64(c.readinessScore.WithLabelValues("org-1", "ACT")))
	})

	t.Run("Sweeps And Events", func(t *testing.T) {
		c := NewCollector(prometheus.NewRegistry())
		c.RecordSweep(3, 1, time.Second)
		c.RecordEventPublished("incident.logged", nil)
		c.RecordEventPublished("incident.logged", errors.New("down"))
		c.RecordCacheLookup(true)

		assert.Equal(t, 3.0, testutil.ToFloat64(c.sweepsTotal.WithLabelValues("success")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.sweepsTotal.WithLabelValues("error")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.eventsPublished.WithLabelValues("incident.logged", "error")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.reportCacheTotal.WithLabelValues("hit")))
	})

	t.Run("Duplicate Registration Panics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		NewCollector(reg)
		assert.Panics(t, func() { NewCollector(reg) })
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewCollector(prometheus.NewRegistry())

	router := gin.New()
	router.Use(c.GinMiddleware())
	router.GET("/api/v1/jurisdictions/:code", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/jurisdictions/ACT", "/api/v1/jurisdictions/NSW", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/api/v1/jurisdictions/:code", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
