package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabels(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/articles/:article_id", func(c *gin.Context) { c.String(http.StatusOK, "a") })
	r.GET("/metrics", MetricsHandler())

	okC := httpReqs.WithLabelValues("GET", "/api/articles/:article_id", "200")
	missC := httpReqs.WithLabelValues("GET", "unmatched", "404")
	baseOK, baseMiss := testutil.ToFloat64(okC), testutil.ToFloat64(missC)

	do(r, http.MethodGet, "/api/articles/1", nil)
	do(r, http.MethodGet, "/api/articles/2", nil)
	do(r, http.MethodGet, "/nope", nil)

	if got := testutil.ToFloat64(okC) - baseOK; got != 2 {
		t.Fatalf("route counter delta=%v", got)
	}
	if got := testutil.ToFloat64(missC) - baseMiss; got != 1 {
		t.Fatalf("unmatched counter delta=%v", got)
	}
	if v := testutil.ToFloat64(httpInflight); v != 0 {
		t.Fatalf("inflight=%v", v)
	}

	w := do(r, http.MethodGet, "/metrics", nil)
	if !strings.Contains(w.Body.String(), "news_http_requests_total") {
		t.Fatal("metrics endpoint missing namespaced counter")
	}
}

func TestMetrics_CountsReplays(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.POST("/x", func(c *gin.Context) {
		c.Set(ctxKeyIdemReplay, true)
		c.Status(http.StatusCreated)
	})
	base := testutil.ToFloat64(idemReplays)
	do(r, http.MethodPost, "/x", nil)
	if got := testutil.ToFloat64(idemReplays) - base; got != 1 {
		t.Fatalf("replay delta=%v", got)
	}
}
