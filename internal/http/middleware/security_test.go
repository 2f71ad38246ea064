package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	h := do(r, http.MethodGet, "/x", nil).Header()
	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline missing: %v", h)
	}
	if h.Get("Cache-Control") != "" || h.Get("Permissions-Policy") != "" || h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("optional headers set: %v", h)
	}
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, ETag, Idempotency-Replayed" {
		t.Fatalf("expose=%q", got)
	}
}

func TestSecurityHeaders_CacheControlByMethod(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{NoStoreWrites: true}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	if got := do(r, http.MethodGet, "/x", nil).Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("GET Cache-Control=%q", got)
	}
	if got := do(r, http.MethodPost, "/x", nil).Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("POST Cache-Control=%q", got)
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour, EnablePolicy: true}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	if h := do(r, http.MethodGet, "/x", nil).Header(); h.Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS over plain HTTP")
	}
	h := do(r, http.MethodGet, "/x", map[string]string{"X-Forwarded-Proto": "HTTPS"}).Header()
	if h.Get("Strict-Transport-Security") != "max-age=3600; includeSubDomains; preload" {
		t.Fatalf("HSTS=%q", h.Get("Strict-Transport-Security"))
	}
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatal("policy headers missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.TLS = &tls.ConnectionState{}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if !strings.HasPrefix(w.Header().Get("Strict-Transport-Security"), "max-age=3600") {
		t.Fatal("HSTS missing on TLS request")
	}
}

func TestAddExposed_NoDuplicates(t *testing.T) {
	h := http.Header{}
	h.Set(exposeHeaders, "Foo, x-request-id")
	addExposed(h, HeaderRequestID)
	addExposed(h, "ETag")
	if got := h.Get(exposeHeaders); got != "Foo, x-request-id, ETag" {
		t.Fatalf("expose=%q", got)
	}
}
