package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests only.
	EnableHSTS bool
	// HSTSMaxAge defaults to 180 days.
	HSTSMaxAge time.Duration
	// NoStoreWrites marks responses to non-GET requests Cache-Control: no-store.
	// GET responses get "no-cache" so clients revalidate with the ETag.
	NoStoreWrites bool
	// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
}

const exposeHeaders = "Access-Control-Expose-Headers"

// SecurityHeaders sets baseline hardening headers for a JSON API and exposes
// the correlation, ETag and replay headers to browser clients.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.NoStoreWrites {
			if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
				h.Set("Cache-Control", "no-cache")
			} else {
				h.Set("Cache-Control", "no-store")
			}
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		for _, name := range []string{HeaderRequestID, "ETag", "Idempotency-Replayed"} {
			addExposed(h, name)
		}

		c.Next()
	}
}

// addExposed appends name to Access-Control-Expose-Headers once.
func addExposed(h http.Header, name string) {
	cur := h.Get(exposeHeaders)
	if cur == "" {
		h.Set(exposeHeaders, name)
		return
	}
	for _, part := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(part), name) {
			return
		}
	}
	h.Set(exposeHeaders, cur+", "+name)
}

// isHTTPS reports TLS directly or via X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
