package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/utils"
)

// HeaderIdempotencyKey carries the client's retry key on POST requests.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a live record for this key.
func IsReplay(c *gin.Context) bool {
	b, _ := c.Get(ctxKeyIdemReplay)
	v, _ := b.(bool)
	return v
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts key characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// BasePath is stripped from the URL path to form the scope, so
	// POST /api/articles/3/comments has scope "articles/3/comments".
	BasePath string
}

// IdempotencyLookup reports whether a still-valid record exists for
// (scope, key) at now. Errors are treated as "no record".
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (bool, error)

// IdempotencyValidator validates the Idempotency-Key header on POST requests
// and stashes it for handlers. When lookup finds a prior record the request
// is flagged as a replay and exempted from rate limiting. The stored resource
// itself is served by the service layer.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}
	base := strings.TrimRight(opts.BasePath, "/")

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(c, "invalid_query", "invalid Idempotency-Key"))
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			scope := IdempotencyScope(c.Request.URL.Path, base)
			if found, err := lookup(c.Request.Context(), scope, key, time.Now().UTC()); err == nil && found {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// IdempotencyScope derives the record scope from a request path. Numeric
// segments are written in canonical form ("03" becomes "3"), matching the
// scope the services store under the parsed id.
func IdempotencyScope(path, basePath string) string {
	p := strings.TrimPrefix(path, strings.TrimRight(basePath, "/"))
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segs {
		if id, ok := utils.ParseID(seg); ok {
			segs[i] = strconv.FormatInt(id, 10)
		}
	}
	return strings.Join(segs, "/")
}
