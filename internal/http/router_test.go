package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

func init() { gin.SetMode(gin.TestMode) }

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api",
		RateRPS:        1000,
		RateBurst:      1000,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "news-test"},
	}
}

func newSeededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "news.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	ds, err := repo.LoadDataset(filepath.Join("..", "repo", "testdata", "news.json"))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if err := repo.Seed(context.Background(), db, ds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return db
}

func newEngine(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := newSeededDB(t)
	r := gin.New()
	RegisterRoutes(r, db, cfg, "test")
	return r, db
}

func send(r http.Handler, method, target, body string, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func msgOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return body.Msg
}

func TestRegisterRoutes_Fallbacks(t *testing.T) {
	r, _ := newEngine(t, testConfig())

	w := send(r, http.MethodGet, "/api/not-a-route", "")
	if w.Code != http.StatusNotFound || msgOf(t, w) != "Path not found" {
		t.Fatalf("unknown path: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id missing on fallback")
	}

	w = send(r, http.MethodPut, "/api/topics", `{}`)
	if w.Code != http.StatusMethodNotAllowed || msgOf(t, w) != "method not allowed" {
		t.Fatalf("wrong method: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_HealthMetricsCatalog(t *testing.T) {
	r, db := newEngine(t, testConfig())

	if w := send(r, http.MethodGet, "/health", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}

	send(r, http.MethodGet, "/api/topics", "")
	if w := send(r, http.MethodGet, "/metrics", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "news_http_requests_total") {
		t.Fatalf("metrics: %d", w.Code)
	}

	w := send(r, http.MethodGet, "/api", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"GET /api/articles/:article_id/comments"`) {
		t.Fatalf("catalog: %d %s", w.Code, w.Body.String())
	}

	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
	if w := send(r, http.MethodGet, "/health", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("health after close: %d", w.Code)
	}
}

func TestRegisterRoutes_EndToEnd(t *testing.T) {
	r, _ := newEngine(t, testConfig())

	w := send(r, http.MethodGet, "/api/articles?sort_by=votes&limit=1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total_count":5`) {
		t.Fatalf("articles: %d %s", w.Code, w.Body.String())
	}
	if h := w.Header(); h.Get("X-Content-Type-Options") != "nosniff" || h.Get("Cache-Control") != "no-cache" {
		t.Fatalf("security headers: %v", h)
	}

	w = send(r, http.MethodPatch, "/api/articles/1", `{"inc_votes":-1}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"votes":99`) {
		t.Fatalf("vote: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("write Cache-Control=%q", w.Header().Get("Cache-Control"))
	}

	if w := send(r, http.MethodDelete, "/api/comments/999", ""); w.Code != http.StatusNotFound || msgOf(t, w) != "comment not found" {
		t.Fatalf("delete missing: %d %s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodGet, "/api/articles/abc", ""); w.Code != http.StatusBadRequest || msgOf(t, w) != "invalid query" {
		t.Fatalf("bad id: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_IdempotentReplay(t *testing.T) {
	r, db := newEngine(t, testConfig())
	body := `{"author":"lurker","body":"hi"}`

	first := send(r, http.MethodPost, "/api/articles/2/comments", body, "Idempotency-Key", "r-1")
	second := send(r, http.MethodPost, "/api/articles/2/comments", body, "Idempotency-Key", "r-1")
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("codes=%d,%d", first.Code, second.Code)
	}
	if second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatal("replay header missing")
	}

	var n int64
	db.Model(&domain.Comment{}).Where("article_id = ?", 2).Count(&n)
	if n != 1 {
		t.Fatalf("comments on article 2 = %d", n)
	}
}

func TestRegisterRoutes_ReplayBypassesRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, _ := newEngine(t, cfg)
	body := `{"slug":"once"}`

	if w := send(r, http.MethodPost, "/api/articles", `{"author":"lurker","title":"t","body":"b","topic":"paper"}`, "Idempotency-Key", "rl-1"); w.Code != http.StatusCreated {
		t.Fatalf("first: %d %s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodPost, "/api/topics", body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited: %d", w.Code)
	}
	w := send(r, http.MethodPost, "/api/articles", `{"author":"lurker","title":"t","body":"b","topic":"paper"}`, "Idempotency-Key", "rl-1")
	if w.Code != http.StatusCreated || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay limited: %d", w.Code)
	}
}

func TestRegisterRoutes_ReplayWithZeroPaddedID(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, _ := newEngine(t, cfg)
	body := `{"author":"lurker","body":"hi"}`

	if w := send(r, http.MethodPost, "/api/articles/2/comments", body, "Idempotency-Key", "pad-1"); w.Code != http.StatusCreated {
		t.Fatalf("first: %d %s", w.Code, w.Body.String())
	}
	// The bucket is empty; only a recognized replay gets through.
	w := send(r, http.MethodPost, "/api/articles/002/comments", body, "Idempotency-Key", "pad-1")
	if w.Code != http.StatusCreated || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("padded replay: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_CORS(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://news.example"}
	r, _ := newEngine(t, cfg)

	w := send(r, http.MethodGet, "/api/topics", "", "Origin", "https://news.example")
	if w.Header().Get("Access-Control-Allow-Origin") != "https://news.example" {
		t.Fatalf("allowed origin not echoed: %v", w.Header())
	}
	w = send(r, http.MethodGet, "/api/topics", "", "Origin", "https://evil.example")
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin status=%d", w.Code)
	}

	r, _ = newEngine(t, testConfig())
	w = send(r, http.MethodOptions, "/api/articles", "",
		"Origin", "https://any.example",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "Idempotency-Key")
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: %d %v", w.Code, w.Header())
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ := newEngine(t, cfg)

	w := send(r, http.MethodGet, "/swagger/doc.json", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"swagger": "2.0"`) {
		t.Fatalf("doc.json: %d %s", w.Code, w.Body.String())
	}

	r, _ = newEngine(t, testConfig())
	if w := send(r, http.MethodGet, "/swagger/doc.json", ""); w.Code != http.StatusNotFound {
		t.Fatalf("swagger served while disabled: %d", w.Code)
	}
}

func TestRegisterRoutes_RootBasePath(t *testing.T) {
	cfg := testConfig()
	cfg.APIBasePath = "/"
	r, _ := newEngine(t, cfg)
	if w := send(r, http.MethodGet, "/topics", ""); w.Code != http.StatusOK {
		t.Fatalf("root topics: %d", w.Code)
	}
}

func TestRegisterRoutes_Gzip(t *testing.T) {
	r, _ := newEngine(t, testConfig())
	w := send(r, http.MethodGet, "/api/articles", "", "Accept-Encoding", "gzip")
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding=%q", w.Header().Get("Content-Encoding"))
	}
}

func Test_limitBody(t *testing.T) {
	r := gin.New()
	r.Use(limitBody(8))
	r.POST("/p", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/p", bytes.NewBufferString("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func Test_idempotencyLookup(t *testing.T) {
	db := newSeededDB(t)
	lookup := idempotencyLookup(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if ok, err := lookup(ctx, "articles", "k", now); ok || err != nil {
		t.Fatalf("miss: ok=%v err=%v", ok, err)
	}
	if _, err := repo.CreateIdempotency(ctx, db, "articles", "k", 1, http.StatusCreated, time.Minute); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if ok, err := lookup(ctx, "articles", "k", now); !ok || err != nil {
		t.Fatalf("hit: ok=%v err=%v", ok, err)
	}
	if ok, _ := lookup(ctx, "articles", "k", now.Add(2*time.Minute)); ok {
		t.Fatal("expired record reported")
	}
}
