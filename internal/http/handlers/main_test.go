package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

type topicStore struct{}

func (topicStore) ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	return repo.ListTopics(ctx, db)
}

func (topicStore) CreateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error {
	return repo.CreateTopic(ctx, db, t)
}

// newAPI seeds a private SQLite file and mounts every endpoint under /api
// with real services behind them.
func newAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "news.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	ds, err := repo.LoadDataset(filepath.Join("..", "..", "repo", "testdata", "news.json"))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if err := repo.Seed(context.Background(), db, ds); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	h := New(
		services.NewTopicService(db, topicStore{}),
		&services.ArticleService{DB: db, IdempotencyTTL: time.Hour},
		&services.CommentService{DB: db, IdempotencyTTL: time.Hour},
		&services.UserService{DB: db},
	)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{BasePath: "/api"}, nil))
	api := r.Group("/api")
	api.GET("", ServeCatalog("/api"))
	api.GET("/topics", h.ListTopics)
	api.POST("/topics", h.CreateTopic)
	api.GET("/articles", h.ListArticles)
	api.POST("/articles", h.CreateArticle)
	api.GET("/articles/:article_id", h.GetArticle)
	api.PATCH("/articles/:article_id", h.VoteArticle)
	api.DELETE("/articles/:article_id", h.DeleteArticle)
	api.GET("/articles/:article_id/comments", h.ListComments)
	api.POST("/articles/:article_id/comments", h.CreateComment)
	api.PATCH("/comments/:comment_id", h.VoteComment)
	api.DELETE("/comments/:comment_id", h.DeleteComment)
	api.GET("/users", h.ListUsers)
	api.GET("/users/:username", h.GetUser)
	return r, db
}

// call sends a request with an optional JSON body and extra headers.
func call(r http.Handler, method, target string, body any, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v (body=%s)", err, w.Body.String())
	}
	return v
}

// expectErr asserts the status and msg of an error response.
func expectErr(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d (body=%s)", w.Code, status, w.Body.String())
	}
	if got := decode[ErrorResponse](t, w).Message; got != msg {
		t.Fatalf("msg=%q want %q", got, msg)
	}
}
