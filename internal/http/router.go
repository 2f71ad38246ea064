// Package httpapi wires the Gin engine to the news services: middleware,
// fallbacks, operational endpoints and the public API under the configured
// base path.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/apidoc"
	"github.com/tbourn/go-news-backend/internal/http/handlers"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/services"
)

// maxBodyBytes caps request bodies for every route.
const maxBodyBytes = 1 << 20

// topicRepoShim adapts the repo free functions to services.TopicRepo.
type topicRepoShim struct{}

func (topicRepoShim) ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	return repo.ListTopics(ctx, db)
}

func (topicRepoShim) CreateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error {
	return repo.CreateTopic(ctx, db, t)
}

// idempotencyLookup answers the middleware from the idempotency table.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
		_, err := repo.GetIdempotency(ctx, db, scope, key, now)
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}
}

// RegisterRoutes installs middleware and every endpoint on r.
//
// Middleware order:
//  1. otelgin tracing
//  2. RequestID, RedactingLogger, Recovery
//  3. body size limit
//  4. Prometheus metrics
//  5. gzip
//  6. idempotency validation (before the limiter so replays bypass it)
//  7. per-IP rate limiter
//  8. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, version string) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", middleware.MetricsHandler())

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200, BasePath: cfg.APIBasePath},
		idempotencyLookup(db),
	))
	r.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP()).Handler())

	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		NoStoreWrites: true,
		EnablePolicy:  true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, handlers.MsgPathNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", healthHandler(db))

	if cfg.SwaggerEnabled {
		if err := apidoc.Register(cfg.APIBasePath, version); err != nil {
			log.Error().Err(err).Msg("swagger doc not registered")
		} else {
			r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		}
	}

	h := handlers.New(
		services.NewTopicService(db, topicRepoShim{}),
		&services.ArticleService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL},
		&services.CommentService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL},
		&services.UserService{DB: db},
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("", handlers.ServeCatalog(cfg.APIBasePath))

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
	}
}

// corsConfig allows every origin when none are configured, otherwise only the
// listed ones. Credentials are never allowed.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey, middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID, "ETag", "Idempotency-Replayed", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// healthHandler reports 200 when the database answers a ping, 503 otherwise.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// limitBody caps the request body at maxBytes; larger bodies fail to decode.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
