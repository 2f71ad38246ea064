// Package services – ArticleService
//
// ArticleService owns the article lifecycle: filtered listing with a total
// count, retrieval, creation (with optional Idempotency-Key replay), vote
// adjustment and deletion.
//
// Listing issues its independent reads (page, total count, topic and author
// existence) concurrently and fails with the first error, so an unknown topic
// or author filter yields "topic not found" / "author not found" rather than
// an empty page.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

// NewArticle is the validated input for ArticleService.Create.
type NewArticle struct {
	Title         string
	Topic         string
	Author        string
	Body          string
	ArticleImgURL string
}

// ArticleService coordinates article persistence.
type ArticleService struct {
	DB *gorm.DB
	// IdempotencyTTL bounds how long an Idempotency-Key replays its result.
	IdempotencyTTL time.Duration
}

func articleTracer() trace.Tracer { return otel.Tracer("services/ArticleService") }

// List returns one page of articles for q together with the number of
// articles matching q's filter before pagination.
func (s *ArticleService) List(ctx context.Context, q domain.ArticleQuery) ([]domain.Article, int64, error) {
	ctx, span := articleTracer().Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("filter.topic", q.Topic),
			attribute.String("filter.author", q.Author),
			attribute.String("sort_by", q.SortBy.String()),
			attribute.Int("limit", q.Limit),
			attribute.Int("page", q.Page.Page),
		),
	)
	defer span.End()

	var (
		items []domain.Article
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = repo.ListArticles(gctx, s.DB, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.CountArticles(gctx, s.DB, q.ArticleFilter)
		return err
	})
	if q.Topic != "" {
		g.Go(func() error { return repo.TopicExists(gctx, s.DB, q.Topic) })
	}
	if q.Author != "" {
		g.Go(func() error { return repo.AuthorExists(gctx, s.DB, q.Author) })
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns the article with its body and comment count.
func (s *ArticleService) Get(ctx context.Context, id int64) (*domain.Article, error) {
	ctx, span := articleTracer().Start(ctx, "Get", trace.WithAttributes(attribute.Int64("article.id", id)))
	defer span.End()
	return repo.GetArticle(ctx, s.DB, id)
}

// Create stores a new article and returns it as read back from the database
// (comment_count 0, server-assigned created_at). When idemKey is set and was
// already used within the TTL, the earlier article is returned with
// replayed=true.
func (s *ArticleService) Create(ctx context.Context, in NewArticle, idemKey string) (*domain.Article, bool, error) {
	ctx, span := articleTracer().Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("article.topic", in.Topic),
			attribute.String("article.author", in.Author),
			attribute.Bool("idempotent", idemKey != ""),
		),
	)
	defer span.End()

	a := &domain.Article{
		Title:         normalizeText(in.Title),
		Topic:         normalizeKey(in.Topic),
		Author:        normalizeKey(in.Author),
		Body:          normalizeText(in.Body),
		ArticleImgURL: normalizeKey(in.ArticleImgURL),
	}
	if isBlank(a.Title) || a.Topic == "" || a.Author == "" || isBlank(a.Body) {
		return nil, false, ErrMissingField
	}
	if a.ArticleImgURL == "" {
		a.ArticleImgURL = domain.DefaultArticleImgURL
	}

	id, replayed, err := createOnce(ctx, s.DB, s.IdempotencyTTL, "articles", idemKey, func(tx *gorm.DB) (int64, error) {
		if err := repo.CreateArticle(ctx, tx, a); err != nil {
			return 0, err
		}
		return a.ArticleID, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	out, err := repo.GetArticle(ctx, s.DB, id)
	return out, replayed, err
}

// Vote adds delta to the article's votes and returns the updated article.
func (s *ArticleService) Vote(ctx context.Context, id int64, delta int) (*domain.Article, error) {
	ctx, span := articleTracer().Start(ctx, "Vote",
		trace.WithAttributes(attribute.Int64("article.id", id), attribute.Int("delta", delta)),
	)
	defer span.End()
	return repo.AdjustArticleVotes(ctx, s.DB, id, delta)
}

// Delete removes the article and its comments.
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	ctx, span := articleTracer().Start(ctx, "Delete", trace.WithAttributes(attribute.Int64("article.id", id)))
	defer span.End()
	return repo.DeleteArticle(ctx, s.DB, id)
}
