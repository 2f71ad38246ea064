// Package services – CommentService
//
// CommentService manages comments on articles: newest-first paginated
// listing, creation (with optional Idempotency-Key replay), vote adjustment
// and deletion. It also exposes the aggregate used for comment-list ETags.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

// NewComment is the validated input for CommentService.Create.
type NewComment struct {
	Author string
	Body   string
	Votes  int
}

// CommentService coordinates comment persistence.
type CommentService struct {
	DB             *gorm.DB
	IdempotencyTTL time.Duration
}

func commentTracer() trace.Tracer { return otel.Tracer("services/CommentService") }

// ListForArticle returns a page of the article's comments, newest first. An
// unknown article is "article not found"; an article without comments yields
// an empty slice.
func (s *CommentService) ListForArticle(ctx context.Context, articleID int64, p domain.Page) ([]domain.Comment, error) {
	ctx, span := commentTracer().Start(ctx, "ListForArticle",
		trace.WithAttributes(
			attribute.Int64("article.id", articleID),
			attribute.Int("limit", p.Limit),
			attribute.Int("page", p.Page),
		),
	)
	defer span.End()

	var items []domain.Comment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return repo.ArticleExists(gctx, s.DB, articleID) })
	g.Go(func() error {
		var err error
		items, err = repo.ListArticleComments(gctx, s.DB, articleID, p)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return items, nil
}

// Stats summarizes articleID's comments for the list ETag.
func (s *CommentService) Stats(ctx context.Context, articleID int64) (domain.CommentStats, error) {
	return repo.CommentsStats(ctx, s.DB, articleID)
}

// Create posts a comment on articleID. Unknown articles or authors surface as
// foreign-key violations naming article_id or author.
func (s *CommentService) Create(ctx context.Context, articleID int64, in NewComment, idemKey string) (*domain.Comment, bool, error) {
	ctx, span := commentTracer().Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Int64("article.id", articleID),
			attribute.String("comment.author", in.Author),
			attribute.Bool("idempotent", idemKey != ""),
		),
	)
	defer span.End()

	c := &domain.Comment{
		ArticleID: articleID,
		Author:    normalizeKey(in.Author),
		Body:      normalizeText(in.Body),
		Votes:     in.Votes,
	}
	if c.Author == "" || isBlank(c.Body) {
		return nil, false, ErrMissingField
	}

	scope := fmt.Sprintf("articles/%d/comments", articleID)
	id, replayed, err := createOnce(ctx, s.DB, s.IdempotencyTTL, scope, idemKey, func(tx *gorm.DB) (int64, error) {
		if err := repo.CreateComment(ctx, tx, c); err != nil {
			return 0, err
		}
		return c.CommentID, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	if !replayed {
		return c, false, nil
	}
	out, err := repo.GetComment(ctx, s.DB, id)
	return out, true, err
}

// Vote adds delta to the comment's votes and returns the updated comment.
func (s *CommentService) Vote(ctx context.Context, id int64, delta int) (*domain.Comment, error) {
	ctx, span := commentTracer().Start(ctx, "Vote",
		trace.WithAttributes(attribute.Int64("comment.id", id), attribute.Int("delta", delta)),
	)
	defer span.End()
	return repo.AdjustCommentVotes(ctx, s.DB, id, delta)
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id int64) error {
	ctx, span := commentTracer().Start(ctx, "Delete", trace.WithAttributes(attribute.Int64("comment.id", id)))
	defer span.End()
	return repo.DeleteComment(ctx, s.DB, id)
}
