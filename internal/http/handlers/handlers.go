// Package handlers exposes the REST endpoints for topics, articles, comments
// and users.
//
// Handlers are transport-thin: they parse path, query and body input into
// typed values, call application services, and serialize results. Every
// failure goes through respondErr (see errors.go).
package handlers

import (
	"context"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// TopicService lists and creates topics.
type TopicService interface {
	List(ctx context.Context) ([]domain.Topic, error)
	Create(ctx context.Context, slug string, description *string) (*domain.Topic, error)
}

// ArticleService defines article operations consumed by HTTP handlers.
type ArticleService interface {
	// List returns a page of articles and the unpaginated match count.
	List(ctx context.Context, q domain.ArticleQuery) ([]domain.Article, int64, error)
	Get(ctx context.Context, id int64) (*domain.Article, error)
	// Create reports replayed=true when idemKey matched an earlier request.
	Create(ctx context.Context, in services.NewArticle, idemKey string) (*domain.Article, bool, error)
	Vote(ctx context.Context, id int64, delta int) (*domain.Article, error)
	Delete(ctx context.Context, id int64) error
}

// CommentService defines comment operations consumed by HTTP handlers.
type CommentService interface {
	ListForArticle(ctx context.Context, articleID int64, p domain.Page) ([]domain.Comment, error)
	// Stats feeds the weak ETag of the comment list.
	Stats(ctx context.Context, articleID int64) (domain.CommentStats, error)
	Create(ctx context.Context, articleID int64, in services.NewComment, idemKey string) (*domain.Comment, bool, error)
	Vote(ctx context.Context, id int64, delta int) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// UserService exposes read-only user lookups.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	topics   TopicService
	articles ArticleService
	comments CommentService
	users    UserService
}

// New constructs a Handlers instance bound to the given services and
// registers the custom validation tags used by the request DTOs.
func New(topics TopicService, articles ArticleService, comments CommentService, users UserService) *Handlers {
	registerValidators()
	return &Handlers{topics: topics, articles: articles, comments: comments, users: users}
}
