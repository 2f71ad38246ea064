// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for topics and
// users.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
//
// Error semantics:
//   - A missing row is reported as a tagged domain error (e.g. "topic not
//     found"), never as gorm.ErrRecordNotFound.
//   - Constraint failures propagate as raw driver errors; the HTTP layer
//     classifies them through ClassifyViolation.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ListTopics returns every topic ordered by slug.
func ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	out := []domain.Topic{}
	err := db.WithContext(ctx).Order("slug asc").Find(&out).Error
	return out, err
}

// CreateTopic inserts a topic. A duplicate slug surfaces as a unique violation.
func CreateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error {
	return db.WithContext(ctx).Create(t).Error
}

// TopicExists reports ("topic not found") when slug is unknown.
func TopicExists(ctx context.Context, db *gorm.DB, slug string) error {
	return exists(ctx, db, &domain.Topic{}, "slug = ?", slug, "topic")
}

// ListUsers returns every user ordered by username.
func ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	out := []domain.User{}
	err := db.WithContext(ctx).Order("username asc").Find(&out).Error
	return out, err
}

// GetUser fetches a user by username or returns "user not found".
func GetUser(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AuthorExists reports ("author not found") when username is unknown.
func AuthorExists(ctx context.Context, db *gorm.DB, username string) error {
	return exists(ctx, db, &domain.User{}, "username = ?", username, "author")
}

// exists counts rows of model matching cond and returns a not-found error
// naming resource when there are none.
func exists(ctx context.Context, db *gorm.DB, model any, cond string, arg any, resource string) error {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where(cond, arg).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(resource)
	}
	return nil
}
