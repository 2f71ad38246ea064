// Package services defines the business logic for topics, users, articles and
// comments. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// The values are tagged domain errors: the HTTP layer maps them by kind, and
// errors.Is matches any error of the same kind and resource regardless of
// which layer produced it.
package services

import "github.com/tbourn/go-news-backend/internal/domain"

var (
	// ErrArticleNotFound indicates that no article has the requested id.
	ErrArticleNotFound = domain.NotFound("article")

	// ErrCommentNotFound indicates that no comment has the requested id.
	ErrCommentNotFound = domain.NotFound("comment")

	// ErrTopicNotFound is returned when filtering by an unknown topic slug.
	ErrTopicNotFound = domain.NotFound("topic")

	// ErrAuthorNotFound is returned when filtering by an unknown author.
	ErrAuthorNotFound = domain.NotFound("author")

	// ErrUserNotFound indicates that no user has the requested username.
	ErrUserNotFound = domain.NotFound("user")

	// ErrMissingField is returned when a required field is blank.
	ErrMissingField = domain.Missing(nil)
)
