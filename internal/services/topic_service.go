// Package services – TopicService and UserService
//
// Topics are created once and never modified; users are read-only through the
// API. Both services are thin: they normalize input and delegate to the
// repository.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

// TopicRepo defines the repository contract required by TopicService.
type TopicRepo interface {
	// ListTopics returns every topic ordered by slug.
	ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error)
	// CreateTopic inserts a topic; a duplicate slug is a unique violation.
	CreateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error
}

// TopicService lists and creates topics.
type TopicService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the topic repository used by this service.
	Repo TopicRepo
}

// NewTopicService constructs a TopicService.
func NewTopicService(db *gorm.DB, r TopicRepo) *TopicService {
	return &TopicService{DB: db, Repo: r}
}

// List returns all topics.
func (s *TopicService) List(ctx context.Context) ([]domain.Topic, error) {
	return s.Repo.ListTopics(ctx, s.DB)
}

// Create stores a new topic. The slug is required; a nil description is
// stored as NULL.
func (s *TopicService) Create(ctx context.Context, slug string, description *string) (*domain.Topic, error) {
	slug = normalizeKey(slug)
	if slug == "" {
		return nil, ErrMissingField
	}
	t := &domain.Topic{Slug: slug}
	if description != nil {
		d := normalizeText(*description)
		t.Description = &d
	}
	if err := s.Repo.CreateTopic(ctx, s.DB, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UserService exposes read-only access to users.
type UserService struct {
	DB *gorm.DB
}

// List returns all users ordered by username.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return repo.ListUsers(ctx, s.DB)
}

// Get returns the user or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	return repo.GetUser(ctx, s.DB, username)
}
