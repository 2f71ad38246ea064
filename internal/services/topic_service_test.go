package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ----- Fake repo -----

type fakeTopicRepo struct {
	listOut []domain.Topic
	listErr error

	created   *domain.Topic
	createErr error
}

func (r *fakeTopicRepo) ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	return r.listOut, r.listErr
}

func (r *fakeTopicRepo) CreateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error {
	r.created = t
	return r.createErr
}

// ----- Tests -----

func TestTopicService_List(t *testing.T) {
	r := &fakeTopicRepo{listOut: []domain.Topic{{Slug: "a"}, {Slug: "b"}}}
	s := NewTopicService(nil, r)
	got, err := s.List(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("List: %v err=%v", got, err)
	}

	r.listErr = errors.New("db down")
	if _, err := s.List(context.Background()); err == nil {
		t.Fatal("expected repo error to propagate")
	}
}

func TestTopicService_Create_NormalizesInput(t *testing.T) {
	r := &fakeTopicRepo{}
	s := NewTopicService(nil, r)

	// "e" + combining acute accent composes to U+00E9 under NFC.
	desc := "cafe\u0301"
	got, err := s.Create(context.Background(), "  coding ", &desc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Slug != "coding" || r.created.Slug != "coding" {
		t.Fatalf("slug not trimmed: %+v", got)
	}
	if got.Description == nil || *got.Description != "caf\u00e9" {
		t.Fatalf("description not NFC: %q", *got.Description)
	}
}

func TestTopicService_Create_NilDescription(t *testing.T) {
	r := &fakeTopicRepo{}
	s := NewTopicService(nil, r)
	got, err := s.Create(context.Background(), "x", nil)
	if err != nil || got.Description != nil {
		t.Fatalf("expected nil description, got %+v err=%v", got, err)
	}
}

func TestTopicService_Create_BlankSlug(t *testing.T) {
	r := &fakeTopicRepo{}
	s := NewTopicService(nil, r)
	_, err := s.Create(context.Background(), "   ", nil)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if r.created != nil {
		t.Fatal("repo must not be called for a blank slug")
	}
}

func TestTopicService_Create_RepoError(t *testing.T) {
	r := &fakeTopicRepo{createErr: errors.New("unique")}
	s := NewTopicService(nil, r)
	if _, err := s.Create(context.Background(), "x", nil); err == nil {
		t.Fatal("expected repo error")
	}
}

func TestUserService(t *testing.T) {
	db := newSeededDB(t)
	s := &UserService{DB: db}
	ctx := context.Background()

	users, err := s.List(ctx)
	if err != nil || len(users) != 4 {
		t.Fatalf("List: %d err=%v", len(users), err)
	}
	u, err := s.Get(ctx, "butter_bridge")
	if err != nil || u.Name != "jonny" {
		t.Fatalf("Get: %+v err=%v", u, err)
	}
	if _, err := s.Get(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
