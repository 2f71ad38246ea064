package services

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/repo"
)

// newSeededDB opens a private SQLite file and loads the shared repo fixture.
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
