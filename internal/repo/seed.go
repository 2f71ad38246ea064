// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file loads a JSON dataset and reseeds the database
// from it, recreating the content tables so generated IDs start at 1.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// Dataset is the seed payload. Comments reference articles by their 1-based
// position in Articles, which becomes the generated article_id.
type Dataset struct {
	Topics   []domain.Topic   `json:"topics"`
	Users    []domain.User    `json:"users"`
	Articles []domain.Article `json:"articles"`
	Comments []domain.Comment `json:"comments"`
}

// LoadDataset reads and decodes a JSON dataset from path.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Seed drops and recreates the schema, then inserts ds in dependency order
// inside one transaction.
func Seed(ctx context.Context, db *gorm.DB, ds *Dataset) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Children first, one table per call; a batched DropTable reorders
		// by dependency and fails on tables that do not exist yet.
		for _, m := range []any{
			&domain.Idempotency{},
			&domain.Comment{},
			&domain.Article{},
			&domain.User{},
			&domain.Topic{},
		} {
			if err := tx.Migrator().DropTable(m); err != nil {
				return fmt.Errorf("drop tables: %w", err)
			}
		}
		if err := AutoMigrate(tx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		steps := []struct {
			name string
			rows any
			n    int
		}{
			{"topics", &ds.Topics, len(ds.Topics)},
			{"users", &ds.Users, len(ds.Users)},
			{"articles", &ds.Articles, len(ds.Articles)},
			{"comments", &ds.Comments, len(ds.Comments)},
		}
		for _, s := range steps {
			if s.n == 0 {
				continue
			}
			// Articles and comments go in one at a time so IDs follow
			// dataset order on every driver.
			if err := tx.Omit(clause.Associations).CreateInBatches(s.rows, 1).Error; err != nil {
				return fmt.Errorf("insert %s: %w", s.name, err)
			}
		}
		return nil
	})
}
