package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/repo"
)

// defaultIdempotencyTTL applies when a service is built without a TTL.
const defaultIdempotencyTTL = 24 * time.Hour

// createOnce runs create at most once per (scope, key) within ttl and returns
// the id of the resource it produced. When key is empty create always runs.
// A replay returns the recorded id with replayed=true and does not call
// create. The insert and its idempotency record commit together.
func createOnce(ctx context.Context, db *gorm.DB, ttl time.Duration, scope, key string, create func(tx *gorm.DB) (int64, error)) (id int64, replayed bool, err error) {
	if key == "" {
		id, err = create(db)
		return id, false, err
	}
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}

	rec, err := repo.GetIdempotency(ctx, db, scope, key, time.Now().UTC())
	switch {
	case err == nil:
		return rec.ResourceID, true, nil
	case !errors.Is(err, repo.ErrNotFound):
		return 0, false, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cerr error
		if id, cerr = create(tx); cerr != nil {
			return cerr
		}
		// Expired records would otherwise collide on (scope, key).
		if _, cerr = repo.PurgeExpiredIdempotency(ctx, tx, time.Now().UTC()); cerr != nil {
			return cerr
		}
		_, cerr = repo.CreateIdempotency(ctx, tx, scope, key, id, http.StatusCreated, ttl)
		return cerr
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key committed first.
		rec, gerr := repo.GetIdempotency(ctx, db, scope, key, time.Now().UTC())
		if gerr != nil {
			return 0, false, gerr
		}
		return rec.ResourceID, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, false, nil
}
