// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// CommentsStats summarizes the comments on an article: how many there are,
// the highest comment_id, the vote total and the newest CreatedAt. An article
// without comments yields the zero value.
func CommentsStats(ctx context.Context, db *gorm.DB, articleID int64) (domain.CommentStats, error) {
	var st domain.CommentStats
	var agg struct {
		Count   int64
		MaxID   int64
		VoteSum int64
	}
	err := db.WithContext(ctx).Model(&domain.Comment{}).
		Where("article_id = ?", articleID).
		Select("COUNT(*) AS count, " +
			"COALESCE(MAX(comment_id), 0) AS max_id, " +
			"CAST(COALESCE(SUM(votes), 0) AS BIGINT) AS vote_sum").
		Scan(&agg).Error
	if err != nil {
		return st, err
	}
	if agg.Count == 0 {
		return st, nil
	}
	st.Count, st.MaxID, st.VoteSum = agg.Count, agg.MaxID, agg.VoteSum

	// ORDER BY + LIMIT instead of MAX(): SQLite returns MAX() of a datetime as TEXT.
	var row struct {
		CreatedAt time.Time
	}
	err = db.WithContext(ctx).Model(&domain.Comment{}).
		Where("article_id = ?", articleID).
		Select("created_at").
		Order("created_at DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return domain.CommentStats{}, err
	}
	st.Newest = row.CreatedAt
	return st, nil
}
