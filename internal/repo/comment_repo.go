// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Comment model.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ListArticleComments returns a page of an article's comments, newest first
// (comment_id breaks ties).
func ListArticleComments(ctx context.Context, db *gorm.DB, articleID int64, p domain.Page) ([]domain.Comment, error) {
	out := []domain.Comment{}
	err := db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at desc, comment_id desc").
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&out).Error
	return out, err
}

// GetComment fetches a comment by ID or returns "comment not found".
func GetComment(ctx context.Context, db *gorm.DB, id int64) (*domain.Comment, error) {
	var c domain.Comment
	err := db.WithContext(ctx).Where("comment_id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("comment")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts c. The article and author references are checked by
// the database; a violation names article_id or author.
func CreateComment(ctx context.Context, db *gorm.DB, c *domain.Comment) error {
	err := db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
	if err == nil {
		return nil
	}
	return resolveForeignKey(ctx, db, err,
		fkProbe{key: "article_id", model: &domain.Article{}, cond: "article_id = ?", arg: c.ArticleID},
		fkProbe{key: "author", model: &domain.User{}, cond: "username = ?", arg: c.Author},
	)
}

// AdjustCommentVotes adds delta to the comment's votes in a single UPDATE and
// returns the updated row.
func AdjustCommentVotes(ctx context.Context, db *gorm.DB, id int64, delta int) (*domain.Comment, error) {
	var out *domain.Comment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Comment{}).
			Where("comment_id = ?", id).
			UpdateColumn("votes", gorm.Expr("votes + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("comment")
		}
		c, err := GetComment(ctx, tx, id)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// DeleteComment removes a comment or reports "comment not found".
func DeleteComment(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("comment_id = ?", id).Delete(&domain.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("comment")
	}
	return nil
}
