// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Article
// model, including the listing query builder.
//
// Functions:
//
//   - ListArticles(ctx, db, q) -> []domain.Article, error
//     Filtered, sorted, paginated listing with a per-row comment_count.
//
//   - CountArticles(ctx, db, f) -> int64, error
//     Number of articles matching the filter, ignoring pagination.
//
//   - GetArticle(ctx, db, id) -> *domain.Article, error
//     Single article with body and comment_count, or "article not found".
//
//   - CreateArticle(ctx, db, a) -> error
//
//   - AdjustArticleVotes(ctx, db, id, delta) -> *domain.Article, error
//     Atomic votes = votes + delta, then re-read.
//
//   - DeleteArticle(ctx, db, id) -> error
//
//   - ArticleExists(ctx, db, id) -> error
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

const (
	articleSummaryColumns = "articles.article_id, articles.title, articles.topic, articles.author, " +
		"articles.created_at, articles.votes, articles.article_img_url"
	commentCountColumn = "COUNT(comments.comment_id) AS comment_count"
	joinComments       = "LEFT JOIN comments ON comments.article_id = articles.article_id"
)

// applyArticleFilter adds the optional topic/author predicates. Both apply
// together (AND) when set.
func applyArticleFilter(q *gorm.DB, f domain.ArticleFilter) *gorm.DB {
	if f.Topic != "" {
		q = q.Where("articles.topic = ?", f.Topic)
	}
	if f.Author != "" {
		q = q.Where("articles.author = ?", f.Author)
	}
	return q
}

// ListArticles returns one page of articles (without body) for the validated
// query. The ORDER BY identifier comes from the SortColumn enum; a secondary
// article_id key in the same direction keeps pages stable.
func ListArticles(ctx context.Context, db *gorm.DB, q domain.ArticleQuery) ([]domain.Article, error) {
	out := []domain.Article{}
	desc := q.Order.Desc()

	stmt := db.WithContext(ctx).
		Table("articles").
		Select(articleSummaryColumns + ", " + commentCountColumn).
		Joins(joinComments)
	stmt = applyArticleFilter(stmt, q.ArticleFilter).
		Group("articles.article_id").
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortBy.Column(), Raw: true}, Desc: desc})
	if q.SortBy != domain.SortArticleID {
		stmt = stmt.Order(clause.OrderByColumn{Column: clause.Column{Name: "articles.article_id", Raw: true}, Desc: desc})
	}

	err := stmt.
		Limit(q.Limit).
		Offset(q.Offset()).
		Scan(&out).Error
	return out, err
}

// CountArticles returns the number of articles matching f before pagination.
func CountArticles(ctx context.Context, db *gorm.DB, f domain.ArticleFilter) (int64, error) {
	var total int64
	err := applyArticleFilter(db.WithContext(ctx).Model(&domain.Article{}), f).
		Count(&total).Error
	return total, err
}

// GetArticle returns the article with its body and comment_count.
func GetArticle(ctx context.Context, db *gorm.DB, id int64) (*domain.Article, error) {
	var out []domain.Article
	err := db.WithContext(ctx).
		Table("articles").
		Select(articleSummaryColumns+", articles.body, "+commentCountColumn).
		Joins(joinComments).
		Where("articles.article_id = ?", id).
		Group("articles.article_id").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.NotFound("article")
	}
	return &out[0], nil
}

// CreateArticle inserts a. Unknown topic or author references surface as
// foreign-key violations; on drivers that do not name the key the offending
// reference is resolved by probing.
func CreateArticle(ctx context.Context, db *gorm.DB, a *domain.Article) error {
	err := db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
	if err == nil {
		return nil
	}
	return resolveForeignKey(ctx, db, err,
		fkProbe{key: "topic", model: &domain.Topic{}, cond: "slug = ?", arg: a.Topic},
		fkProbe{key: "author", model: &domain.User{}, cond: "username = ?", arg: a.Author},
	)
}

// AdjustArticleVotes adds delta to the stored vote total in a single UPDATE
// and returns the updated article. Concurrent adjustments never lose updates.
func AdjustArticleVotes(ctx context.Context, db *gorm.DB, id int64, delta int) (*domain.Article, error) {
	var out *domain.Article
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Article{}).
			Where("article_id = ?", id).
			UpdateColumn("votes", gorm.Expr("votes + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("article")
		}
		a, err := GetArticle(ctx, tx, id)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// DeleteArticle removes the article (its comments cascade) or reports
// "article not found".
func DeleteArticle(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("article_id = ?", id).Delete(&domain.Article{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("article")
	}
	return nil
}

// fkProbe describes one referenced row an insert depends on.
type fkProbe struct {
	key   string
	model any
	cond  string
	arg   any
}

// resolveForeignKey fills in the Key of a foreign-key violation the driver
// did not name, by checking which referenced row is missing. Other errors
// are returned unchanged.
func resolveForeignKey(ctx context.Context, db *gorm.DB, err error, probes ...fkProbe) error {
	v, ok := ClassifyViolation(err)
	if !ok || v.Kind != ViolationForeignKey || v.Key != "" {
		return err
	}
	for _, p := range probes {
		perr := exists(ctx, db, p.model, p.cond, p.arg, p.key)
		var de *domain.Error
		if errors.As(perr, &de) && de.Kind == domain.KindNotFound {
			return &Violation{Kind: ViolationForeignKey, Key: p.key, Err: err}
		}
	}
	return err
}

// ArticleExists reports ("article not found") when id is unknown.
func ArticleExists(ctx context.Context, db *gorm.DB, id int64) error {
	return exists(ctx, db, &domain.Article{}, "article_id = ?", id, "article")
}
