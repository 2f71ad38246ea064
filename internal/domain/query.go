package domain

import (
	"math"

	"github.com/tbourn/go-news-backend/internal/utils"
)

// Listing defaults.
const (
	DefaultLimit = 10
	DefaultPage  = 0
)

// SortColumn is the closed set of columns an article listing can be ordered
// by. Values map to fixed SQL identifiers; caller input never reaches SQL.
type SortColumn int

const (
	SortCreatedAt SortColumn = iota
	SortAuthor
	SortTitle
	SortArticleID
	SortTopic
	SortVotes
	SortArticleImgURL
	SortCommentCount
)

var sortColumnNames = map[string]SortColumn{
	"created_at":      SortCreatedAt,
	"author":          SortAuthor,
	"title":           SortTitle,
	"article_id":      SortArticleID,
	"topic":           SortTopic,
	"votes":           SortVotes,
	"article_img_url": SortArticleImgURL,
	"comment_count":   SortCommentCount,
}

// ParseSortColumn resolves a sort_by value. Matching is case-sensitive.
func ParseSortColumn(s string) (SortColumn, bool) {
	c, ok := sortColumnNames[s]
	return c, ok
}

// SortColumnNames lists the accepted sort_by values in declaration order.
func SortColumnNames() []string {
	out := make([]string, 0, len(sortColumnNames))
	for c := SortCreatedAt; c <= SortCommentCount; c++ {
		out = append(out, c.String())
	}
	return out
}

// String returns the query-string name of the column.
func (s SortColumn) String() string {
	for name, c := range sortColumnNames {
		if c == s {
			return name
		}
	}
	return "created_at"
}

// Column returns the SQL identifier for the sort column.
func (s SortColumn) Column() string {
	switch s {
	case SortAuthor:
		return "articles.author"
	case SortTitle:
		return "articles.title"
	case SortArticleID:
		return "articles.article_id"
	case SortTopic:
		return "articles.topic"
	case SortVotes:
		return "articles.votes"
	case SortArticleImgURL:
		return "articles.article_img_url"
	case SortCommentCount:
		return "comment_count"
	default:
		return "articles.created_at"
	}
}

// Order is a sort direction.
type Order int

const (
	OrderDesc Order = iota
	OrderAsc
)

// ParseOrder accepts exactly "asc" or "desc".
func ParseOrder(s string) (Order, bool) {
	switch s {
	case "desc":
		return OrderDesc, true
	case "asc":
		return OrderAsc, true
	}
	return OrderDesc, false
}

// Desc reports whether the order is descending.
func (o Order) Desc() bool { return o == OrderDesc }

// Page is a validated limit/page pair. Offset is Page*Limit.
type Page struct {
	Limit int
	Page  int
}

// Offset returns the number of rows to skip, saturating at math.MaxInt so a
// huge limit or page selects past the end instead of wrapping around.
func (p Page) Offset() int {
	if p.Limit > 0 && p.Page > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return p.Page * p.Limit
}

// Param is a raw query parameter: its value and whether it was present.
type Param struct {
	Value   string
	Present bool
}

// ParsePage validates raw limit and page parameters. Absent parameters take
// the defaults; present ones must be numeric-only.
func ParsePage(limit, page Param) (Page, error) {
	p := Page{Limit: DefaultLimit, Page: DefaultPage}
	if limit.Present {
		n, ok := utils.ParseNumeric(limit.Value)
		if !ok {
			return p, ErrInvalidQuery
		}
		p.Limit = n
	}
	if page.Present {
		n, ok := utils.ParseNumeric(page.Value)
		if !ok {
			return p, ErrInvalidQuery
		}
		p.Page = n
	}
	return p, nil
}

// ArticleFilter narrows an article listing. Empty fields do not filter.
type ArticleFilter struct {
	Topic  string
	Author string
}

// ArticleQuery is a fully validated article listing request.
type ArticleQuery struct {
	ArticleFilter
	SortBy SortColumn
	Order  Order
	Page
}

// RawArticleQuery carries the unvalidated query string values.
type RawArticleQuery struct {
	Topic  string
	Author string
	SortBy Param
	Order  Param
	Limit  Param
	Page   Param
}

// ParseArticleQuery validates raw into an ArticleQuery. Any invalid sort
// column, direction, or non-numeric limit/page yields ErrInvalidQuery.
func ParseArticleQuery(raw RawArticleQuery) (ArticleQuery, error) {
	q := ArticleQuery{
		ArticleFilter: ArticleFilter{Topic: raw.Topic, Author: raw.Author},
		SortBy:        SortCreatedAt,
		Order:         OrderDesc,
	}
	if raw.SortBy.Present {
		col, ok := ParseSortColumn(raw.SortBy.Value)
		if !ok {
			return q, ErrInvalidQuery
		}
		q.SortBy = col
	}
	if raw.Order.Present {
		o, ok := ParseOrder(raw.Order.Value)
		if !ok {
			return q, ErrInvalidQuery
		}
		q.Order = o
	}
	page, err := ParsePage(raw.Limit, raw.Page)
	if err != nil {
		return q, err
	}
	q.Page = page
	return q, nil
}
