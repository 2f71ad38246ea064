// Package apidoc holds the static endpoint catalog served by GET /api and
// renders the same catalog as a Swagger 2.0 document for the Swagger UI.
package apidoc

import (
	"net/http"
	"strings"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// Param documents one path or query parameter.
type Param struct {
	Name        string
	In          string // "path" or "query"
	Type        string // "string" or "integer"
	Description string
	Enum        []string
	Default     any
}

// Endpoint is one catalog entry. Path is relative to the API base path and
// uses gin syntax (":article_id").
type Endpoint struct {
	Method          string   `json:"-"`
	Path            string   `json:"-"`
	Tag             string   `json:"-"`
	Status          int      `json:"-"`
	Params          []Param  `json:"-"`
	Description     string   `json:"description"`
	Queries         []string `json:"queries,omitempty"`
	ExampleRequest  any      `json:"exampleRequest,omitempty"`
	ExampleResponse any      `json:"exampleResponse,omitempty"`
}

var (
	articleIDParam = Param{Name: "article_id", In: "path", Type: "integer", Description: "Article ID"}
	commentIDParam = Param{Name: "comment_id", In: "path", Type: "integer", Description: "Comment ID"}
	limitParam     = Param{Name: "limit", In: "query", Type: "integer", Description: "Page size", Default: domain.DefaultLimit}
	pageParam      = Param{Name: "p", In: "query", Type: "integer", Description: "Zero-based page index", Default: domain.DefaultPage}
)

var exampleArticle = map[string]any{
	"article_id":      1,
	"title":           "Seafood substitutions are increasing",
	"topic":           "cooking",
	"author":          "weegembump",
	"body":            "Text from the article..",
	"created_at":      "2018-05-30T15:59:13.341Z",
	"votes":           0,
	"article_img_url": domain.DefaultArticleImgURL,
	"comment_count":   6,
}

var exampleComment = map[string]any{
	"comment_id": 1,
	"body":       "Itaque quisquam est similique et est perspiciatis.",
	"article_id": 1,
	"author":     "butter_bridge",
	"votes":      16,
	"created_at": "2020-04-06T12:17:00.000Z",
}

// Catalog returns every public endpoint in a stable order.
func Catalog() []Endpoint {
	return []Endpoint{
		{
			Method: http.MethodGet, Path: "", Tag: "API", Status: http.StatusOK,
			Description: "serves up a json representation of all the available endpoints of the api",
		},
		{
			Method: http.MethodGet, Path: "/topics", Tag: "Topics", Status: http.StatusOK,
			Description:     "serves an array of all topics",
			ExampleResponse: map[string]any{"topics": []any{map[string]any{"slug": "football", "description": "Footie!"}}},
		},
		{
			Method: http.MethodPost, Path: "/topics", Tag: "Topics", Status: http.StatusCreated,
			Description:     "adds a topic; slug must be unique",
			ExampleRequest:  map[string]any{"slug": "coding", "description": "Code is love, code is life"},
			ExampleResponse: map[string]any{"topic": map[string]any{"slug": "coding", "description": "Code is love, code is life"}},
		},
		{
			Method: http.MethodGet, Path: "/articles", Tag: "Articles", Status: http.StatusOK,
			Description: "serves a page of articles and the total number matching the filters",
			Queries:     []string{"topic", "author", "sort_by", "order", "limit", "p"},
			Params: []Param{
				{Name: "topic", In: "query", Type: "string", Description: "Topic slug"},
				{Name: "author", In: "query", Type: "string", Description: "Author username"},
				{Name: "sort_by", In: "query", Type: "string", Description: "Sort column", Enum: domain.SortColumnNames(), Default: "created_at"},
				{Name: "order", In: "query", Type: "string", Description: "Sort direction", Enum: []string{"asc", "desc"}, Default: "desc"},
				limitParam,
				pageParam,
			},
			ExampleResponse: map[string]any{"total_count": 1, "articles": []any{withoutBody(exampleArticle)}},
		},
		{
			Method: http.MethodPost, Path: "/articles", Tag: "Articles", Status: http.StatusCreated,
			Description: "adds an article; article_img_url is optional",
			ExampleRequest: map[string]any{
				"author": "butter_bridge", "title": "New article", "body": "Text", "topic": "mitch",
			},
			ExampleResponse: map[string]any{"article": exampleArticle},
		},
		{
			Method: http.MethodGet, Path: "/articles/:article_id", Tag: "Articles", Status: http.StatusOK,
			Description:     "serves an article with its comment_count",
			Params:          []Param{articleIDParam},
			ExampleResponse: map[string]any{"article": exampleArticle},
		},
		{
			Method: http.MethodPatch, Path: "/articles/:article_id", Tag: "Articles", Status: http.StatusOK,
			Description:     "adds inc_votes to the article's votes and serves the updated article",
			Params:          []Param{articleIDParam},
			ExampleRequest:  map[string]any{"inc_votes": -1},
			ExampleResponse: map[string]any{"article": exampleArticle},
		},
		{
			Method: http.MethodDelete, Path: "/articles/:article_id", Tag: "Articles", Status: http.StatusNoContent,
			Description: "deletes an article and its comments",
			Params:      []Param{articleIDParam},
		},
		{
			Method: http.MethodGet, Path: "/articles/:article_id/comments", Tag: "Comments", Status: http.StatusOK,
			Description:     "serves a page of an article's comments, newest first",
			Queries:         []string{"limit", "p"},
			Params:          []Param{articleIDParam, limitParam, pageParam},
			ExampleResponse: map[string]any{"comments": []any{exampleComment}},
		},
		{
			Method: http.MethodPost, Path: "/articles/:article_id/comments", Tag: "Comments", Status: http.StatusCreated,
			Description:     "adds a comment to an article; votes is optional",
			Params:          []Param{articleIDParam},
			ExampleRequest:  map[string]any{"author": "butter_bridge", "body": "Nice read"},
			ExampleResponse: map[string]any{"comment": exampleComment},
		},
		{
			Method: http.MethodGet, Path: "/users", Tag: "Users", Status: http.StatusOK,
			Description: "serves an array of all users",
			ExampleResponse: map[string]any{"users": []any{map[string]any{
				"username": "butter_bridge", "name": "jonny", "avatar_url": "https://www.healthytherapies.com/wp-content/uploads/2016/06/Lime3.jpg",
			}}},
		},
		{
			Method: http.MethodGet, Path: "/users/:username", Tag: "Users", Status: http.StatusOK,
			Description: "serves a user by username",
			Params:      []Param{{Name: "username", In: "path", Type: "string", Description: "Username"}},
			ExampleResponse: map[string]any{"user": map[string]any{
				"username": "butter_bridge", "name": "jonny", "avatar_url": "https://www.healthytherapies.com/wp-content/uploads/2016/06/Lime3.jpg",
			}},
		},
		{
			Method: http.MethodPatch, Path: "/comments/:comment_id", Tag: "Comments", Status: http.StatusOK,
			Description:     "adds inc_votes to the comment's votes and serves the updated comment",
			Params:          []Param{commentIDParam},
			ExampleRequest:  map[string]any{"inc_votes": 1},
			ExampleResponse: map[string]any{"comment": exampleComment},
		},
		{
			Method: http.MethodDelete, Path: "/comments/:comment_id", Tag: "Comments", Status: http.StatusNoContent,
			Description: "deletes a comment",
			Params:      []Param{commentIDParam},
		},
	}
}

// Endpoints returns the catalog keyed by "METHOD <basePath><path>", the shape
// served by GET /api.
func Endpoints(basePath string) map[string]Endpoint {
	base := strings.TrimRight(basePath, "/")
	cat := Catalog()
	out := make(map[string]Endpoint, len(cat))
	for _, e := range cat {
		p := base + e.Path
		if p == "" {
			p = "/"
		}
		out[e.Method+" "+p] = e
	}
	return out
}

func withoutBody(a map[string]any) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if k != "body" {
			out[k] = v
		}
	}
	return out
}
