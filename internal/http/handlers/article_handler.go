// Article HTTP handlers.
//
// This file exposes REST endpoints for article resources:
//   - GET    /articles            (filter, sort, paginate; total_count)
//   - POST   /articles            (create, Idempotency-Key aware)
//   - GET    /articles/{id}
//   - PATCH  /articles/{id}       (adjust votes by inc_votes)
//   - DELETE /articles/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/services"
)

// headerReplayed marks a response served from an earlier idempotent request.
const headerReplayed = "Idempotency-Replayed"

// ListArticles godoc
// @ID          listArticles
// @Summary     List articles
// @Description Filters by topic and/or author (AND), sorts by a whitelisted column and paginates.
// @Description total_count is the number of matching articles before pagination.
// @Tags        Articles
// @Produce     json
// @Param       topic    query  string  false  "Topic slug"            example(mitch)
// @Param       author   query  string  false  "Author username"       example(butter_bridge)
// @Param       sort_by  query  string  false  "Sort column"           Enums(created_at, author, title, article_id, topic, votes, article_img_url, comment_count) default(created_at)
// @Param       order    query  string  false  "Sort direction"        Enums(asc, desc) default(desc)
// @Param       limit    query  int     false  "Page size"             minimum(0) default(10)
// @Param       p        query  int     false  "Zero-based page index" minimum(0) default(0)
// @Success     200  {object}  handlers.ArticlesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid query"
// @Failure     404  {object}  handlers.ErrorResponse  "Topic or author not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles [get]
func (h *Handlers) ListArticles(c *gin.Context) {
	q, err := domain.ParseArticleQuery(domain.RawArticleQuery{
		Topic:  c.Query("topic"),
		Author: c.Query("author"),
		SortBy: queryParam(c, "sort_by"),
		Order:  queryParam(c, "order"),
		Limit:  queryParam(c, "limit"),
		Page:   queryParam(c, "p"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	items, total, err := h.articles.List(c.Request.Context(), q)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, ArticlesResponse{TotalCount: total, Articles: items})
}

// CreateArticle godoc
// @ID          createArticle
// @Summary     Create an article
// @Description Topic and author must exist. article_img_url defaults to a stock image.
// @Description Supports idempotency via the Idempotency-Key header (same key → same article).
// @Tags        Articles
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateArticleRequest  true  "Article"
// @Success     201  {object}  handlers.ArticleResponse
// @Header      201  {string}  Idempotency-Replayed  "true when served from an earlier request"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing parameter"
// @Failure     404  {object}  handlers.ErrorResponse  "Topic or author not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles [post]
func (h *Handlers) CreateArticle(c *gin.Context) {
	var req CreateArticleRequest
	if err := bindJSON(c, &req); err != nil {
		respondErr(c, err)
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	a, replayed, err := h.articles.Create(c.Request.Context(), services.NewArticle{
		Title:         req.Title,
		Topic:         req.Topic,
		Author:        req.Author,
		Body:          req.Body,
		ArticleImgURL: req.ArticleImgURL,
	}, key)
	if err != nil {
		respondErr(c, err)
		return
	}
	if replayed {
		c.Header(headerReplayed, "true")
	}
	ok(c, http.StatusCreated, ArticleResponse{Article: a})
}

// GetArticle godoc
// @ID          getArticle
// @Summary     Get an article
// @Tags        Articles
// @Produce     json
// @Param       article_id  path      int  true  "Article ID"  example(1)
// @Success     200         {object}  handlers.ArticleResponse
// @Failure     400         {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404         {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500         {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles/{article_id} [get]
func (h *Handlers) GetArticle(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	a, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, ArticleResponse{Article: a})
}

// VoteArticle godoc
// @ID          voteArticle
// @Summary     Adjust article votes
// @Description Adds the signed inc_votes delta to the article's votes.
// @Tags        Articles
// @Accept      json
// @Produce     json
// @Param       article_id  path  int                   true  "Article ID"  example(1)
// @Param       body        body  handlers.VoteRequest  true  "Vote delta"
// @Success     200  {object}  handlers.ArticleResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id or body"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles/{article_id} [patch]
func (h *Handlers) VoteArticle(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	var req VoteRequest
	if err := bindJSON(c, &req); err != nil {
		respondErr(c, err)
		return
	}
	a, err := h.articles.Vote(c.Request.Context(), id, *req.IncVotes)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, ArticleResponse{Article: a})
}

// DeleteArticle godoc
// @ID          deleteArticle
// @Summary     Delete an article and its comments
// @Tags        Articles
// @Param       article_id  path  int  true  "Article ID"  example(1)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles/{article_id} [delete]
func (h *Handlers) DeleteArticle(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	noContent(c)
}
