// Comment HTTP handlers.
//
// This file exposes REST endpoints for comments:
//   - GET    /articles/{id}/comments   (newest first, limit/p, weak ETag)
//   - POST   /articles/{id}/comments   (create, Idempotency-Key aware)
//   - PATCH  /comments/{id}            (adjust votes by inc_votes)
//   - DELETE /comments/{id}
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/services"
)

// ListComments godoc
// @ID          listComments
// @Summary     List an article's comments
// @Description Newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Comments
// @Produce     json
// @Param       article_id     path    int     true   "Article ID"                  example(1)
// @Param       limit          query   int     false  "Page size"                   minimum(0) default(10)
// @Param       p              query   int     false  "Zero-based page index"       minimum(0) default(0)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.CommentsResponse
// @Header      200  {string}  ETag  "Weak ETag for the current page"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id or query"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles/{article_id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pathID(c, "article_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	page, err := domain.ParsePage(queryParam(c, "limit"), queryParam(c, "p"))
	if err != nil {
		respondErr(c, err)
		return
	}

	// ETag pre-check (best effort). An empty list never short-circuits so an
	// unknown article still reports 404.
	var etag string
	if st, err := h.comments.Stats(ctx, id); err == nil && st.Count > 0 {
		etag = fmt.Sprintf(`W/"comments:%d:%s:%d:%d"`, id, st.Version(), page.Limit, page.Page)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Header("ETag", etag)
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.comments.ListForArticle(ctx, id, page)
	if err != nil {
		respondErr(c, err)
		return
	}
	if etag != "" {
		c.Header("ETag", etag)
	}
	ok(c, http.StatusOK, CommentsResponse{Comments: items})
}

// CreateComment godoc
// @ID          createComment
// @Summary     Comment on an article
// @Description The article and author must exist; votes defaults to 0.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       article_id       path    int     true   "Article ID"  example(1)
// @Param       body             body    handlers.CreateCommentRequest  true  "Comment"
// @Success     201  {object}  handlers.CommentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id or missing parameter"
// @Failure     404  {object}  handlers.ErrorResponse  "Article or author not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles/{article_id}/comments [post]
func (h *Handlers) CreateComment(c *gin.Context) {
	id, err := pathID(c, "article_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	var req CreateCommentRequest
	if err := bindJSON(c, &req); err != nil {
		respondErr(c, err)
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	cm, replayed, err := h.comments.Create(c.Request.Context(), id, services.NewComment{
		Author: req.Author,
		Body:   req.Body,
		Votes:  req.Votes,
	}, key)
	if err != nil {
		respondErr(c, err)
		return
	}
	if replayed {
		c.Header(headerReplayed, "true")
	}
	ok(c, http.StatusCreated, CommentResponse{Comment: cm})
}

// VoteComment godoc
// @ID          voteComment
// @Summary     Adjust comment votes
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Param       comment_id  path  int                   true  "Comment ID"  example(1)
// @Param       body        body  handlers.VoteRequest  true  "Vote delta"
// @Success     200  {object}  handlers.CommentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id or body"
// @Failure     404  {object}  handlers.ErrorResponse  "Comment not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /comments/{comment_id} [patch]
func (h *Handlers) VoteComment(c *gin.Context) {
	id, err := pathID(c, "comment_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	var req VoteRequest
	if err := bindJSON(c, &req); err != nil {
		respondErr(c, err)
		return
	}
	cm, err := h.comments.Vote(c.Request.Context(), id, *req.IncVotes)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, CommentResponse{Comment: cm})
}

// DeleteComment godoc
// @ID          deleteComment
// @Summary     Delete a comment
// @Tags        Comments
// @Param       comment_id  path  int  true  "Comment ID"  example(1)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse  "Comment not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /comments/{comment_id} [delete]
func (h *Handlers) DeleteComment(c *gin.Context) {
	id, err := pathID(c, "comment_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	noContent(c)
}
