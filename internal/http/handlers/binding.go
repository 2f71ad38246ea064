package handlers

import (
	"errors"
	"io"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/utils"
)

var registerOnce sync.Once

// registerValidators adds the non-standard tags used by the request DTOs to
// gin's validator engine.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}

//
// DTOs
//

// CreateTopicRequest is the JSON payload for POST /topics.
type CreateTopicRequest struct {
	Slug        string  `json:"slug"        binding:"required,notblank" example:"coding"`
	Description *string `json:"description"                             example:"Code is love, code is life"`
}

// CreateArticleRequest is the JSON payload for POST /articles.
type CreateArticleRequest struct {
	Author        string `json:"author"          binding:"required,notblank" example:"butter_bridge"`
	Title         string `json:"title"           binding:"required,notblank" example:"Living in the shadow of a great man"`
	Body          string `json:"body"            binding:"required,notblank" example:"I find this existence challenging"`
	Topic         string `json:"topic"           binding:"required,notblank" example:"mitch"`
	ArticleImgURL string `json:"article_img_url" binding:"omitempty,url"     example:"https://images.pexels.com/photos/158651/news-newsletter-newspaper-information-158651.jpeg?w=700&h=700"`
}

// CreateCommentRequest is the JSON payload for POST /articles/{id}/comments.
type CreateCommentRequest struct {
	Author string `json:"author" binding:"required,notblank" example:"butter_bridge"`
	Body   string `json:"body"   binding:"required,notblank" example:"This morning, I showered for nine minutes."`
	Votes  int    `json:"votes"  binding:"min=-1000000000,max=1000000000" example:"0"`
}

// VoteRequest is the JSON payload for PATCH on articles and comments.
// IncVotes is a signed delta of at most one billion either way; zero is
// accepted.
type VoteRequest struct {
	IncVotes *int `json:"inc_votes" binding:"required,min=-1000000000,max=1000000000" example:"-1"`
}

//
// Response envelopes
//

// TopicsResponse wraps GET /topics.
type TopicsResponse struct {
	Topics []domain.Topic `json:"topics"`
}

// TopicResponse wraps POST /topics.
type TopicResponse struct {
	Topic *domain.Topic `json:"topic"`
}

// ArticlesResponse wraps GET /articles.
type ArticlesResponse struct {
	TotalCount int64            `json:"total_count"`
	Articles   []domain.Article `json:"articles"`
}

// ArticleResponse wraps a single article.
type ArticleResponse struct {
	Article *domain.Article `json:"article"`
}

// CommentsResponse wraps GET /articles/{id}/comments.
type CommentsResponse struct {
	Comments []domain.Comment `json:"comments"`
}

// CommentResponse wraps a single comment.
type CommentResponse struct {
	Comment *domain.Comment `json:"comment"`
}

// UsersResponse wraps GET /users.
type UsersResponse struct {
	Users []domain.User `json:"users"`
}

// UserResponse wraps GET /users/{username}.
type UserResponse struct {
	User *domain.User `json:"user"`
}

//
// Input helpers
//

// bindJSON decodes the body into dst and converts binding failures into
// tagged errors: absent or blank required fields are "missing parameter",
// anything malformed is "invalid query".
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return domain.Missing(err)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() != "required" && fe.Tag() != "notblank" {
				return domain.Invalid(err)
			}
		}
		return domain.Missing(err)
	}
	return domain.Invalid(err)
}

// pathID parses a numeric path parameter. Non-numeric ids are "invalid query"
// and never reach the data layer.
func pathID(c *gin.Context, name string) (int64, error) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		return 0, domain.ErrInvalidQuery
	}
	return id, nil
}

// queryParam returns a query-string value and whether it was supplied.
func queryParam(c *gin.Context, name string) domain.Param {
	v, present := c.GetQuery(name)
	return domain.Param{Value: v, Present: present}
}
