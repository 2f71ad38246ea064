package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTopics godoc
// @ID          listTopics
// @Summary     List topics
// @Tags        Topics
// @Produce     json
// @Success     200  {object}  handlers.TopicsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /topics [get]
func (h *Handlers) ListTopics(c *gin.Context) {
	topics, err := h.topics.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, TopicsResponse{Topics: topics})
}

// CreateTopic godoc
// @ID          createTopic
// @Summary     Create a topic
// @Description The slug must be unique; the description is optional.
// @Tags        Topics
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateTopicRequest  true  "Topic"
// @Success     201   {object}  handlers.TopicResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing slug or duplicate entry"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /topics [post]
func (h *Handlers) CreateTopic(c *gin.Context) {
	var req CreateTopicRequest
	if err := bindJSON(c, &req); err != nil {
		respondErr(c, err)
		return
	}
	t, err := h.topics.Create(c.Request.Context(), req.Slug, req.Description)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusCreated, TopicResponse{Topic: t})
}
