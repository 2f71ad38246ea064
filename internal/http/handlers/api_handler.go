package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/http/apidoc"
)

// EndpointsResponse wraps GET /api.
type EndpointsResponse struct {
	Endpoints map[string]apidoc.Endpoint `json:"endpoints"`
}

// ServeCatalog godoc
// @ID          listEndpoints
// @Summary     Describe the API
// @Description Every endpoint keyed by "METHOD path", with accepted queries and example payloads.
// @Tags        API
// @Produce     json
// @Success     200  {object}  handlers.EndpointsResponse
// @Router      / [get]
func ServeCatalog(basePath string) gin.HandlerFunc {
	body := EndpointsResponse{Endpoints: apidoc.Endpoints(basePath)}
	return func(c *gin.Context) {
		ok(c, http.StatusOK, body)
	}
}
