// Package handlers holds the gin handlers for the /api routes.
//
// Every failure leaves through fail, which writes the shared envelope:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "msg": "article not found"
//	}
//
// Successful responses wrap their payload in a single named key
// ({"article": ...}, {"comments": [...]}) and are written with ok.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/http/middleware"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Code is stable and machine-readable; see errors.go.
	Code    string `json:"code" example:"not_found"`
	Message string `json:"msg" example:"article not found"`
}

func fail(c *gin.Context, status int, code, msg string) {
	lg := middleware.LoggerFrom(c)
	if status >= http.StatusInternalServerError {
		lg.Error().Int("status", status).Str("code", code).Str("msg", msg).Msg("request failed")
	} else {
		lg.Debug().Int("status", status).Str("code", code).Msg("request rejected")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail writes the error envelope; the router uses it for NoRoute/NoMethod.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
