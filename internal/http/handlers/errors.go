// Package handlers defines HTTP-layer error codes and the error
// classification chain shared by every endpoint.
//
// Handlers never map errors themselves: they hand any failure to respondErr,
// which walks an ordered list of stages. Each stage either writes the
// response or passes the error on:
//
//  1. violationStage: database constraint failures (repo.Violation)
//  2. domainStage:    tagged domain errors (domain.Error)
//  3. fallbackStage:  anything else, 500 with the cause logged
//
// Unmatched routes never reach the chain; the router answers them with 404
// "Path not found" directly.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/repo"
)

const (
	ErrCodeNotFound         = "not_found"
	ErrCodeInvalidQuery     = "invalid_query"
	ErrCodeMissingParameter = "missing_parameter"
	ErrCodeDuplicateEntry   = "duplicate_entry"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// MsgPathNotFound is the body message for unmatched routes.
const MsgPathNotFound = "Path not found"

// stage resolves err into a response and returns true, or returns false to
// hand err to the next stage.
type stage func(c *gin.Context, err error) bool

var errorChain = []stage{violationStage, domainStage, fallbackStage}

// respondErr writes the response for err using the first stage that
// recognises it.
func respondErr(c *gin.Context, err error) {
	for _, s := range errorChain {
		if s(c, err) {
			return
		}
	}
}

func violationStage(c *gin.Context, err error) bool {
	v, ok := repo.ClassifyViolation(err)
	if !ok {
		return false
	}
	switch v.Kind {
	case repo.ViolationInvalidText:
		fail(c, http.StatusBadRequest, ErrCodeInvalidQuery, "invalid query")
	case repo.ViolationNotNull:
		fail(c, http.StatusBadRequest, ErrCodeMissingParameter, "missing parameter")
	case repo.ViolationUnique:
		fail(c, http.StatusBadRequest, ErrCodeDuplicateEntry, "entry already exists")
	case repo.ViolationForeignKey:
		msg := "not found"
		if v.Key != "" {
			msg = v.Key + " not found"
		}
		fail(c, http.StatusNotFound, ErrCodeNotFound, msg)
	default:
		return false
	}
	return true
}

func domainStage(c *gin.Context, err error) bool {
	var de *domain.Error
	if !errors.As(err, &de) {
		return false
	}
	switch de.Kind {
	case domain.KindNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, de.Error())
	case domain.KindInvalid:
		fail(c, http.StatusBadRequest, ErrCodeInvalidQuery, de.Error())
	case domain.KindMissing:
		fail(c, http.StatusBadRequest, ErrCodeMissingParameter, de.Error())
	case domain.KindConflict:
		fail(c, http.StatusBadRequest, ErrCodeDuplicateEntry, de.Error())
	default:
		return false
	}
	return true
}

func fallbackStage(c *gin.Context, err error) bool {
	lg := middleware.LoggerFrom(c)
	lg.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	return true
}
