package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
)

const (
	CodeInvalidRequest      = "invalid_request"
	CodeUnauthorized        = "unauthorized"
	CodeNotFound            = "not_found"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeInternal            = "internal_error"
)

// RespondServiceError maps service sentinels to a status and error code.
// Unrecognized errors are reported as 500 without their message.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
	case errors.Is(err, errs.ErrNotFound):
		RespondError(c, http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, errs.ErrUnavailable):
		RespondError(c, http.StatusServiceUnavailable, CodeUpstreamUnavailable, err)
	default:
		RespondError(c, http.StatusInternalServerError, CodeInternal, errors.New("internal error"))
	}
}
