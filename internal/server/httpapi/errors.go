package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/booklib/internal/common"
)

const internalErrorMessage = "Internal server error"

var (
	errInvalidBody     = common.NewError(common.ErrValidation, "Invalid request body")
	errTooManyRequests = echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to the HTTP status and caller-facing message.
// Unclassified errors become a 500 with a generic message.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		if he.Code >= http.StatusInternalServerError {
			msg = internalErrorMessage
		}
		return he.Code, msg
	}

	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, common.Message(err, http.StatusText(http.StatusBadRequest))
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, common.Message(err, "Invalid token.")
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, common.Message(err, http.StatusText(http.StatusNotFound))
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// errorHandler renders every handler error as {"error": "..."}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", fmt.Sprint(err))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, errorResponse{Error: msg})
	}
	if writeErr != nil {
		s.logger.Error(c.Request().Context(), "error writing response", "error", writeErr)
	}
}
