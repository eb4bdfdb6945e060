package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Kind  string `json:"kind"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to HTTP status codes by their ErrorKind.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the JSON envelope {"error", "code", "kind"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, auth middleware).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{
			Error: fmt.Sprintf("%v", he.Message),
			Code:  httpCode(he.Code),
			Kind:  string(httpKind(he.Code)),
		}
	}

	kind := domain.KindOf(err)
	body := errorResponse{Error: err.Error(), Code: domain.Code(err), Kind: string(kind)}

	// Bad credentials are the only forbidden-kind error that is an
	// authentication failure.
	if errors.Is(err, domain.ErrInvalidCredentials) {
		body.Error = "invalid credentials"
		return http.StatusUnauthorized, body
	}

	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound, body
	case domain.KindForbidden:
		return http.StatusForbidden, body
	case domain.KindConflict:
		return http.StatusConflict, body
	case domain.KindInvalid:
		return http.StatusUnprocessableEntity, body
	case domain.KindTransient:
		if errors.Is(err, domain.ErrSubmissionInFlight) {
			return http.StatusConflict, body
		}
		return http.StatusServiceUnavailable, body
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Error: "internal server error",
		Code:  "INTERNAL",
		Kind:  string(domain.KindInternal),
	}
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "NOT_AUTHORIZED"
	case http.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_FAILED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return fmt.Sprintf("HTTP_%d", status)
}

func httpKind(status int) domain.ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.KindForbidden
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusTooManyRequests, status >= 500:
		return domain.KindTransient
	}
	return domain.KindInvalid
}
