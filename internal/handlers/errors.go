package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"dealtracker/internal/common"
)

// LoginPath is where HTML clients are sent when they are not signed in.
const LoginPath = "/login"

// NewHTTPErrorHandler maps the service error taxonomy onto HTTP responses.
func NewHTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status == http.StatusUnauthorized && wantsHTML(c.Request()) {
			err = c.Redirect(http.StatusSeeOther, LoginPath)
		} else if status == http.StatusInternalServerError {
			zerolog.Ctx(c.Request().Context()).Error().Err(err).
				Str("path", c.Path()).
				Msg("request failed")
			err = c.JSON(status, body)
		} else if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func errorResponse(err error) (int, any) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		return httpErr.Code, common.CreateErrorResponse(errorCode(httpErr.Code), message, nil)
	}

	var partialErr *common.PartialFailureError
	if errors.As(err, &partialErr) {
		return http.StatusInternalServerError, common.ActionResult{Error: partialErr.Message}
	}

	var validationErr *common.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, common.CreateErrorResponse("VALIDATION_ERROR", "Validation failed",
			map[string]string{validationErr.Field: validationErr.Message})
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, common.CreateErrorResponse("VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, common.ErrAuthenticationAbsent):
		return http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHENTICATED", "Authentication required", nil)
	case errors.Is(err, common.ErrAuthorizationDenied):
		return http.StatusForbidden, common.ActionResult{Error: "You do not have access to this startup"}
	case errors.Is(err, common.ErrStaleReference):
		return http.StatusForbidden, common.ActionResult{Error: "This link or record is no longer valid"}
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, common.CreateErrorResponse("CONFLICT", conflictMessage(err), nil)
	}
	return http.StatusInternalServerError, common.CreateErrorResponse("INTERNAL_ERROR", "Something went wrong, please try again", nil)
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// conflictMessage strips the sentinel suffix from a wrapped conflict.
func conflictMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+common.ErrConflict.Error())
	if msg == common.ErrConflict.Error() || msg == "" {
		return "Resource already exists"
	}
	return msg
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
