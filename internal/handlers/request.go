package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/tenancy"
)

func scopeOf(c echo.Context) tenancy.Scope {
	return tenancy.FromContext(c.Request().Context())
}

func profileOf(c echo.Context) *models.Profile {
	profile, _ := common.GetProfileFromContext(c.Request().Context())
	return profile
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(name), name)
}

// queryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date.
func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, common.NewValidationError(name, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError(name, "must be a number")
	}
	return n, nil
}

// requireAdmin re-checks the caller's admin role from the profile loaded for this request.
func requireAdmin(c echo.Context) (tenancy.AdminScope, error) {
	return tenancy.RequireAdmin(profileOf(c))
}

// sendActionError renders a failed admin action as {error}.
func sendActionError(c echo.Context, err error) error {
	var validationErr *common.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return common.SendActionError(c, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, common.ErrAuthorizationDenied):
		return common.SendActionError(c, http.StatusForbidden, "Only admins can perform this action")
	case errors.Is(err, common.ErrStaleReference):
		return common.SendActionError(c, http.StatusBadRequest, "The referenced startup or user no longer exists")
	case errors.Is(err, common.ErrNotFound):
		return common.SendActionError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrConflict):
		return common.SendActionError(c, http.StatusConflict, conflictMessage(err))
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if m, ok := httpErr.Message.(string); ok {
			return common.SendActionError(c, httpErr.Code, m)
		}
	}
	return err
}
