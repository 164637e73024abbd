package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dealtracker/internal/common"
	"dealtracker/internal/middleware"
	"dealtracker/internal/models"
	"dealtracker/internal/services"
	"dealtracker/internal/tenancy"
)

// AccountHandlers serves the signed-in user's own profile and tenant selection.
type AccountHandlers struct {
	profiles      services.ProfileService
	selector      *tenancy.Selector
	secureCookies bool
}

func NewAccountHandlers(profiles services.ProfileService, selector *tenancy.Selector, secureCookies bool) *AccountHandlers {
	return &AccountHandlers{profiles: profiles, selector: selector, secureCookies: secureCookies}
}

// MeResponse is everything a page header needs: who is signed in, which
// startups they may switch to and which one is selected.
type MeResponse struct {
	Profile          *models.Profile   `json:"profile"`
	Startups         []*models.Startup `json:"startups"`
	CurrentStartupID *uuid.UUID        `json:"current_startup_id"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
}

type SelectStartupRequest struct {
	StartupID string `json:"startup_id"`
}

func (h *AccountHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	profile := profileOf(c)
	if profile == nil {
		return c.JSON(http.StatusOK, MeResponse{Startups: []*models.Startup{}})
	}

	startups, err := h.selector.Accessible(ctx, profile)
	if err != nil {
		return err
	}
	if startups == nil {
		startups = []*models.Startup{}
	}

	resp := MeResponse{Profile: profile, Startups: startups}
	if id, ok := scopeOf(c).StartupID(); ok {
		resp.CurrentStartupID = &id
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AccountHandlers) UpdateProfile(c echo.Context) error {
	profile := profileOf(c)
	if profile == nil {
		return common.ErrNotFound
	}
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := h.profiles.UpdateDisplayName(c.Request().Context(), profile, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// SelectStartup validates the requested startup and only then persists it as the hint.
func (h *AccountHandlers) SelectStartup(c echo.Context) error {
	var req SelectStartupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	startupID, err := common.ValidateUUID(req.StartupID, "startup_id")
	if err != nil {
		return err
	}

	scope, err := h.selector.Resolve(c.Request().Context(), profileOf(c), startupID.String())
	if err != nil {
		return err
	}
	if !scope.Valid() {
		return common.ErrAuthorizationDenied
	}

	middleware.SetHintCookie(c, startupID, h.secureCookies)
	return c.JSON(http.StatusOK, map[string]uuid.UUID{"current_startup_id": startupID})
}

// AssignableUsers lists who a prospect in the current startup may be assigned to.
func (h *AccountHandlers) AssignableUsers(c echo.Context) error {
	users, err := h.profiles.ListAssignableUsers(c.Request().Context(), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
