package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dealtracker/internal/common"
	"dealtracker/internal/services"
)

// TenantHandlers serves the admin-only startup, member and team actions.
// Every action re-checks the admin role and reports failures as {error}.
type TenantHandlers struct {
	tenants  services.TenantService
	profiles services.ProfileService
	invites  services.InviteService
}

func NewTenantHandlers(tenants services.TenantService, profiles services.ProfileService, invites services.InviteService) *TenantHandlers {
	return &TenantHandlers{tenants: tenants, profiles: profiles, invites: invites}
}

// ListStartups is the one unscoped startup listing.
func (h *TenantHandlers) ListStartups(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	startups, err := h.tenants.ListAll(c.Request().Context(), admin)
	if err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusOK, startups)
}

func (h *TenantHandlers) CreateStartup(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	var req services.CreateStartupRequest
	if err := bind(c, &req); err != nil {
		return sendActionError(c, err)
	}

	startup, err := h.tenants.Create(c.Request().Context(), admin, &req)
	if err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusCreated, startup)
}

func (h *TenantHandlers) AddMember(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	var req services.AddMemberRequest
	if err := bind(c, &req); err != nil {
		return sendActionError(c, err)
	}

	membership, err := h.tenants.AddMember(c.Request().Context(), admin, &req)
	if err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusCreated, membership)
}

// CreateUser provisions an account with a password, optionally adding it to a startup.
func (h *TenantHandlers) CreateUser(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	var req services.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return sendActionError(c, err)
	}

	userID, err := h.tenants.CreateUserWithPassword(c.Request().Context(), admin, &req)
	if err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusCreated, common.ActionResult{Success: true, UserID: &userID})
}

func (h *TenantHandlers) ListTeam(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	members, err := h.profiles.ListTeamMembers(c.Request().Context(), admin)
	if err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *TenantHandlers) CreateInvite(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	var req services.CreateInviteRequest
	if err := bind(c, &req); err != nil {
		return sendActionError(c, err)
	}

	invite, err := h.invites.Create(c.Request().Context(), admin, &req)
	if err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusCreated, invite)
}

func (h *TenantHandlers) ListInvites(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	invites, err := h.invites.ListPending(c.Request().Context(), admin)
	if err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusOK, invites)
}

func (h *TenantHandlers) DeleteInvite(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return sendActionError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return sendActionError(c, err)
	}

	if err := h.invites.Delete(c.Request().Context(), admin, id); err != nil {
		return sendActionError(c, err)
	}
	return c.JSON(http.StatusOK, common.ActionResult{Success: true})
}
