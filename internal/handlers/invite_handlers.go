package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dealtracker/internal/common"
	"dealtracker/internal/services"
)

// InviteHandlers serves the public side of invites: looking one up and accepting it.
type InviteHandlers struct {
	invites services.InviteService
}

func NewInviteHandlers(invites services.InviteService) *InviteHandlers {
	return &InviteHandlers{invites: invites}
}

type AcceptInviteBody struct {
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *InviteHandlers) Lookup(c echo.Context) error {
	invite, err := h.invites.Lookup(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	// the token is the credential; never echo it back
	invite.Token = ""
	return c.JSON(http.StatusOK, invite)
}

func (h *InviteHandlers) Accept(c echo.Context) error {
	var body AcceptInviteBody
	if err := bind(c, &body); err != nil {
		return err
	}

	userID, err := h.invites.Accept(c.Request().Context(), &services.AcceptInviteRequest{
		Token:    c.Param("token"),
		Password: body.Password,
		FullName: body.FullName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, common.ActionResult{Success: true, UserID: &userID})
}
