package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"dealtracker/internal/common"
	"dealtracker/internal/middleware"
	"dealtracker/internal/services"
)

// AuthHandlers handles sign-up, sign-in and sign-out.
type AuthHandlers struct {
	identity      services.IdentityService
	secureCookies bool
}

func NewAuthHandlers(identity services.IdentityService, secureCookies bool) *AuthHandlers {
	return &AuthHandlers{identity: identity, secureCookies: secureCookies}
}

type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned to clients that use bearer tokens; browsers also get the cookie.
type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Signup creates a confirmed account and its profile.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	principal, err := h.identity.SignUp(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, principal)
}

// Login verifies credentials and starts a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "Email and password are required")
	}

	session, err := h.identity.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationAbsent) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}

	middleware.SetSessionCookie(c, session, h.secureCookies)
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.identity.SignOut(c.Request().Context(), token); err != nil {
			zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("failed to revoke session")
		}
	}
	middleware.ClearSessionCookie(c, h.secureCookies)
	return c.NoContent(http.StatusNoContent)
}
