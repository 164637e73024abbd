package middleware

import (
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/services"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "dealtracker_session"

const sessionErrorKey = "session_backend_error"

// Session resolves the request's principal from a bearer token or the session
// cookie. Requests without a valid token continue anonymously; only a failing
// identity backend aborts the request.
func Session(identity services.IdentityService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup:            "header:Authorization:Bearer ,cookie:" + SessionCookie,
		ContinueOnIgnoredError: true,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			ctx := c.Request().Context()
			principal, err := identity.Resolve(ctx, auth)
			if err != nil {
				if !errors.Is(err, common.ErrAuthenticationAbsent) {
					c.Set(sessionErrorKey, err)
				}
				return nil, err
			}
			c.SetRequest(c.Request().WithContext(common.WithPrincipal(ctx, principal)))
			return principal, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if backendErr, ok := c.Get(sessionErrorKey).(error); ok {
				return backendErr
			}
			return nil
		},
	})
}

// RequireAuth rejects requests that carry no resolved principal.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := common.GetPrincipalFromContext(c.Request().Context()); !ok {
				return common.ErrAuthenticationAbsent
			}
			return next(c)
		}
	}
}

// SetSessionCookie stores the session token for browser clients.
func SetSessionCookie(c echo.Context, session *models.Session, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionToken returns the raw token the request authenticated with, if any.
func SessionToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
