package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"dealtracker/internal/common"
	"dealtracker/internal/services"
	"dealtracker/internal/tenancy"
)

const hintMaxAge = 365 * 24 * 60 * 60

// TenantMiddleware loads the caller's profile and resolves the tenant hint into
// a request Scope. It runs once per request so handlers never re-validate.
type TenantMiddleware struct {
	profiles      services.ProfileService
	selector      *tenancy.Selector
	secureCookies bool
}

func NewTenantMiddleware(profiles services.ProfileService, selector *tenancy.Selector, secureCookies bool) *TenantMiddleware {
	return &TenantMiddleware{
		profiles:      profiles,
		selector:      selector,
		secureCookies: secureCookies,
	}
}

func (m *TenantMiddleware) Resolve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			principal, ok := common.GetPrincipalFromContext(ctx)
			if !ok {
				return next(c)
			}

			profile, err := m.profiles.Load(ctx, principal)
			if err != nil {
				return err
			}
			if profile == nil {
				zerolog.Ctx(ctx).Warn().Str("principal_id", principal.ID.String()).Msg("principal has no profile")
				return next(c)
			}
			ctx = common.WithProfile(ctx, profile)

			var hint string
			if cookie, err := c.Cookie(tenancy.HintCookie); err == nil && cookie.Value != "" {
				hint = cookie.Value
			} else {
				startupID, found, err := m.selector.DefaultTenant(ctx, profile)
				if err != nil {
					return err
				}
				if found {
					SetHintCookie(c, startupID, m.secureCookies)
					hint = startupID.String()
				}
			}

			scope, err := m.selector.Resolve(ctx, profile, hint)
			if err != nil {
				return err
			}
			ctx = tenancy.WithScope(ctx, scope)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SetHintCookie persists a validated startup id as the tenant hint.
func SetHintCookie(c echo.Context, startupID uuid.UUID, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     tenancy.HintCookie,
		Value:    startupID.String(),
		Path:     "/",
		MaxAge:   hintMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
