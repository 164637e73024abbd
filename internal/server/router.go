package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"dealtracker/internal/handlers"
	"dealtracker/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandlers
	Account   *handlers.AccountHandlers
	Tenants   *handlers.TenantHandlers
	Invites   *handlers.InviteHandlers
	Prospects *handlers.ProspectHandlers
	Products  *handlers.ProductHandlers
	Materials *handlers.MaterialHandlers
	Activity  *handlers.ActivityHandlers
	Health    *handlers.HealthHandlers
}

type Options struct {
	Logger zerolog.Logger
	// Session resolves the principal; Tenant loads the profile and scope.
	Session echo.MiddlewareFunc
	Tenant  echo.MiddlewareFunc
	// CSRF is skipped when nil.
	CSRF        echo.MiddlewareFunc
	CORSOrigins []string
	BodyLimit   string
	Metrics     http.Handler
}

// New builds the echo instance with the global middleware stack and all routes.
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(opts.Logger)

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.NewRequestLogger(opts.Logger).Handle())
	e.Use(echoMiddleware.Recover())
	if len(opts.CORSOrigins) > 0 {
		e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
			AllowOrigins:     opts.CORSOrigins,
			AllowCredentials: true,
		}))
	}
	if opts.CSRF != nil {
		e.Use(opts.CSRF)
	}
	if opts.BodyLimit != "" {
		e.Use(echoMiddleware.BodyLimit(opts.BodyLimit))
	}

	versions := middleware.NewVersionMiddleware()
	e.Use(versions.APIVersionResolver())

	if h.Health != nil {
		e.GET("/health", h.Health.LivenessCheck)
		e.GET("/ready", h.Health.ReadinessCheck)
	}
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}

	v1 := e.Group("/v1", versions.VersionHeader("v1"))
	if opts.Session != nil {
		v1.Use(opts.Session)
	}

	auth := v1.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)

	// Invite redemption happens before the invitee has an account.
	v1.GET("/invites/:token", h.Invites.Lookup)
	v1.POST("/invites/:token/accept", h.Invites.Accept)

	protected := v1.Group("", middleware.RequireAuth())
	if opts.Tenant != nil {
		protected.Use(opts.Tenant)
	}

	protected.GET("/me", h.Account.Me)
	protected.PUT("/me", h.Account.UpdateProfile)
	protected.POST("/current-startup", h.Account.SelectStartup)
	protected.GET("/users/assignable", h.Account.AssignableUsers)

	protected.GET("/dashboard", h.Activity.Dashboard)
	protected.GET("/activity", h.Activity.ListActivity)

	protected.GET("/industries", h.Prospects.Industries)
	protected.GET("/prospects", h.Prospects.ListProspects)
	protected.POST("/prospects", h.Prospects.CreateProspect)
	protected.GET("/prospects/:id", h.Prospects.GetProspect)
	protected.PUT("/prospects/:id", h.Prospects.UpdateProspect)
	protected.DELETE("/prospects/:id", h.Prospects.DeleteProspect)
	protected.PUT("/prospects/:id/stage", h.Prospects.ChangeStage)
	protected.PUT("/prospects/:id/owner", h.Prospects.AssignOwner)
	protected.PUT("/prospects/:id/industry", h.Prospects.SetIndustry)
	protected.POST("/prospects/:id/revive", h.Prospects.Revive)
	protected.GET("/prospects/:id/activity", h.Activity.ProspectActivity)
	protected.GET("/dead-leads", h.Prospects.ListDeadLeads)
	protected.GET("/meetings", h.Prospects.ListMeetings)

	protected.GET("/products", h.Products.ListProducts)
	protected.POST("/products", h.Products.CreateProduct)
	protected.GET("/products/:id", h.Products.GetProduct)
	protected.PUT("/products/:id", h.Products.UpdateProduct)
	protected.DELETE("/products/:id", h.Products.DeleteProduct)

	protected.GET("/scripts", h.Products.ListScripts)
	protected.POST("/scripts", h.Products.CreateScript)
	protected.GET("/scripts/:id", h.Products.GetScript)
	protected.PUT("/scripts/:id", h.Products.UpdateScript)
	protected.DELETE("/scripts/:id", h.Products.DeleteScript)

	protected.GET("/materials", h.Materials.ListMaterials)
	protected.POST("/materials", h.Materials.CreateMaterial)
	protected.GET("/materials/:id", h.Materials.GetMaterial)
	protected.DELETE("/materials/:id", h.Materials.DeleteMaterial)
	protected.POST("/materials/:id/versions", h.Materials.UploadVersion)
	protected.GET("/material-versions/:versionId/download", h.Materials.DownloadVersion)
	protected.GET("/material-versions/:versionId/link", h.Materials.VersionLink)

	admin := protected.Group("/admin")
	admin.GET("/startups", h.Tenants.ListStartups)
	admin.POST("/startups", h.Tenants.CreateStartup)
	admin.POST("/members", h.Tenants.AddMember)
	admin.POST("/users", h.Tenants.CreateUser)
	admin.GET("/team", h.Tenants.ListTeam)
	admin.GET("/invites", h.Tenants.ListInvites)
	admin.POST("/invites", h.Tenants.CreateInvite)
	admin.DELETE("/invites/:id", h.Tenants.DeleteInvite)

	return e
}
