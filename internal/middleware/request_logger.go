package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"dealtracker/internal/common"
	"dealtracker/internal/observability/metrics"
	"dealtracker/internal/tenancy"
)

// RequestLogger attaches a request-scoped zerolog logger to the context, logs
// each request once it completes and records the HTTP metrics.
type RequestLogger struct {
	logger zerolog.Logger
}

func NewRequestLogger(logger zerolog.Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

func (m *RequestLogger) Handle() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			req := c.Request()

			reqLogger := m.logger.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("ip", c.RealIP()).
				Logger()
			c.SetRequest(req.WithContext(reqLogger.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				// commit the response so the status below is the one sent
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			duration := time.Since(started)
			metrics.ObserveHTTPRequest(req.Method, path, strconv.Itoa(status), duration)

			if skipRequestLog(req.Method, path) && err == nil {
				return nil
			}

			ctx := c.Request().Context()
			event := m.eventFor(status, req.Method)
			if principal, ok := common.GetPrincipalFromContext(ctx); ok {
				event = event.Str("user_id", principal.ID.String())
			}
			if startupID, ok := tenancy.FromContext(ctx).StartupID(); ok {
				event = event.Str("startup_id", startupID.String())
			}
			if err != nil {
				event = event.Err(err)
			}
			event.
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("path", path).
				Int("status", status).
				Dur("duration", duration).
				Msg("http request")
			return nil
		}
	}
}

// eventFor picks the level: server errors at error, client errors and mutations
// at info, reads at debug.
func (m *RequestLogger) eventFor(status int, method string) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return m.logger.Error()
	case status >= http.StatusBadRequest:
		return m.logger.Info()
	case method == http.MethodGet || method == http.MethodHead:
		return m.logger.Debug()
	default:
		return m.logger.Info()
	}
}

func skipRequestLog(method, path string) bool {
	if method != http.MethodGet {
		return false
	}
	for _, prefix := range []string{"/health", "/ready", "/metrics", "/favicon"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
