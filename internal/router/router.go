package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/item-api/internal/config"
	"github.com/iliyamo/item-api/internal/handler"
	"github.com/iliyamo/item-api/internal/middleware"
)

// accessLogFormat mirrors the combined log format with the request id and
// latency appended.
const accessLogFormat = `${remote_ip} - - [${time_rfc3339}] "${method} ${uri} ${protocol}" ` +
	`${status} ${bytes_out} "${referer}" "${user_agent}" id=${id} latency=${latency_human}` + "\n"

// Setup installs the validator, the error handler and the global middleware
// chain on e: trailing slash removal, panic recovery, request ids, access
// logging and, when reg is not nil, request metrics served on /metrics.
func Setup(e *echo.Echo, reg *prometheus.Registry) {
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// "/api/items/" is the list, as "/api/items" is
	e.Pre(echomw.RemoveTrailingSlash())

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: accessLogFormat,
		Output: e.Logger.Output(),
	}))
	if reg != nil {
		e.Use(middleware.NewHTTPMetrics(reg).Middleware())
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
}

// RegisterRoutes maps the health and descriptor endpoints, which never touch
// item storage.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
	e.GET("/api", h.APIInfo)
}

// RegisterItems maps the item CRUD endpoints under /api/items behind the
// Redis token bucket.  Health routes are never rate limited.  rdb may be nil.
func RegisterItems(e *echo.Echo, h *handler.ItemHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/api/items", middleware.NewTokenBucket(rl, rdb))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
}
