package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/item-api/internal/database"
)

// ConnStateReporter exposes the primary database connectivity.
// *database.Mongo satisfies it.
type ConnStateReporter interface {
	State() database.ConnState
	Err() error
}

// Check is a secondary dependency checked on every readiness request.
type Check interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness, readiness and API descriptor routes.
type HealthHandler struct {
	ServiceName string
	Version     string
	DB          ConnStateReporter
	Checks      []Check
}

// NewHealthHandler constructs a HealthHandler.  checks may be empty.
func NewHealthHandler(service, version string, db ConnStateReporter, checks ...Check) *HealthHandler {
	return &HealthHandler{ServiceName: service, Version: version, DB: db, Checks: checks}
}

// Health is the liveness endpoint.  It never consults downstream state.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"service":   h.ServiceName,
	})
}

// Ready answers 200 only while the database is connected.  Secondary checks,
// when configured, must also answer.
func (h *HealthHandler) Ready(c echo.Context) error {
	if h.DB == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "not ready",
			"database": database.StateDisconnected.String(),
			"error":    "database not initialized",
		})
	}

	state := h.DB.State()
	if state != database.StateConnected {
		resp := echo.Map{"status": "not ready", "database": state.String()}
		if err := h.DB.Err(); err != nil {
			resp["error"] = err.Error()
		}
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	if len(h.Checks) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"status": "ready", "database": state.String()})
	}

	databases := map[string]string{"mongodb": state.String()}
	for _, p := range h.Checks {
		if err := p.Ping(c.Request().Context()); err != nil {
			c.Logger().Errorf("readiness check failed: %s: %v", p.Name(), err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status":   "not ready",
				"database": state.String(),
				"error":    p.Name() + ": " + err.Error(),
			})
		}
		databases[p.Name()] = database.StateConnected.String()
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ready",
		"database":  state.String(),
		"databases": databases,
	})
}

// APIInfo describes the available endpoints.
func (h *HealthHandler) APIInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Enterprise Platform API Service",
		"version": h.Version,
		"endpoints": echo.Map{
			"health": "/health",
			"ready":  "/ready",
			"items":  "/api/items",
		},
	})
}
