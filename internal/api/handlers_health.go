// handlers_health.go - Health check handler
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/riv-inspector/backend/internal/riv"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	registry *riv.Registry
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(version string, registry *riv.Registry) HealthHandler {
	return &HealthHandlerImpl{version: version, registry: registry}
}

// HandleHealth returns server health status and the available runtime bindings
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"bindings": h.registry.Names(),
	})
}
