package http

import (
	"github.com/labstack/echo/v4"

	"github.com/modernforum/forum/internal/infrastructure/http/handlers"
)

// MountProbes registers the liveness and readiness endpoints. Neither
// requires a session.
func MountProbes(e *echo.Echo, checks ...handlers.Check) {
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
}
