package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports failed backing services by name.
type Pinger interface {
	Ping(ctx context.Context) map[string]error
}

// HealthHandler reports whether the API and its databases are reachable
type HealthHandler struct {
	deps Pinger
}

func NewHealthHandler(deps Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HealthCheck answers 200 when every dependency pings, 503 otherwise
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	failed := h.deps.Ping(ctx)
	if len(failed) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "service": "socialshop-api"})
	}
	down := make(map[string]string, len(failed))
	for name, err := range failed {
		down[name] = err.Error()
	}
	return c.JSON(http.StatusServiceUnavailable, echo.Map{
		"status":  "degraded",
		"service": "socialshop-api",
		"down":    down,
	})
}
