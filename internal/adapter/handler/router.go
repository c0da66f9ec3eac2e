package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aby0/customer-intelligence/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg     *config.Config
	signals *Signals
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, signals *Signals) *Router {
	return &Router{cfg: cfg, signals: signals}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")
	v1.POST("/extract", rt.signals.Extract)
	v1.POST("/evaluate", rt.signals.Evaluate)
	v1.POST("/summarize", rt.signals.Summarize)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
