package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewEcho builds the echo instance with the request validator, recovery and
// every route registered. gatherer backs /metrics; nil serves the default registry.
func NewEcho(s *Server, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	metricsHandler := promhttp.Handler()
	if gatherer != nil {
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/:id/assign", s.AssignOrder)
	api.POST("/inventory/changes", s.InventoryChanged)

	outlets := api.Group("/outlets/:id")
	outlets.POST("/backlog", s.AssignBacklog)
	outlets.GET("/orders/unassigned", s.GetUnassignedOrders)
	outlets.GET("/shift", s.GetShift)
	outlets.POST("/shift/open", s.OpenShift)
	outlets.POST("/shift/close", s.CloseShift)
	outlets.GET("/roster", s.GetRoster)
	outlets.PUT("/roster", s.SetRoster)
	outlets.POST("/roster/default", s.ActivateDefaultRoster)

	return e
}
