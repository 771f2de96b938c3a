package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, pipeline *usecase.Pipeline, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "modawn-voice",
		})
	})

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Conversation endpoint
	handler := NewConverseHandler(pipeline, logger)
	e.POST("/api/converse", handler.Handle)

	// Browser capture/playback client
	e.Static("/", "web")
}
