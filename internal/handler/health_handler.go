// internal/handler/health_handler.go
package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thermal-print-service/internal/config"
	"thermal-print-service/internal/service"
	"thermal-print-service/internal/utils"
)

// Detector reports which printers the service can currently reach
type Detector interface {
	Detect(ctx context.Context) *service.DetectionReport
}

// HealthHandler handles health, version and status requests
type HealthHandler struct {
	detector  Detector
	config    *config.Config
	startedAt time.Time
	logger    *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(detector Detector, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		detector:  detector,
		config:    config,
		startedAt: time.Now(),
		logger:    utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/version", h.Version)
	router.GET("/status", h.Status)
}

// HealthCheck reports that the service is up. It does not touch printers.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   h.config.App.Name,
		Port:      h.config.Server.Port,
		Timestamp: time.Now(),
	})
}

// Version reports build and platform information
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Name:        h.config.App.Name,
		Version:     h.config.App.Version,
		Description: "Thermal receipt printer service (ESC/POS)",
		Platform:    runtime.GOOS,
		Arch:        runtime.GOARCH,
		GoVersion:   runtime.Version(),
	})
}

// Status combines uptime with a live printer detection
func (h *HealthHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	report := h.detector.Detect(ctx)
	health := "ok"
	if report.Available == 0 {
		health = "no_printer"
	}

	c.JSON(http.StatusOK, StatusResponse{
		Version:   h.config.App.Version,
		Uptime:    int64(time.Since(h.startedAt).Seconds()),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		Printers:  report,
		Health:    health,
		Timestamp: time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Port      string    `json:"port"`
	Timestamp time.Time `json:"timestamp"`
}

// VersionResponse represents the version response
type VersionResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
	Arch        string `json:"arch"`
	GoVersion   string `json:"go_version"`
}

// StatusResponse represents the status response
type StatusResponse struct {
	Version   string                   `json:"version"`
	Uptime    int64                    `json:"uptime_seconds"`
	Platform  string                   `json:"platform"`
	Arch      string                   `json:"arch"`
	Printers  *service.DetectionReport `json:"printers"`
	Health    string                   `json:"health"`
	Timestamp time.Time                `json:"timestamp"`
}
