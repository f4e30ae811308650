// internal/handler/printer_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thermal-print-service/internal/utils"
)

// PrinterHandler exposes printer detection
type PrinterHandler struct {
	detector Detector
	logger   *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(detector Detector, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		detector: detector,
		logger:   utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// RegisterRoutes registers printer routes
func (h *PrinterHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/printers", h.ListPrinters)
}

// ListPrinters resolves the destinations of every backend
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	report := h.detector.Detect(ctx)
	h.logger.Debug("Printer detection completed", zap.Int("available", report.Available))

	utils.SuccessResponse(c, http.StatusOK, "Printer detection completed", report)
}
