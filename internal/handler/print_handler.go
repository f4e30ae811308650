// internal/handler/print_handler.go
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/service"
	"thermal-print-service/internal/utils"
)

// Printer accepts print jobs
type Printer interface {
	PrintText(ctx context.Context, text, title string) (*dispatch.Outcome, error)
	PrintBuffer(ctx context.Context, buf []byte) (*dispatch.Outcome, error)
}

// PrintHandler handles print requests
type PrintHandler struct {
	printer      Printer
	maxBodyBytes int64
	logger       *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler. maxBodyBytes limits raw
// buffer uploads.
func NewPrintHandler(printer Printer, maxBodyBytes int64, logger *zap.Logger) *PrintHandler {
	return &PrintHandler{
		printer:      printer,
		maxBodyBytes: maxBodyBytes,
		logger:       utils.NewServiceLogger(logger, "print-handler"),
	}
}

// RegisterRoutes registers print routes
func (h *PrintHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/print/ticket", h.PrintTicket)
	router.POST("/print-thermal", h.PrintThermal)
}

// PrintTicketRequest is the body of POST /print/ticket
type PrintTicketRequest struct {
	Text  string `json:"text" binding:"required"`
	Title string `json:"title"`
}

// PrintResponse describes a printed job
type PrintResponse struct {
	DispatchID        string                `json:"dispatch_id"`
	Method            string                `json:"method"`
	Destination       model.Destination     `json:"destination"`
	Encoding          string                `json:"encoding,omitempty"`
	RequestedEncoding string                `json:"requested_encoding,omitempty"`
	Degraded          bool                  `json:"degraded"`
	DurationMs        int64                 `json:"duration_ms"`
	FailedAttempts    []model.AttemptResult `json:"failed_attempts"`
}

// PrintFailure is the data of a 502 response
type PrintFailure struct {
	DispatchID string                `json:"dispatch_id"`
	Attempts   []model.AttemptResult `json:"attempts"`
}

// PrintTicket encodes and prints a text ticket
func (h *PrintHandler) PrintTicket(c *gin.Context) {
	var req PrintTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"text": "text is required"})
		return
	}

	outcome, err := h.printer.PrintText(c.Request.Context(), req.Text, req.Title)
	h.respond(c, outcome, err)
}

// PrintThermal prints a raw ESC/POS buffer from the request body
func (h *PrintHandler) PrintThermal(c *gin.Context) {
	body := c.Request.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBodyBytes)
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Buffer too large", err)
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	outcome, err := h.printer.PrintBuffer(c.Request.Context(), buf)
	h.respond(c, outcome, err)
}

func (h *PrintHandler) respond(c *gin.Context, outcome *dispatch.Outcome, err error) {
	if err == nil {
		utils.SuccessResponse(c, http.StatusOK, "Ticket printed", PrintResponse{
			DispatchID:        outcome.DispatchID,
			Method:            outcome.Backend,
			Destination:       outcome.Destination,
			Encoding:          outcome.Encoding,
			RequestedEncoding: outcome.RequestedEncoding,
			Degraded:          outcome.Degraded,
			DurationMs:        outcome.Duration.Milliseconds(),
			FailedAttempts:    nonNil(outcome.Attempts),
		})
		return
	}

	var aggErr *dispatch.AggregateError
	switch {
	case errors.Is(err, service.ErrEmptyJob):
		utils.ErrorResponse(c, http.StatusBadRequest, "Nothing to print", err)
	case errors.Is(err, service.ErrJobTooLarge):
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Job too large", err)
	case errors.Is(err, service.ErrPrinterBusy):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Printer is busy", err)
	case errors.As(err, &aggErr):
		h.logger.Warn("Print failed", zap.String("dispatch_id", aggErr.DispatchID), zap.Int("attempts", len(aggErr.Attempts)))
		utils.FailureResponse(c, http.StatusBadGateway, "Print failed", err,
			PrintFailure{DispatchID: aggErr.DispatchID, Attempts: aggErr.Attempts},
			Suggestions(aggErr),
		)
	default:
		utils.LogError(h.logger.Logger, "Unexpected print error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Print failed", err)
	}
}

// Suggestions returns remediation hints for a failed dispatch
func Suggestions(aggErr *dispatch.AggregateError) []string {
	suggestions := []string{"Check that the printer is connected and powered on"}
	if aggErr.HasPermissionDenied() {
		suggestions = append(suggestions,
			"Grant write access to the device: sudo chmod 666 /dev/usb/lp0, or add the service user to the lp group")
	}

	seen := make(map[string]bool)
	add := func(hint string) {
		if !seen[hint] {
			seen[hint] = true
			suggestions = append(suggestions, hint)
		}
	}
	for _, a := range aggErr.Attempts {
		switch a.Backend {
		case "cups":
			add("Check the CUPS queue with lpstat -p; run printctl setup to convert PostScript queues to raw")
		case "windows-raw":
			add("Check that the printer is installed and RawPrint.exe is next to the service")
		case "usb":
			if a.Reason == model.ReasonPermissionDenied {
				add("Add a udev rule granting access to the printer's USB vendor id")
			}
		}
	}
	return suggestions
}

func nonNil(attempts []model.AttemptResult) []model.AttemptResult {
	if attempts == nil {
		return []model.AttemptResult{}
	}
	return attempts
}
