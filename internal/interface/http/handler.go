package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

// Handler wires the HTTP transport to the outlook service.
type Handler struct {
	svc    outlook.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc outlook.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// CreateForecast fetches history, forecasts the next week and stores the report.
func (h *Handler) CreateForecast(c *gin.Context) {
	var req outlook.Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}

	report, err := h.svc.Forecast(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	if subject, ok := callerSubject(c); ok {
		h.logger.Info("forecast created", "id", report.ID, "subject", subject)
	}
	c.JSON(http.StatusCreated, report)
}

// PreviewForecast runs the model over caller supplied history without storing anything.
func (h *Handler) PreviewForecast(c *gin.Context) {
	var req outlook.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	report, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListForecasts returns recent reports, newest first.
func (h *Handler) ListForecasts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}

	reports, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// LatestForecast returns the most recent report for ?location=, or the default location.
func (h *Handler) LatestForecast(c *gin.Context) {
	report, err := h.svc.Latest(c.Request.Context(), c.Query("location"))
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetForecast returns a stored report by id.
func (h *Handler) GetForecast(c *gin.Context) {
	report, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromServiceError(err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
