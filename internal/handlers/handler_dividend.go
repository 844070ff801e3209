package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/clearvest/payout_engine/internal/apperrors"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/clearvest/payout_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// dividendHandler handles HTTP requests for manual dividend distribution.
type dividendHandler struct {
	dividendService portssvc.DividendDistributionSvc
}

func newDividendHandler(ds portssvc.DividendDistributionSvc) *dividendHandler {
	return &dividendHandler{dividendService: ds}
}

// registerDividendRoutes registers routes for dividend distribution.
func registerDividendRoutes(rg *gin.RouterGroup, dividendService portssvc.DividendDistributionSvc) {
	h := newDividendHandler(dividendService)

	dividends := rg.Group("/dividends")
	{
		dividends.POST("/distribute", h.distribute)
		dividends.POST("/reports/:reportID/distribute", h.distributeForReport)
		dividends.GET("/reports/:reportID", h.getReportDistribution)
	}
}

func (h *dividendHandler) distribute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DistributeDividendsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for Distribute", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	period, err := periodFromRequest(req.Month, req.Year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Info("Received request to run dividend distribution", slog.String("period", period.String()))

	result, err := h.dividendService.Distribute(c.Request.Context(), period)
	if err != nil {
		logger.Error("Dividend distribution run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run dividend distribution"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *dividendHandler) getReportDistribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reportID := c.Param("reportID")

	details, err := h.dividendService.GetReportDistribution(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No dividend recorded for report"})
			return
		}
		logger.Error("Failed to load dividend for report",
			slog.String("report_id", reportID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dividend"})
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *dividendHandler) distributeForReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reportID := c.Param("reportID")

	logger = logger.With(slog.String("report_id", reportID))
	logger.Info("Received request to distribute dividend for report")

	result, err := h.dividendService.DistributeForReport(c.Request.Context(), reportID)
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Revenue report not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Revenue report not found"})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Report not distributable", slog.String("error", err.Error()))
			msg := "Report not distributable"
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		default:
			logger.Error("Dividend distribution failed for report", slog.String("error", err.Error()))
			payload := gin.H{"error": "Failed to distribute dividend"}
			if result != nil {
				payload["result"] = result
			}
			c.JSON(http.StatusInternalServerError, payload)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
