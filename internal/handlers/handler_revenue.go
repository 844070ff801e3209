package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/clearvest/payout_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// revenueHandler handles HTTP requests for manual revenue runs.
type revenueHandler struct {
	revenueService portssvc.RevenueCalculationSvc
}

func newRevenueHandler(rs portssvc.RevenueCalculationSvc) *revenueHandler {
	return &revenueHandler{revenueService: rs}
}

// registerRevenueRoutes registers routes for revenue calculation.
func registerRevenueRoutes(rg *gin.RouterGroup, revenueService portssvc.RevenueCalculationSvc) {
	h := newRevenueHandler(revenueService)

	revenue := rg.Group("/revenue")
	{
		revenue.POST("/calculate", h.calculate)
		revenue.POST("/companies/:companyID/calculate", h.calculateForCompany)
		revenue.GET("/companies/:companyID/report", h.getReport)
	}
}

// periodFromRequest resolves the target period, defaulting to the previous
// calendar month when the request leaves it out.
func periodFromRequest(month, year int) (domain.Period, error) {
	if month == 0 && year == 0 {
		return domain.PreviousPeriod(time.Now().UTC()), nil
	}
	return domain.NewPeriod(month, year)
}

func (h *revenueHandler) calculate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	// An empty body is a valid "previous month" request.
	var req dto.CalculateRevenueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for Calculate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	period, err := periodFromRequest(req.Month, req.Year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Info("Received request to run revenue calculation", slog.String("period", period.String()))

	result, err := h.revenueService.Calculate(c.Request.Context(), period)
	if err != nil {
		logger.Error("Revenue calculation run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run revenue calculation"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *revenueHandler) getReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	month, monthErr := strconv.Atoi(c.Query("month"))
	year, yearErr := strconv.Atoi(c.Query("year"))
	if monthErr != nil || yearErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month and year query parameters are required"})
		return
	}
	period, err := domain.NewPeriod(month, year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.revenueService.GetReport(c.Request.Context(), companyID, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Revenue report not found"})
			return
		}
		logger.Error("Failed to load revenue report",
			slog.String("company_id", companyID),
			slog.String("period", period.String()),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load revenue report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *revenueHandler) calculateForCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CalculateRevenueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CalculateForCompany", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	period, err := periodFromRequest(req.Month, req.Year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger = logger.With(slog.String("company_id", companyID), slog.String("period", period.String()))
	logger.Info("Received request to run revenue calculation for company")

	result, err := h.revenueService.CalculateForCompany(c.Request.Context(), companyID, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Company not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		logger.Error("Revenue calculation failed for company", slog.String("error", err.Error()))
		status := http.StatusInternalServerError
		payload := gin.H{"error": "Failed to calculate revenue"}
		if result != nil {
			payload["result"] = result
		}
		c.JSON(status, payload)
		return
	}

	c.JSON(http.StatusOK, result)
}
