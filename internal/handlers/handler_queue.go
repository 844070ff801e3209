package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/clearvest/payout_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// queueHandler exposes queue introspection and operator controls.
type queueHandler struct {
	queueService portssvc.QueueSvc
}

func newQueueHandler(qs portssvc.QueueSvc) *queueHandler {
	return &queueHandler{queueService: qs}
}

// registerQueueRoutes registers queue operation routes.
func registerQueueRoutes(rg *gin.RouterGroup, queueService portssvc.QueueSvc) {
	h := newQueueHandler(queueService)

	queue := rg.Group("/queue")
	{
		queue.GET("/metrics", h.metrics)
		queue.GET("/failed", h.listFailed)
		queue.POST("/failed/retry", h.retryFailed)
		queue.POST("/pause", h.pause)
		queue.POST("/resume", h.resume)
	}
	rg.GET("/distributions/:distributionID/progress", h.progress)
}

func (h *queueHandler) metrics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	metrics, err := h.queueService.Metrics(c.Request.Context())
	if err != nil {
		logger.Error("Failed to collect queue metrics", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect queue metrics"})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *queueHandler) listFailed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	jobs, err := h.queueService.ListFailed(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list failed jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list failed jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *queueHandler) retryFailed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RetryFailedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RetryFailed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	retried, err := h.queueService.RetryFailed(c.Request.Context(), req.JobIDs)
	if err != nil {
		logger.Error("Failed to retry failed jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retry failed jobs"})
		return
	}

	logger.Info("Failed jobs requeued", slog.Int("retried", retried))
	c.JSON(http.StatusOK, dto.RetryFailedResponse{Retried: retried})
}

func (h *queueHandler) pause(c *gin.Context) {
	h.queueService.Pause()
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (h *queueHandler) resume(c *gin.Context) {
	h.queueService.Resume()
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

func (h *queueHandler) progress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	distributionID := c.Param("distributionID")

	progress, err := h.queueService.Progress(c.Request.Context(), distributionID)
	if err != nil {
		logger.Error("Failed to load distribution progress",
			slog.String("distribution_id", distributionID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load distribution progress"})
		return
	}
	c.JSON(http.StatusOK, progress)
}
