package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//
// --- Back-office Dashboard ---
//

// GetDashboardStats handles GET /v1/admin/dashboard-stats
// It returns today's sales summary.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	summary, err := h.Orders.DailySummary(c.Request.Context(), h.now())
	if err != nil {
		h.logger().Error("failed to build dashboard summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard stats"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RunReportInput picks the day to report on; empty means yesterday.
type RunReportInput struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// RunDailyReport handles POST /v1/admin/reports/daily
// It builds and emails the sales report outside the schedule.
func (h *Handlers) RunDailyReport(c *gin.Context) {
	var input RunReportInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	day := h.now().AddDate(0, 0, -1)
	if input.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.Date, h.now().Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	report, err := h.Reports.Run(c.Request.Context(), day)
	if err != nil {
		h.logger().Error("manual sales report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report"})
		return
	}
	c.JSON(http.StatusOK, report)
}
