package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetOrderNotifications handles GET /v1/admin/orders/:id/notifications
// It lists the email attempts logged for an order, newest first.
func (h *Handlers) GetOrderNotifications(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	list, err := h.Orders.Notifications(c.Request.Context(), orderID)
	if err != nil {
		h.logger().Error("failed to load notifications", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": list})
}
