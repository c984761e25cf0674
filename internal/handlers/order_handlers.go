package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/middleware"
	"github.com/01moynul/hidaaya-golang/internal/models"
	"github.com/01moynul/hidaaya-golang/internal/orders"
	"github.com/01moynul/hidaaya-golang/internal/receipt"
)

func parseOrderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return id, true
}

// GetReceipt handles GET /v1/orders/:id/receipt
// A visitor can download the receipt of the order their session just placed,
// and a signed-in customer any order attached to their account.
func (h *Handlers) GetReceipt(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	// 1. --- Load Order ---
	order, err := h.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		h.logger().Error("failed to load order for receipt", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	// 2. --- Check Ownership ---
	if !h.ownsOrder(c, order) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	// 3. --- Render PDF ---
	var buf bytes.Buffer
	if err := receipt.Write(&buf, order, h.Settings.GetOrDefault(c.Request.Context())); err != nil {
		h.logger().Error("failed to render receipt", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render receipt"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="hidaaya-receipt-%d.pdf"`, order.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *Handlers) ownsOrder(c *gin.Context, order models.Order) bool {
	if userID, ok := middleware.UserID(c); ok && order.UserID != nil && *order.UserID == userID {
		return true
	}
	v := h.visitor(c)
	return v.Checkout.OrderID != 0 && v.Checkout.OrderID == order.ID
}

//
// --- Back-office Orders ---
//

// ListOrders handles GET /v1/admin/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	list, err := h.Orders.List(c.Request.Context())
	if err != nil {
		h.logger().Error("failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// ExportOrders handles GET /v1/admin/orders/export
func (h *Handlers) ExportOrders(c *gin.Context) {
	list, err := h.Orders.List(c.Request.Context())
	if err != nil {
		h.logger().Error("failed to list orders for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	var buf bytes.Buffer
	if err := orders.WriteCSV(&buf, list); err != nil {
		h.logger().Error("failed to encode orders csv", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export orders"})
		return
	}

	filename := fmt.Sprintf("hidaaya-orders-%s.csv", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetOrderDetails handles GET /v1/admin/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		h.logger().Error("failed to load order", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PATCH /v1/admin/orders/:id/status
// The customer is emailed about the change; an email failure does not undo it.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, err := models.ParseOrderStatus(input.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Apply Transition ---
	ctx := c.Request.Context()
	previous, err := h.Orders.UpdateStatus(ctx, orderID, next)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Cannot change status from %s to %s", previous.Label(), next.Label())})
		return
	case err != nil:
		h.logger().Error("failed to update order status", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	order, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		h.logger().Error("failed to reload order", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Status updated but the order could not be reloaded"})
		return
	}

	// 3. --- Notify Customer ---
	status := h.notifyStatusChange(ctx, order, previous)

	c.JSON(http.StatusOK, gin.H{
		"order":          order,
		"previousStatus": previous,
		"emailStatus":    status,
	})
}

func (h *Handlers) notifyStatusChange(ctx context.Context, order models.Order, previous models.OrderStatus) email.Status {
	log := h.logger().With(zap.Int64("order_id", order.ID))
	if h.Notifier == nil {
		return email.StatusFailed
	}

	res, err := h.Notifier.SendStatusEmail(ctx, email.StatusEmailRequest{
		OrderID:          strconv.FormatInt(order.ID, 10),
		CustomerName:     order.Customer.FullName(),
		CustomerEmail:    order.Customer.Email,
		Status:           order.Status,
		Items:            email.LineItemsFrom(order.Items),
		Total:            order.Total,
		NotificationType: models.NotificationStatusUpdate,
		PreviousStatus:   previous,
	})
	status := email.Classify(res, err)

	detail := res.Failures()
	if err != nil {
		detail = err.Error()
		log.Error("status email failed", zap.Error(err))
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := h.Orders.RecordNotification(recordCtx, order.ID, models.NotificationStatusUpdate, string(status), detail); err != nil {
		log.Warn("could not record notification", zap.Error(err))
	}
	return status
}
