package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/checkout"
	"github.com/01moynul/hidaaya-golang/internal/middleware"
	"github.com/01moynul/hidaaya-golang/internal/payment"
)

//
// --- Checkout Handlers ---
//

// CheckoutResponse pairs the checkout session with the cart it charges.
type CheckoutResponse struct {
	Checkout *checkout.Session `json:"checkout"`
	Cart     CartResponse      `json:"cart"`
}

// GetCheckout handles GET /v1/checkout
func (h *Handlers) GetCheckout(c *gin.Context) {
	v := h.visitor(c)
	c.JSON(http.StatusOK, CheckoutResponse{Checkout: v.Checkout, Cart: newCartResponse(v.Cart)})
}

// UpdateShipping handles PATCH /v1/checkout/shipping
// The body is a map of form field to value, e.g. {"firstName": "Aisha"}.
// Editing after a completed order starts a new checkout with the same details.
func (h *Handlers) UpdateShipping(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	v := h.visitor(c)
	v.Checkout.Restart()

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := v.Checkout.HandleChange(name, fields[name]); err != nil {
			if errors.Is(err, checkout.ErrInvalidState) {
				c.JSON(http.StatusConflict, gin.H{"error": "Shipping details cannot be changed while a payment is in progress"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if !h.saveVisitor(c, v) {
		return
	}
	c.JSON(http.StatusOK, CheckoutResponse{Checkout: v.Checkout, Cart: newCartResponse(v.Cart)})
}

// SubmitCheckout handles POST /v1/checkout/submit
// On success the response carries the configuration for the payment widget.
func (h *Handlers) SubmitCheckout(c *gin.Context) {
	v := h.visitor(c)

	widget, err := h.Checkout.Submit(c.Request.Context(), v.Checkout, v.Cart)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrValidation), errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, checkout.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "A payment is already in progress"})
		case errors.Is(err, checkout.ErrPaymentUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "Card payments are currently unavailable"})
		default:
			h.logger().Error("checkout submit failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start payment"})
		}
		return
	}

	if !h.saveVisitor(c, v) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": v.Checkout, "payment": widget})
}

// CancelCheckout handles POST /v1/checkout/cancel
// The storefront calls it when the payment widget is closed unpaid.
func (h *Handlers) CancelCheckout(c *gin.Context) {
	v := h.visitor(c)

	if err := h.Checkout.Cancel(v.Checkout); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No payment in progress"})
		return
	}

	if !h.saveVisitor(c, v) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": checkout.MsgCancelled, "checkout": v.Checkout})
}

// CompleteCheckoutInput is sent by the storefront after the widget reports success.
type CompleteCheckoutInput struct {
	Reference string `json:"reference" binding:"required"`
}

// CompleteCheckout handles POST /v1/checkout/complete
func (h *Handlers) CompleteCheckout(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CompleteCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment reference is required"})
		return
	}

	// 2. --- Attach Account (optional) ---
	var userID *string
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}

	// 3. --- Finalize ---
	v := h.visitor(c)
	done, err := h.Checkout.Complete(c.Request.Context(), v.Checkout, v.Cart, input.Reference, userID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "No payment in progress"})
		case errors.Is(err, checkout.ErrMissingReference), errors.Is(err, checkout.ErrReferenceMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment reference does not match this checkout"})
		case errors.Is(err, payment.ErrNotVerified), errors.Is(err, payment.ErrAmountMismatch):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment could not be verified"})
		case errors.Is(err, checkout.ErrOrderNotSaved):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Your payment was received but we could not save your order. Please contact us with your payment reference.",
				"reference": input.Reference,
			})
		default:
			h.logger().Error("checkout complete failed", zap.String("reference", input.Reference), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete checkout"})
		}
		return
	}

	// 4. --- Persist Cleared Cart ---
	// The order is already placed, so a failed save must not turn into an error
	// the storefront would retry.
	if err := h.Sessions.Save(c.Writer, c.Request, v); err != nil {
		h.logger().Error("failed to save session after order was placed",
			zap.Int64("order_id", done.Order.ID),
			zap.String("reference", input.Reference),
			zap.Error(err),
		)
	}
	c.JSON(http.StatusCreated, done)
}
