package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/email"
)

// SubmitContact handles POST /v1/contact
func (h *Handlers) SubmitContact(c *gin.Context) {
	var input email.ContactRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Notifier.SendContactEmail(c.Request.Context(), input)
	status := email.Classify(res, err)
	if status == email.StatusFailed {
		h.logger().Warn("contact email failed", zap.String("detail", res.Failures()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "We could not send your message. Please try again later."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message sent", "emailStatus": status})
}

//
// --- Notification Functions ---
//

// SendOrderEmailFunction handles POST /v1/functions/send-order-email
func (h *Handlers) SendOrderEmailFunction(c *gin.Context) {
	h.runFunction(c, email.FunctionOrderEmail, h.Functions.HandleOrderFunction)
}

// SendContactEmailFunction handles POST /v1/functions/send-contact-email
func (h *Handlers) SendContactEmailFunction(c *gin.Context) {
	h.runFunction(c, email.FunctionContactEmail, h.Functions.HandleContactFunction)
}

// runFunction answers in the {success, data|error} envelope the function
// client expects.
func (h *Handlers) runFunction(c *gin.Context, name string, fn func(context.Context, []byte) (email.Result, error)) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, email.FunctionResponse{Error: "could not read request body"})
		return
	}

	res, err := fn(c.Request.Context(), raw)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, email.ErrInvalidPayload) {
			code = http.StatusBadRequest
		}
		h.logger().Warn("notification function failed", zap.String("function", name), zap.Error(err))
		c.JSON(code, email.FunctionResponse{Error: err.Error()})
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		c.JSON(http.StatusInternalServerError, email.FunctionResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, email.FunctionResponse{Success: true, Data: data})
}
