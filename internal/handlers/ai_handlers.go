package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/ai"
)

// DescribeProduct handles POST /v1/admin/products/describe
// It drafts a markdown description the admin can edit before saving.
func (h *Handlers) DescribeProduct(c *gin.Context) {
	if h.AI == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	var input ai.DescribeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	text, err := h.AI.DescribeProduct(c.Request.Context(), input)
	if err != nil {
		h.logger().Error("describe product failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	Message string `json:"message" binding:"required"`
}

// ChatAI handles POST /v1/admin/assistant
// The assistant answers back-office questions with read-only queries.
func (h *Handlers) ChatAI(c *gin.Context) {
	if h.AI == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	// 1. Parse Input
	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. Ask
	answer, err := h.AI.Ask(c.Request.Context(), input.Message)
	if err != nil {
		h.logger().Error("assistant failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Service unavailable"})
		return
	}

	c.JSON(http.StatusOK, answer)
}
