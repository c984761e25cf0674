package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/models"
	"github.com/01moynul/hidaaya-golang/internal/settings"
	"github.com/01moynul/hidaaya-golang/internal/users"
)

//
// --- Store Settings ---
//

// PublicSettings is what the storefront may see of the settings row.
type PublicSettings struct {
	StoreName      string                `json:"storeName"`
	Currency       string                `json:"currency"`
	TaxRate        float64               `json:"taxRate"`
	PaymentMethods models.PaymentMethods `json:"paymentMethods"`
	ContactEmail   string                `json:"contactEmail"`
	ContactPhone   string                `json:"contactPhone"`
	Address        string                `json:"address"`
}

// GetPublicSettings handles GET /v1/settings/public
func (h *Handlers) GetPublicSettings(c *gin.Context) {
	s := h.Settings.GetOrDefault(c.Request.Context())
	c.JSON(http.StatusOK, PublicSettings{
		StoreName:      s.StoreName,
		Currency:       s.Currency,
		TaxRate:        s.TaxRate,
		PaymentMethods: s.PaymentMethods,
		ContactEmail:   s.ContactEmail,
		ContactPhone:   s.ContactPhone,
		Address:        s.Address,
	})
}

// GetSettings handles GET /v1/admin/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Settings.GetOrDefault(c.Request.Context()))
}

// UpdateSettings handles PATCH /v1/admin/settings
// Without an id the first settings row is created from the defaults.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var patch models.StoreSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Update or Insert ---
	updated, err := h.Settings.Update(c.Request.Context(), patch)
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Settings not found"})
			return
		}
		h.logger().Error("failed to update settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

//
// --- Users ---
//

// ListUsers handles GET /v1/admin/users
func (h *Handlers) ListUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.logger().Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	if list == nil {
		list = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

type UpdateRoleInput struct {
	Role models.Role `json:"role" binding:"required"`
}

// UpdateUserRole handles PATCH /v1/admin/users/:id/role
func (h *Handlers) UpdateUserRole(c *gin.Context) {
	var input UpdateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.UpdateRole(c.Request.Context(), c.Param("id"), input.Role)
	switch {
	case errors.Is(err, users.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be customer or admin"})
		return
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case err != nil:
		h.logger().Error("failed to update role", zap.String("user_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, user)
}
