package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/cart"
	"github.com/01moynul/hidaaya-golang/internal/catalog"
)

//
// --- Cart Handlers (visitor session) ---
//

// CartResponse is the cart as the storefront renders it.
type CartResponse struct {
	Items      []cart.Item `json:"items"`
	TotalItems int         `json:"totalItems"`
	Subtotal   int64       `json:"subtotal"`
}

func newCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		Subtotal:   c.Subtotal(),
	}
}

// GetCart handles GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	v := h.visitor(c)
	c.JSON(http.StatusOK, newCartResponse(v.Cart))
}

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddToCart handles POST /v1/cart/items
// The price stored on the line is the catalog price at the time of adding.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// 1. --- Look Up Product ---
	product, err := h.Catalog.GetByID(c.Request.Context(), input.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger().Error("cart product lookup failed", zap.String("product_id", input.ProductID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	// 2. --- Merge Into Cart ---
	v := h.visitor(c)
	v.Cart.Add(cart.Snapshot(product), input.Quantity)

	if !h.saveVisitor(c, v) {
		return
	}
	c.JSON(http.StatusCreated, newCartResponse(v.Cart))
}

// UpdateCartItemInput sets a line's quantity. Zero removes the line.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// UpdateCartItem handles PUT /v1/cart/items/:product_id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	v := h.visitor(c)
	if !v.Cart.UpdateQuantity(c.Param("product_id"), *input.Quantity) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	if !h.saveVisitor(c, v) {
		return
	}
	c.JSON(http.StatusOK, newCartResponse(v.Cart))
}

// DeleteCartItem handles DELETE /v1/cart/items/:product_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	v := h.visitor(c)
	if !v.Cart.Remove(c.Param("product_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	if !h.saveVisitor(c, v) {
		return
	}
	c.JSON(http.StatusOK, newCartResponse(v.Cart))
}

// ClearCart handles DELETE /v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	v := h.visitor(c)
	v.Cart.Clear()

	if !h.saveVisitor(c, v) {
		return
	}
	c.JSON(http.StatusOK, newCartResponse(v.Cart))
}
