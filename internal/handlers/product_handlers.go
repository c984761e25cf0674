package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/catalog"
	"github.com/01moynul/hidaaya-golang/internal/models"
)

//
// --- Storefront Catalog ---
//

// ListProducts handles GET /v1/products?category=&featured=
func (h *Handlers) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		products []models.Product
		err      error
	)
	switch {
	case c.Query("category") != "":
		category, parseErr := models.ParseCategory(c.Query("category"))
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
			return
		}
		products, err = h.Catalog.ListByCategory(ctx, category)
	case c.Query("featured") != "":
		featured, parseErr := strconv.ParseBool(c.Query("featured"))
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be true or false"})
			return
		}
		if featured {
			products, err = h.Catalog.ListFeatured(ctx)
		} else {
			products, err = h.Catalog.ListAll(ctx)
		}
	default:
		products, err = h.Catalog.ListAll(ctx)
	}
	if err != nil {
		h.logger().Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct handles GET /v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.Catalog.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger().Error("failed to load product", zap.String("product_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

//
// --- Back-office Products ---
//

// CreateProduct handles POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input catalog.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Insert ---
	product, err := h.Products.Create(c.Request.Context(), input)
	if err != nil {
		h.productWriteError(c, "create", err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PATCH /v1/admin/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var patch catalog.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.Products.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.productWriteError(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.productWriteError(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// AddImageInput attaches an already uploaded image to a product.
type AddImageInput struct {
	URL     string `json:"url" binding:"required,url"`
	Primary bool   `json:"primary"`
}

// AddProductImage handles POST /v1/admin/products/:id/images
func (h *Handlers) AddProductImage(c *gin.Context) {
	var input AddImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.Products.AddImage(c.Request.Context(), c.Param("id"), input.URL, input.Primary)
	if err != nil {
		h.productWriteError(c, "add image to", err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (h *Handlers) productWriteError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	default:
		h.logger().Error("product write failed", zap.String("action", action), zap.String("product_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " product"})
	}
}
