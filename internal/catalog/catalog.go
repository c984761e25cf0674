// Package catalog reads products from the store database, falling back to a
// bundled dataset when the database cannot be reached.
package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

// ErrNotFound is returned when no product matches the requested id.
var ErrNotFound = errors.New("catalog: product not found")

// Source is one tier of product data.
type Source interface {
	Name() string
	ListAll(ctx context.Context) ([]models.Product, error)
	ListFeatured(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category models.Category) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
}

// Catalog serves reads from Primary and, when Primary fails, from Fallback.
// A not-found answer from Primary is final and does not trigger the fallback.
type Catalog struct {
	Primary  Source
	Fallback Source
	Logger   *zap.Logger
}

// New wires a two-tier catalog.
func New(primary, fallback Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{Primary: primary, Fallback: fallback, Logger: logger}
}

func (c *Catalog) ListAll(ctx context.Context) ([]models.Product, error) {
	return c.list(ctx, "list_all", func(s Source) ([]models.Product, error) {
		return s.ListAll(ctx)
	})
}

func (c *Catalog) ListFeatured(ctx context.Context) ([]models.Product, error) {
	return c.list(ctx, "list_featured", func(s Source) ([]models.Product, error) {
		return s.ListFeatured(ctx)
	})
}

func (c *Catalog) ListByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	if !category.Valid() {
		return nil, models.ErrInvalidCategory
	}
	return c.list(ctx, "list_by_category", func(s Source) ([]models.Product, error) {
		return s.ListByCategory(ctx, category)
	})
}

func (c *Catalog) GetByID(ctx context.Context, id string) (models.Product, error) {
	p, err := c.Primary.GetByID(ctx, id)
	if err == nil || errors.Is(err, ErrNotFound) || c.Fallback == nil {
		return withDescriptionHTML(p), err
	}
	c.Logger.Warn("catalog primary read failed, using fallback",
		zap.String("op", "get_by_id"),
		zap.String("product_id", id),
		zap.String("primary", c.Primary.Name()),
		zap.Error(err),
	)
	p, err = c.Fallback.GetByID(ctx, id)
	return withDescriptionHTML(p), err
}

func (c *Catalog) list(ctx context.Context, op string, read func(Source) ([]models.Product, error)) ([]models.Product, error) {
	products, err := read(c.Primary)
	if err != nil && c.Fallback != nil {
		c.Logger.Warn("catalog primary read failed, using fallback",
			zap.String("op", op),
			zap.String("primary", c.Primary.Name()),
			zap.String("fallback", c.Fallback.Name()),
			zap.Error(err),
		)
		products, err = read(c.Fallback)
	}
	if err != nil {
		c.Logger.Error("catalog read failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	for i := range products {
		products[i] = withDescriptionHTML(products[i])
	}
	return products, nil
}

func withDescriptionHTML(p models.Product) models.Product {
	if p.Description != "" && p.DescriptionHTML == "" {
		p.DescriptionHTML = RenderDescription(p.Description)
	}
	return p
}
