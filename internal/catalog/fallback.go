package catalog

import (
	"context"
	"time"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

var fallbackUpdated = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

var fallbackProducts = []models.Product{
	{
		ID:          "static-shadow-jersey-scarf",
		Name:        "Shadow Jersey Scarf",
		Slug:        "shadow-jersey-scarf",
		Price:       5200,
		Description: "Soft stretch jersey that holds its shape all day. **No pins needed.**",
		Category:    models.CategoryScarf,
		Featured:    true,
		Image:       "/images/products/shadow-jersey-scarf.jpg",
		Images:      []string{"/images/products/shadow-jersey-scarf.jpg", "/images/products/shadow-jersey-scarf-2.jpg"},
	},
	{
		ID:          "static-chiffon-scarf",
		Name:        "Premium Chiffon Scarf",
		Slug:        "premium-chiffon-scarf",
		Price:       4500,
		Description: "Lightweight chiffon with a subtle sheen, ideal for occasions.",
		Category:    models.CategoryScarf,
		Image:       "/images/products/premium-chiffon-scarf.jpg",
		Images:      []string{"/images/products/premium-chiffon-scarf.jpg"},
	},
	{
		ID:          "static-layered-khimar",
		Name:        "Layered Khimar",
		Slug:        "layered-khimar",
		Price:       12000,
		Description: "Two-layer khimar in breathable nida fabric.",
		Category:    models.CategoryKhimar,
		Featured:    true,
		Image:       "/images/products/layered-khimar.jpg",
		Images:      []string{"/images/products/layered-khimar.jpg"},
	},
	{
		ID:          "static-magnetic-pins",
		Name:        "Magnetic Hijab Pins",
		Slug:        "magnetic-hijab-pins",
		Price:       1500,
		Description: "Set of six snag-free magnetic pins.",
		Category:    models.CategoryAccessory,
		Image:       "/images/products/magnetic-hijab-pins.jpg",
		Images:      []string{"/images/products/magnetic-hijab-pins.jpg"},
	},
	{
		ID:          "static-prayer-set",
		Name:        "Travel Prayer Set",
		Slug:        "travel-prayer-set",
		Price:       9500,
		Description: "Foldable prayer mat with a matching one-piece prayer garment.",
		Category:    models.CategoryPrayer,
		Featured:    true,
		Image:       "/images/products/travel-prayer-set.jpg",
		Images:      []string{"/images/products/travel-prayer-set.jpg"},
	},
	{
		ID:          "static-gift-card",
		Name:        "Gift Card",
		Slug:        "gift-card",
		Price:       10000,
		Description: "A gift card redeemable on any item in the store.",
		Category:    models.CategoryOther,
		Image:       models.PlaceholderImage,
		Images:      []string{},
	},
}

// Static serves the bundled demo catalog. It never fails a listing.
type Static struct {
	products []models.Product
}

// NewStatic returns the bundled dataset, or products when supplied.
func NewStatic(products ...models.Product) *Static {
	if len(products) == 0 {
		products = fallbackProducts
	}
	out := make([]models.Product, len(products))
	for i, p := range products {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = fallbackUpdated
			p.UpdatedAt = fallbackUpdated
		}
		out[i] = p
	}
	return &Static{products: out}
}

func (s *Static) Name() string { return "static" }

func (s *Static) ListAll(context.Context) ([]models.Product, error) {
	return s.filter(func(models.Product) bool { return true }), nil
}

func (s *Static) ListFeatured(context.Context) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.Featured }), nil
}

func (s *Static) ListByCategory(_ context.Context, category models.Category) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.Category == category }), nil
}

func (s *Static) GetByID(_ context.Context, id string) (models.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (s *Static) filter(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range s.products {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func clone(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	return p
}
