package models

import "time"

// PlaceholderImage is shown when a product has no resolvable image.
const PlaceholderImage = "/images/placeholder.svg"

// Product is the model for the 'products' table.
// Image and Images are resolved from 'product_images', not stored on the row.
type Product struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Slug            string    `json:"slug" db:"slug"`
	Price           int64     `json:"price" db:"price"` // whole Naira
	Description     string    `json:"description" db:"description"`
	DescriptionHTML string    `json:"descriptionHtml,omitempty" db:"-"`
	Category        Category  `json:"category" db:"category"`
	Featured        bool      `json:"featured" db:"featured"`
	Image           string    `json:"image" db:"-"`
	Images          []string  `json:"images" db:"-"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductImage is the model for the 'product_images' table.
type ProductImage struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	URL       string    `json:"url" db:"url"`
	IsPrimary bool      `json:"isPrimary" db:"is_primary"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
