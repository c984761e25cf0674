package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

// ProductInput is the back-office payload for a new product.
// The first image becomes the primary one.
type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       int64           `json:"price" binding:"required,gt=0"`
	Category    models.Category `json:"category" binding:"required"`
	Featured    bool            `json:"featured"`
	Images      []string        `json:"images" binding:"omitempty,dive,required"`
}

// ProductPatch is a partial product update; nil fields are left untouched.
// A non-nil Images replaces the whole image set.
type ProductPatch struct {
	Name        *string          `json:"name" binding:"omitempty,min=1"`
	Description *string          `json:"description"`
	Price       *int64           `json:"price" binding:"omitempty,gt=0"`
	Category    *models.Category `json:"category"`
	Featured    *bool            `json:"featured"`
	Images      *[]string        `json:"images"`
}

// Create inserts a product and its images in one transaction.
func (s *Store) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	if !in.Category.Valid() {
		return models.Product{}, models.ErrInvalidCategory
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, fmt.Errorf("begin product create: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := s.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, slug, price, description, category, featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, slug.Make(in.Name), in.Price, in.Description, string(in.Category), in.Featured, now, now,
	)
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}

	if err := s.insertImages(ctx, tx, id, in.Images); err != nil {
		return models.Product{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Product{}, fmt.Errorf("commit product create: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Update applies patch to product id.
func (s *Store) Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return models.Product{}, models.ErrInvalidCategory
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, fmt.Errorf("begin product update: %w", err)
	}
	defer tx.Rollback()

	// Dynamically build the SET clause from the supplied fields
	querySet := []string{"updated_at = ?"}
	queryArgs := []any{s.Now()}

	if patch.Name != nil {
		querySet = append(querySet, "name = ?", "slug = ?")
		queryArgs = append(queryArgs, *patch.Name, slug.Make(*patch.Name))
	}
	if patch.Description != nil {
		querySet = append(querySet, "description = ?")
		queryArgs = append(queryArgs, *patch.Description)
	}
	if patch.Price != nil {
		querySet = append(querySet, "price = ?")
		queryArgs = append(queryArgs, *patch.Price)
	}
	if patch.Category != nil {
		querySet = append(querySet, "category = ?")
		queryArgs = append(queryArgs, string(*patch.Category))
	}
	if patch.Featured != nil {
		querySet = append(querySet, "featured = ?")
		queryArgs = append(queryArgs, *patch.Featured)
	}
	queryArgs = append(queryArgs, id)

	result, err := tx.ExecContext(ctx, "UPDATE products SET "+strings.Join(querySet, ", ")+" WHERE id = ?", queryArgs...)
	if err != nil {
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return models.Product{}, ErrNotFound
	}

	if patch.Images != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = ?", id); err != nil {
			return models.Product{}, fmt.Errorf("clear product images: %w", err)
		}
		if err := s.insertImages(ctx, tx, id, *patch.Images); err != nil {
			return models.Product{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Product{}, fmt.Errorf("commit product update: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a product; its images cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImage appends an image to a product, optionally making it the primary one.
func (s *Store) AddImage(ctx context.Context, productID, url string, primary bool) (models.ProductImage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.ProductImage{}, fmt.Errorf("begin add image: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM products WHERE id = ?", productID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ProductImage{}, ErrNotFound
		}
		return models.ProductImage{}, fmt.Errorf("check product: %w", err)
	}

	var position int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position) + 1, 0) FROM product_images WHERE product_id = ?", productID).Scan(&position); err != nil {
		return models.ProductImage{}, fmt.Errorf("next image position: %w", err)
	}
	if position == 0 {
		primary = true
	}
	if primary {
		if _, err := tx.ExecContext(ctx, "UPDATE product_images SET is_primary = 0 WHERE product_id = ?", productID); err != nil {
			return models.ProductImage{}, fmt.Errorf("reset primary image: %w", err)
		}
	}

	img := models.ProductImage{
		ID:        uuid.NewString(),
		ProductID: productID,
		URL:       url,
		IsPrimary: primary,
		Position:  position,
		CreatedAt: s.Now(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO product_images (id, product_id, url, is_primary, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		img.ID, img.ProductID, img.URL, img.IsPrimary, img.Position, img.CreatedAt,
	)
	if err != nil {
		return models.ProductImage{}, fmt.Errorf("insert product image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.ProductImage{}, fmt.Errorf("commit add image: %w", err)
	}
	return img, nil
}

func (s *Store) insertImages(ctx context.Context, tx *sql.Tx, productID string, urls []string) error {
	now := s.Now()
	for i, url := range urls {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (id, product_id, url, is_primary, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), productID, url, i == 0, i, now,
		)
		if err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}
	return nil
}
