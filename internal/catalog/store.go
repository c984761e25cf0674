package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/database"
	"github.com/01moynul/hidaaya-golang/internal/models"
)

const productColumns = `id, name, slug, price, description, category, featured, created_at, updated_at`

// Store is the MySQL-backed product source and the target of back-office edits.
type Store struct {
	DB     *sql.DB
	Logger *zap.Logger
	Now    func() time.Time
}

// NewStore returns a Store over db.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{DB: db, Logger: logger, Now: time.Now}
}

func (s *Store) Name() string { return "mysql" }

func (s *Store) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.query(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
}

func (s *Store) ListFeatured(ctx context.Context) ([]models.Product, error) {
	return s.query(ctx, "SELECT "+productColumns+" FROM products WHERE featured = 1 ORDER BY created_at DESC")
}

func (s *Store) ListByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	return s.query(ctx, "SELECT "+productColumns+" FROM products WHERE category = ? ORDER BY created_at DESC", string(category))
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Product, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	products := []models.Product{p}
	s.attachImages(ctx, s.DB, products)
	return products[0], nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	s.attachImages(ctx, s.DB, products)
	return products, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	var category string
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Description, &category, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	p.Category = models.Category(category)
	return p, err
}

// attachImages resolves the display image and ordered image list for each product
// with a single query. Failures degrade to the placeholder image and are only logged.
func (s *Store) attachImages(ctx context.Context, db database.DBTX, products []models.Product) {
	if len(products) == 0 {
		return
	}

	ids := make([]any, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	query := `
		SELECT id, product_id, url, is_primary, position, created_at
		FROM product_images
		WHERE product_id IN (` + placeholders(len(ids)) + `)
		ORDER BY position ASC, created_at ASC`

	byProduct, err := loadImages(ctx, db, query, ids...)
	if err != nil {
		s.Logger.Warn("product image lookup failed, using placeholders", zap.Int("products", len(products)), zap.Error(err))
		byProduct = nil
	}

	for i := range products {
		products[i].Image, products[i].Images = resolveImages(byProduct[products[i].ID])
	}
}

func loadImages(ctx context.Context, db database.DBTX, query string, args ...any) (map[string][]models.ProductImage, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]models.ProductImage{}
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.IsPrimary, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		out[img.ProductID] = append(out[img.ProductID], img)
	}
	return out, rows.Err()
}

// resolveImages picks the primary image (or the first one) and keeps the full ordered list.
func resolveImages(images []models.ProductImage) (string, []string) {
	if len(images) == 0 {
		return models.PlaceholderImage, []string{}
	}
	display := images[0].URL
	urls := make([]string, 0, len(images))
	for _, img := range images {
		if img.IsPrimary {
			display = img.URL
		}
		urls = append(urls, img.URL)
	}
	return display, urls
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
