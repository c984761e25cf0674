package catalog

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

var (
	productCols = []string{"id", "name", "slug", "price", "description", "category", "featured", "created_at", "updated_at"}
	imageCols   = []string{"id", "product_id", "url", "is_primary", "position", "created_at"}
	fixedTime   = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := NewStore(db, nil)
	s.Now = func() time.Time { return fixedTime }
	return s, mock
}

func TestStoreListByCategoryResolvesImages(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE category = ?")).
		WithArgs("scarf").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-1", "Shadow Jersey Scarf", "shadow-jersey-scarf", 5200, "soft", "scarf", true, fixedTime, fixedTime).
			AddRow("p-2", "Chiffon Scarf", "chiffon-scarf", 4500, "light", "scarf", false, fixedTime, fixedTime))

	mock.ExpectQuery("FROM product_images").
		WithArgs("p-1", "p-2").
		WillReturnRows(sqlmock.NewRows(imageCols).
			AddRow("i-1", "p-1", "https://cdn/a.jpg", false, 0, fixedTime).
			AddRow("i-2", "p-1", "https://cdn/b.jpg", true, 1, fixedTime))

	products, err := s.ListByCategory(context.Background(), models.CategoryScarf)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "https://cdn/b.jpg", products[0].Image)
	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, products[0].Images)
	assert.Equal(t, models.PlaceholderImage, products[1].Image)
	assert.Empty(t, products[1].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreImageFailureDegradesToPlaceholder(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE featured = 1")).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-1", "Layered Khimar", "layered-khimar", 12000, "", "khimar", true, fixedTime, fixedTime))
	mock.ExpectQuery("FROM product_images").WillReturnError(errors.New("table missing"))

	products, err := s.ListFeatured(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.PlaceholderImage, products[0].Image)
}

func TestStoreListFailureIsReturned(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM products").WillReturnError(errors.New("connection reset"))

	_, err := s.ListAll(context.Background())
	assert.Error(t, err)
}

func TestStoreGetByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCreateInsertsProductAndImages(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").
		WithArgs(sqlmock.AnyArg(), "Silk Scarf", "silk-scarf", int64(7000), "", "scarf", false, fixedTime, fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn/silk.jpg", true, int64(0), fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn/silk-2.jpg", false, int64(1), fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("new-id", "Silk Scarf", "silk-scarf", 7000, "", "scarf", false, fixedTime, fixedTime))
	mock.ExpectQuery("FROM product_images").
		WillReturnRows(sqlmock.NewRows(imageCols).
			AddRow("i-1", "new-id", "https://cdn/silk.jpg", true, int64(0), fixedTime))

	p, err := s.Create(context.Background(), ProductInput{
		Name:     "Silk Scarf",
		Price:    7000,
		Category: models.CategoryScarf,
		Images:   []string{"https://cdn/silk.jpg", "https://cdn/silk-2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/silk.jpg", p.Image)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateRejectsUnknownCategory(t *testing.T) {
	s, _ := newMockStore(t)
	_, err := s.Create(context.Background(), ProductInput{Name: "Shoes", Price: 1, Category: "shoes"})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestStoreDeleteMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), "gone"), ErrNotFound)
}

func TestResolveImagesFallsBackToFirst(t *testing.T) {
	display, urls := resolveImages([]models.ProductImage{{URL: "a"}, {URL: "b"}})
	assert.Equal(t, "a", display)
	assert.Equal(t, []string{"a", "b"}, urls)
}
