package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

type failingSource struct {
	err   error
	calls int
}

func (f *failingSource) Name() string { return "failing" }

func (f *failingSource) ListAll(context.Context) ([]models.Product, error) {
	f.calls++
	return nil, f.err
}

func (f *failingSource) ListFeatured(context.Context) ([]models.Product, error) {
	f.calls++
	return nil, f.err
}

func (f *failingSource) ListByCategory(context.Context, models.Category) ([]models.Product, error) {
	f.calls++
	return nil, f.err
}

func (f *failingSource) GetByID(context.Context, string) (models.Product, error) {
	f.calls++
	return models.Product{}, f.err
}

func TestCatalogFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &failingSource{err: errors.New("connection refused")}
	c := New(primary, NewStatic(), nil)

	all, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(fallbackProducts))

	featured, err := c.ListFeatured(context.Background())
	require.NoError(t, err)
	for _, p := range featured {
		assert.True(t, p.Featured)
	}
	assert.Equal(t, 2, primary.calls)
}

func TestCatalogSurfacesErrorWithoutFallback(t *testing.T) {
	c := New(&failingSource{err: errors.New("boom")}, nil, nil)
	_, err := c.ListAll(context.Background())
	assert.Error(t, err)
}

func TestListByCategoryReturnsOnlyThatCategory(t *testing.T) {
	c := New(&failingSource{err: errors.New("down")}, NewStatic(), nil)

	scarves, err := c.ListByCategory(context.Background(), models.CategoryScarf)
	require.NoError(t, err)
	require.NotEmpty(t, scarves)
	for _, p := range scarves {
		assert.Equal(t, models.CategoryScarf, p.Category)
	}
}

func TestListByCategoryRejectsUnknown(t *testing.T) {
	c := New(NewStatic(), nil, nil)
	_, err := c.ListByCategory(context.Background(), models.Category("shoes"))
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestGetByIDNotFoundIsFinal(t *testing.T) {
	primary := &failingSource{err: ErrNotFound}
	c := New(primary, NewStatic(), nil)

	_, err := c.GetByID(context.Background(), "static-layered-khimar")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByIDFallsBackOnFailure(t *testing.T) {
	c := New(&failingSource{err: errors.New("timeout")}, NewStatic(), nil)

	p, err := c.GetByID(context.Background(), "static-shadow-jersey-scarf")
	require.NoError(t, err)
	assert.Equal(t, int64(5200), p.Price)
	assert.Contains(t, p.DescriptionHTML, "<strong>No pins needed.</strong>")
}

func TestStaticReturnsCopies(t *testing.T) {
	s := NewStatic()
	first, _ := s.ListAll(context.Background())
	first[0].Images[0] = "mutated"

	second, _ := s.ListAll(context.Background())
	assert.NotEqual(t, "mutated", second[0].Images[0])
}

func TestRenderDescriptionSanitizes(t *testing.T) {
	out := RenderDescription("Soft *jersey*<script>alert(1)</script>")
	assert.Contains(t, out, "<em>jersey</em>")
	assert.NotContains(t, out, "<script>")
}
