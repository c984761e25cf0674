package models

import (
	"errors"
	"fmt"
)

// Category is the closed set of product categories the storefront sells.
type Category string

const (
	CategoryScarf     Category = "scarf"
	CategoryKhimar    Category = "khimar"
	CategoryAccessory Category = "accessory"
	CategoryPrayer    Category = "prayer"
	CategoryOther     Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryScarf,
	CategoryKhimar,
	CategoryAccessory,
	CategoryPrayer,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryScarf, CategoryKhimar, CategoryAccessory, CategoryPrayer, CategoryOther:
		return true
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// ErrInvalidCategory is returned when a filter names an unknown category.
var ErrInvalidCategory = errors.New("invalid category")
