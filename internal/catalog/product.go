package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBrand is stored when a product is added without a brand.
const DefaultBrand = "Generic"

var (
	ErrNotFound          = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateIdentity = errors.New("another product already has this name and brand")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativeStock     = errors.New("stock cannot go below zero")
)

// Product is a catalog row. Stock is never negative.
type Product struct {
	ID         uuid.UUID
	Name       string
	Brand      string
	CategoryID *uuid.UUID
	Category   string // denormalized copy of the category name
	Stock      int
	Cost       decimal.Decimal
	Price      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IdentityKey returns the key used to detect the same product on insert.
func (p *Product) IdentityKey() string {
	return IdentityKey(p.Name, p.Brand)
}

// Margin is the per-unit gain of selling at Price.
func (p *Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// Label is the human-readable "Name - Brand" used in selectors.
func (p *Product) Label() string {
	return p.Name + " - " + p.Brand
}

// Category is a named product grouping.
type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// IdentityKey normalizes name and brand into a case and whitespace
// insensitive key. Two products with the same key are the same product.
func IdentityKey(name, brand string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "_" + strings.ToLower(strings.TrimSpace(NormalizeBrand(brand)))
}

// NormalizeBrand trims brand and falls back to DefaultBrand when blank.
func NormalizeBrand(brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return DefaultBrand
	}

	return brand
}
