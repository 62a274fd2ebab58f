package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ilara/internal/cache"
	"github.com/MrJamesThe3rd/ilara/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIdentity(ctx context.Context, key string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	// UpdateProduct replaces the descriptive fields and prices. Stock is set
	// to *stock, or left as stored when stock is nil. p.Stock is set to the
	// resulting stock.
	UpdateProduct(ctx context.Context, p *Product, stock *int) error
	// Restock adds qty to the stored stock and overwrites cost, price and
	// category with the values on p. p.Stock is set to the resulting stock.
	Restock(ctx context.Context, p *Product, qty int) error
	// AdjustStock applies delta only if the result stays >= 0 and returns the
	// new stock. It returns ErrInsufficientStock otherwise.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	// RenameCategory renames the category and every product's name copy.
	RenameCategory(ctx context.Context, id uuid.UUID, name string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo              Repository
	products          *cache.Cache[[]*Product]
	defaultCategories []string
}

// NewService builds a catalog service. products may be nil to disable
// caching. defaultCategories is the allowed label set while no category rows
// exist.
func NewService(repo Repository, products *cache.Cache[[]*Product], defaultCategories []string) *Service {
	return &Service{repo: repo, products: products, defaultCategories: defaultCategories}
}

type UpsertParams struct {
	Name     string           `validate:"required"`
	Brand    string
	Category string           `validate:"required"`
	Quantity int              `validate:"gte=1,max=2147483647"`
	Cost     *decimal.Decimal `validate:"required,gte=0"`
	Price    *decimal.Decimal `validate:"required,gte=0"`
}

type UpsertResult struct {
	Product       *Product
	Created       bool
	PreviousStock int
	NewStock      int
}

// Upsert adds quantity to the product matching name and brand, or creates it.
// On a match cost, price and category are replaced by the new values.
func (s *Service) Upsert(ctx context.Context, params UpsertParams) (*UpsertResult, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Brand = NormalizeBrand(params.Brand)

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, params.Category)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByIdentity(ctx, IdentityKey(params.Name, params.Brand))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		previous := existing.Stock
		existing.Cost = *params.Cost
		existing.Price = *params.Price
		existing.CategoryID = category.ID
		existing.Category = category.Name

		if err := s.repo.Restock(ctx, existing, params.Quantity); err != nil {
			return nil, err
		}

		s.invalidate(ctx)

		return &UpsertResult{
			Product:       existing,
			PreviousStock: previous,
			NewStock:      existing.Stock,
		}, nil
	}

	p := &Product{
		Name:       params.Name,
		Brand:      params.Brand,
		CategoryID: category.ID,
		Category:   category.Name,
		Stock:      params.Quantity,
		Cost:       *params.Cost,
		Price:      *params.Price,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return &UpsertResult{Product: p, Created: true, NewStock: p.Stock}, nil
}

type EditParams struct {
	ID       uuid.UUID        `validate:"required"`
	Name     string           `validate:"required"`
	Brand    string
	Category string           `validate:"required"`
	Cost     *decimal.Decimal `validate:"required,gte=0"`
	Price    *decimal.Decimal `validate:"required,gte=0"`
	Stock    *int             `validate:"omitempty,gte=0,max=2147483647"`
}

// Edit replaces every field of an existing product. Stock is only written
// when params.Stock is set; otherwise the stored value is kept, since any
// stock the caller read earlier may already be stale. It fails with
// ErrDuplicateIdentity when the new name and brand belong to another product.
func (s *Service) Edit(ctx context.Context, params EditParams) (*Product, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Brand = NormalizeBrand(params.Brand)

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProduct(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	clash, err := s.repo.FindByIdentity(ctx, IdentityKey(params.Name, params.Brand))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if clash != nil && clash.ID != p.ID {
		return nil, ErrDuplicateIdentity
	}

	category, err := s.resolveCategory(ctx, params.Category)
	if err != nil {
		return nil, err
	}

	p.Name = params.Name
	p.Brand = params.Brand
	p.CategoryID = category.ID
	p.Category = category.Name
	p.Cost = *params.Cost
	p.Price = *params.Price

	if err := s.repo.UpdateProduct(ctx, p, params.Stock); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return p, nil
}

// Delete removes the product. Ledger entries referencing it are kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)

	return nil
}

// Get always reads the store, never the cache.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) FindByIdentity(ctx context.Context, name, brand string) (*Product, error) {
	return s.repo.FindByIdentity(ctx, IdentityKey(name, brand))
}

// List returns every product, possibly from cache. Do not use its stock
// values to decide a mutation.
func (s *Service) List(ctx context.Context) ([]*Product, error) {
	return s.products.GetOrLoad(ctx, s.repo.ListProducts)
}

// Invalidate drops the cached product list.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.products.Invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	// The TTL bounds staleness; the mutation itself already succeeded.
	if err := s.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate product cache", "error", err)
	}
}

// Categories returns the allowed category names: the stored categories, or
// the configured defaults while none are stored.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	stored, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if len(stored) == 0 {
		return s.defaultCategories, nil
	}

	names := make([]string, len(stored))
	for i, c := range stored {
		names[i] = c.Name
	}

	return names, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.Errorf("name", "is required")
	}

	c := &Category{Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validation.Errorf("name", "is required")
	}

	if err := s.repo.RenameCategory(ctx, id, name); err != nil {
		return err
	}

	s.invalidate(ctx)

	return nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)

	return nil
}

type categoryRef struct {
	ID   *uuid.UUID
	Name string
}

// resolveCategory matches name case-insensitively against the allowed set
// and returns its canonical spelling.
func (s *Service) resolveCategory(ctx context.Context, name string) (categoryRef, error) {
	name = strings.TrimSpace(name)

	stored, err := s.repo.ListCategories(ctx)
	if err != nil {
		return categoryRef{}, fmt.Errorf("listing categories: %w", err)
	}

	for _, c := range stored {
		if strings.EqualFold(c.Name, name) {
			return categoryRef{ID: new(c.ID), Name: c.Name}, nil
		}
	}

	if len(stored) == 0 {
		if len(s.defaultCategories) == 0 && name != "" {
			return categoryRef{Name: name}, nil
		}

		for _, c := range s.defaultCategories {
			if strings.EqualFold(c, name) {
				return categoryRef{Name: c}, nil
			}
		}
	}

	return categoryRef{}, validation.Errorf("category", "unknown category %q", name)
}
