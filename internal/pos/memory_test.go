package pos_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

// memoryCatalog implements catalog.Repository with the same stock guard as
// the Postgres store.
type memoryCatalog struct {
	mu         sync.Mutex
	products   []*catalog.Product
	categories []*catalog.Category
}

func (m *memoryCatalog) find(id uuid.UUID) *catalog.Product {
	for _, p := range m.products {
		if p.ID == id {
			return p
		}
	}

	return nil
}

func clone(p *catalog.Product) *catalog.Product {
	c := *p
	return &c
}

func (m *memoryCatalog) CreateProduct(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.products = append(m.products, clone(p))

	return nil
}

func (m *memoryCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.find(id)
	if p == nil {
		return nil, catalog.ErrNotFound
	}

	return clone(p), nil
}

func (m *memoryCatalog) FindByIdentity(_ context.Context, key string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.IdentityKey() == key {
			return clone(p), nil
		}
	}

	return nil, catalog.ErrNotFound
}

func (m *memoryCatalog) ListProducts(_ context.Context) ([]*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*catalog.Product, len(m.products))
	for i, p := range m.products {
		out[i] = clone(p)
	}

	return out, nil
}

func (m *memoryCatalog) UpdateProduct(_ context.Context, p *catalog.Product, stock *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.products {
		if existing.ID == p.ID {
			p.Stock = existing.Stock
			if stock != nil {
				p.Stock = *stock
			}

			m.products[i] = clone(p)

			return nil
		}
	}

	return catalog.ErrNotFound
}

func (m *memoryCatalog) Restock(_ context.Context, p *catalog.Product, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.find(p.ID)
	if stored == nil {
		return catalog.ErrNotFound
	}

	stored.Stock += qty
	stored.Cost = p.Cost
	stored.Price = p.Price
	stored.CategoryID = p.CategoryID
	stored.Category = p.Category
	p.Stock = stored.Stock

	return nil
}

func (m *memoryCatalog) AdjustStock(_ context.Context, id uuid.UUID, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.find(id)
	if p == nil {
		return 0, catalog.ErrNotFound
	}

	if p.Stock+delta < 0 {
		return 0, catalog.ErrInsufficientStock
	}

	p.Stock += delta

	return p.Stock, nil
}

func (m *memoryCatalog) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.products)
	m.products = slices.DeleteFunc(m.products, func(p *catalog.Product) bool { return p.ID == id })

	if len(m.products) == n {
		return catalog.ErrNotFound
	}

	return nil
}

func (m *memoryCatalog) CreateCategory(_ context.Context, c *catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return catalog.ErrDuplicateCategory
		}
	}

	c.ID = uuid.New()
	m.categories = append(m.categories, c)

	return nil
}

func (m *memoryCatalog) ListCategories(_ context.Context) ([]*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.categories), nil
}

func (m *memoryCatalog) RenameCategory(_ context.Context, id uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.ID == id {
			c.Name = name

			for _, p := range m.products {
				if p.CategoryID != nil && *p.CategoryID == id {
					p.Category = name
				}
			}

			return nil
		}
	}

	return catalog.ErrCategoryNotFound
}

func (m *memoryCatalog) DeleteCategory(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories = slices.DeleteFunc(m.categories, func(c *catalog.Category) bool { return c.ID == id })

	return nil
}

func (m *memoryCatalog) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.find(id).Stock
}

// memoryLedger implements ledger.Repository. createErr and deleteErr make
// the next write fail.
type memoryLedger struct {
	mu        sync.Mutex
	entries   []*ledger.Entry
	createErr error
	deleteErr error
}

func (m *memoryLedger) CreateEntry(_ context.Context, e *ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	e.ID = uuid.New()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	c := *e
	m.entries = append(m.entries, &c)

	return nil
}

func (m *memoryLedger) GetEntry(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}

	return nil, ledger.ErrNotFound
}

func (m *memoryLedger) ListEntries(_ context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*ledger.Entry

	for _, e := range m.entries {
		if filter.Kind != nil && e.Kind != *filter.Kind {
			continue
		}

		if filter.Unlinked && e.Sale != nil {
			continue
		}

		c := *e
		out = append(out, &c)
	}

	return out, nil
}

func (m *memoryLedger) DeleteEntry(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}

	n := len(m.entries)
	m.entries = slices.DeleteFunc(m.entries, func(e *ledger.Entry) bool { return e.ID == id })

	if len(m.entries) == n {
		return ledger.ErrNotFound
	}

	return nil
}

func (m *memoryLedger) UpdateSaleLink(_ context.Context, id uuid.UUID, link *ledger.SaleLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.ID == id {
			e.Sale = link
			return nil
		}
	}

	return ledger.ErrNotFound
}

func (m *memoryLedger) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
