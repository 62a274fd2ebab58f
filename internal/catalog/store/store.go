package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/database"
)

type Store struct {
	db database.DBTX
}

func New(db database.DBTX) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, brand, category_id, category, stock, cost, price, created_at, updated_at
func scanProduct(s scanner) (*catalog.Product, error) {
	var p catalog.Product

	if err := s.Scan(
		&p.ID, &p.Name, &p.Brand, &p.CategoryID, &p.Category,
		&p.Stock, &p.Cost, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

const selectProductColumns = `
	id, name, brand, category_id, category, stock, cost, price, created_at, updated_at
`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (name, brand, identity_key, category_id, category, stock, cost, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		p.Brand,
		p.IdentityKey(),
		p.CategoryID,
		p.Category,
		p.Stock,
		p.Cost,
		p.Price,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

// FindByIdentity returns the oldest product with the key. Rows created by a
// concurrent double insert can share a key; the oldest one wins.
func (s *Store) FindByIdentity(ctx context.Context, key string) (*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products
		WHERE identity_key = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("finding product by identity: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products ORDER BY name ASC, brand ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := []*catalog.Product{}

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product, stock *int) error {
	query := `
		UPDATE products
		SET name = $1, brand = $2, identity_key = $3, category_id = $4, category = $5,
			stock = COALESCE($6::integer, stock), cost = $7, price = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING stock, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		p.Brand,
		p.IdentityKey(),
		p.CategoryID,
		p.Category,
		stock,
		p.Cost,
		p.Price,
		p.ID,
	).Scan(&p.Stock, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.ErrNotFound
		}

		return fmt.Errorf("updating product: %w", err)
	}

	return nil
}

func (s *Store) Restock(ctx context.Context, p *catalog.Product, qty int) error {
	query := `
		UPDATE products
		SET stock = stock + $1, cost = $2, price = $3, category_id = $4, category = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING stock, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		qty,
		p.Cost,
		p.Price,
		p.CategoryID,
		p.Category,
		p.ID,
	).Scan(&p.Stock, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.ErrNotFound
		}

		return fmt.Errorf("restocking product: %w", err)
	}

	return nil
}

// AdjustStock is a single conditional update, so two concurrent decrements
// can never take the stock below zero.
func (s *Store) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock
	`

	var stock int

	err := s.db.QueryRowContext(ctx, query, id, delta).Scan(&stock)
	if err == nil {
		return stock, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("adjusting stock: %w", err)
	}

	// No row matched: either the product is gone or the guard rejected it.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("checking product: %w", err)
	}

	if !exists {
		return 0, catalog.ErrNotFound
	}

	return 0, catalog.ErrInsufficientStock
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	return expectOne(res, catalog.ErrNotFound)
}

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	query := `
		INSERT INTO categories (name, created_at)
		VALUES ($1, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, c.Name).Scan(&c.ID, &c.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateCategory
		}

		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*catalog.Category

	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return categories, nil
}

// RenameCategory renames the row and the name copy on its products in one
// database transaction.
func (s *Store) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	return database.RunInTx(ctx, s.db, func(tx database.DBTX) error {
		res, err := tx.ExecContext(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, name, id)
		if err != nil {
			if isUniqueViolation(err) {
				return catalog.ErrDuplicateCategory
			}

			return fmt.Errorf("renaming category: %w", err)
		}

		if err := expectOne(res, catalog.ErrCategoryNotFound); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET category = $1, updated_at = NOW() WHERE category_id = $2`,
			name, id,
		); err != nil {
			return fmt.Errorf("updating product categories: %w", err)
		}

		return nil
	})
}

// DeleteCategory removes the row. Products keep their name copy; the
// foreign key clears the reference.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	return expectOne(res, catalog.ErrCategoryNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}
