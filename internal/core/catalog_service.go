package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogService manages the product inventory collection.
type CatalogService interface {
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	// UpdateProduct applies a partial update; nil fields are left untouched.
	// Stock is deliberately absent — it moves only through Restock and checkout.
	UpdateProduct(ctx context.Context, id int, updates ProductUpdate) (*Product, error)
	// Restock adds qty units to the product's stock. qty must be positive.
	Restock(ctx context.Context, id, qty int) (*Product, error)
	// DeleteProduct removes a product from the catalog. Historical sale lines
	// keep their name/price snapshots.
	DeleteProduct(ctx context.Context, id int) error
}

// ProductInput holds the fields for a new catalog entry.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	MinStock int
	Icon     string
}

// ProductUpdate is a partial product mutation. Nil means "leave unchanged".
type ProductUpdate struct {
	Name     *string
	Price    *decimal.Decimal
	MinStock *int
	Icon     *string
}

type catalogService struct {
	pool *pgxpool.Pool
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

const productColumns = "id, name, price, stock, min_stock, icon, created_at, updated_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.MinStock, &p.Icon, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, storeErr("query products", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate products", err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, storeErr("fetch product", err)
	}
	return p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative, got %s", input.Price)
	}
	if input.Stock < 0 || input.MinStock < 0 {
		return nil, fmt.Errorf("stock and minimum stock cannot be negative")
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (name, price, stock, min_stock, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		strings.TrimSpace(input.Name), input.Price, input.Stock, input.MinStock, input.Icon))
	if err != nil {
		return nil, storeErr("create product", err)
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int, updates ProductUpdate) (*Product, error) {
	if updates.Name != nil && strings.TrimSpace(*updates.Name) == "" {
		return nil, fmt.Errorf("product name cannot be blank")
	}
	if updates.Price != nil && updates.Price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative, got %s", updates.Price)
	}
	if updates.MinStock != nil && *updates.MinStock < 0 {
		return nil, fmt.Errorf("minimum stock cannot be negative")
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name       = COALESCE($1, name),
		    price      = COALESCE($2, price),
		    min_stock  = COALESCE($3, min_stock),
		    icon       = COALESCE($4, icon),
		    updated_at = NOW()
		WHERE id = $5
		RETURNING `+productColumns,
		updates.Name, updates.Price, updates.MinStock, updates.Icon, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, storeErr("update product", err)
	}
	return p, nil
}

func (s *catalogService) Restock(ctx context.Context, id, qty int) (*Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: restock quantity %d", ErrInvalidAmount, qty)
	}

	// Relative update: concurrent restocks and checkouts cannot lose units.
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+productColumns, qty, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, storeErr("restock product", err)
	}
	return p, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return storeErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return nil
}
