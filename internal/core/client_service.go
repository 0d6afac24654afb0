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

// ClientService manages customer master data. CurrentDebt is read-only here;
// it moves only through SaleService (credit sales) and CreditService (payments).
type ClientService interface {
	GetClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id int) (*Client, error)
	CreateClient(ctx context.Context, input ClientInput) (*Client, error)
	// UpdateClient applies a partial update to contact data and credit limit.
	UpdateClient(ctx context.Context, id int, updates ClientUpdate) (*Client, error)
}

// ClientInput holds the fields for registering a new client.
// New clients always start with zero debt.
type ClientInput struct {
	Name        string
	Phone       string
	Email       string // optional
	CreditLimit decimal.Decimal
}

// ClientUpdate is a partial client mutation. Nil means "leave unchanged".
type ClientUpdate struct {
	Name        *string
	Phone       *string
	Email       *string
	CreditLimit *decimal.Decimal
}

type clientService struct {
	pool *pgxpool.Pool
}

// NewClientService constructs a ClientService backed by PostgreSQL.
func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

const clientColumns = "id, name, phone, email, credit_limit, current_debt, created_at, updated_at"

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreditLimit, &c.CurrentDebt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *clientService) GetClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY name")
	if err != nil {
		return nil, storeErr("query clients", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, storeErr("scan client", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate clients", err)
	}
	return clients, nil
}

func (s *clientService) GetClient(ctx context.Context, id int) (*Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %d", ErrNotFound, id)
		}
		return nil, storeErr("fetch client", err)
	}
	return c, nil
}

func (s *clientService) CreateClient(ctx context.Context, input ClientInput) (*Client, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("client name and phone are required")
	}
	if input.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("credit limit cannot be negative, got %s", input.CreditLimit)
	}

	var email *string
	if e := strings.TrimSpace(input.Email); e != "" {
		email = &e
	}

	c, err := scanClient(s.pool.QueryRow(ctx, `
		INSERT INTO clients (name, phone, email, credit_limit, current_debt)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING `+clientColumns,
		name, phone, email, input.CreditLimit))
	if err != nil {
		return nil, storeErr("create client", err)
	}
	return c, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id int, updates ClientUpdate) (*Client, error) {
	if updates.Name != nil && strings.TrimSpace(*updates.Name) == "" {
		return nil, fmt.Errorf("client name cannot be blank")
	}
	if updates.CreditLimit != nil && updates.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("credit limit cannot be negative, got %s", updates.CreditLimit)
	}

	c, err := scanClient(s.pool.QueryRow(ctx, `
		UPDATE clients
		SET name         = COALESCE($1, name),
		    phone        = COALESCE($2, phone),
		    email        = COALESCE($3, email),
		    credit_limit = COALESCE($4, credit_limit),
		    updated_at   = NOW()
		WHERE id = $5
		RETURNING `+clientColumns,
		updates.Name, updates.Phone, updates.Email, updates.CreditLimit, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %d", ErrNotFound, id)
		}
		return nil, storeErr("update client", err)
	}
	return c, nil
}
