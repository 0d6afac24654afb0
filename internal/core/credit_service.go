package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CreditService applies payments against client debt and reads the ledger.
//
// Reconciliation strategy: every debt change appends a signed transaction AND
// patches current_debt by the same delta inside one database transaction, so
// current_debt always equals the sum of the client's transaction amounts.
type CreditService interface {
	// ApplyPayment reduces the client's debt by amount and appends a
	// payment-type transaction with amount = -amount. Fails without mutation
	// when amount is not positive or exceeds the outstanding debt.
	ApplyPayment(ctx context.Context, clientID int, amount decimal.Decimal, method PaymentMethod) (*CreditTransaction, error)

	// History returns the client's transactions ordered by creation time,
	// newest first. Read-only; callers may restart it freely.
	History(ctx context.Context, clientID int) ([]CreditTransaction, error)

	// AllTransactions returns every credit transaction, newest first.
	AllTransactions(ctx context.Context) ([]CreditTransaction, error)
}

type creditService struct {
	pool *pgxpool.Pool
}

// NewCreditService constructs a CreditService backed by PostgreSQL.
func NewCreditService(pool *pgxpool.Pool) CreditService {
	return &creditService{pool: pool}
}

func (s *creditService) ApplyPayment(ctx context.Context, clientID int, amount decimal.Decimal, method PaymentMethod) (*CreditTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment of %s", ErrInvalidAmount, amount)
	}
	if !method.Settlement() {
		return nil, fmt.Errorf("payment method must be %s or %s, got %q",
			PaymentCash, PaymentTransfer, method)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin payment", err)
	}
	defer tx.Rollback(ctx)

	var clientName string
	var currentDebt decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT name, current_debt FROM clients WHERE id = $1 FOR UPDATE",
		clientID,
	).Scan(&clientName, &currentDebt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
		}
		return nil, storeErr("lock client", err)
	}

	if amount.GreaterThan(currentDebt) {
		return nil, fmt.Errorf("%w: debt is %s, payment was %s",
			ErrAmountExceedsDebt, currentDebt.StringFixed(2), amount.StringFixed(2))
	}

	_, err = tx.Exec(ctx,
		"UPDATE clients SET current_debt = current_debt - $1, updated_at = NOW() WHERE id = $2",
		amount, clientID)
	if err != nil {
		return nil, storeErr("decrement client debt", err)
	}

	methodStr := string(method)
	var txn CreditTransaction
	err = tx.QueryRow(ctx, `
		INSERT INTO credit_transactions (client_id, client_name, amount, type, payment_method, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, client_id, client_name, amount, type, payment_method, description, sale_id, created_at`,
		clientID, clientName, amount.Neg(), string(TransactionPayment), methodStr,
		fmt.Sprintf("Pago recibido - %s", method),
	).Scan(&txn.ID, &txn.ClientID, &txn.ClientName, &txn.Amount, &txn.Type,
		&txn.PaymentMethod, &txn.Description, &txn.SaleID, &txn.CreatedAt)
	if err != nil {
		return nil, storeErr("insert payment transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit payment", err)
	}
	return &txn, nil
}

func (s *creditService) History(ctx context.Context, clientID int) ([]CreditTransaction, error) {
	// Verify the client exists so an empty history is distinguishable from a bad id.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)", clientID,
	).Scan(&exists); err != nil {
		return nil, storeErr("check client", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}

	return s.queryTransactions(ctx, `
		SELECT id, client_id, client_name, amount, type, payment_method, description, sale_id, created_at
		FROM credit_transactions
		WHERE client_id = $1
		ORDER BY created_at DESC, id DESC`, clientID)
}

func (s *creditService) AllTransactions(ctx context.Context) ([]CreditTransaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, client_id, client_name, amount, type, payment_method, description, sale_id, created_at
		FROM credit_transactions
		ORDER BY created_at DESC, id DESC`)
}

func (s *creditService) queryTransactions(ctx context.Context, query string, args ...any) ([]CreditTransaction, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query credit transactions", err)
	}
	defer rows.Close()

	var txns []CreditTransaction
	for rows.Next() {
		var t CreditTransaction
		if err := rows.Scan(&t.ID, &t.ClientID, &t.ClientName, &t.Amount, &t.Type,
			&t.PaymentMethod, &t.Description, &t.SaleID, &t.CreatedAt); err != nil {
			return nil, storeErr("scan credit transaction", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate credit transactions", err)
	}
	return txns, nil
}
