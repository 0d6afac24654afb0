package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleRequest is the input to checkout. Lines usually come from a Cart via
// Items(); their price snapshots are display-only — the processor re-prices
// every line from the catalog inside the transaction.
type SaleRequest struct {
	Lines          []CartLine
	VendorName     string
	ClientID       *int // nil = walk-in
	PaymentMethod  PaymentMethod
	IdempotencyKey string // optional; prevents double-submit of the same checkout
}

// SaleService validates carts against authoritative stock and commits sales.
type SaleService interface {
	// ProcessSale runs the whole checkout in one database transaction:
	// stock validation, stock decrement, sale insert, and — for credit
	// sales — debt increment plus a debt-type credit transaction. Either
	// everything lands or nothing does.
	ProcessSale(ctx context.Context, req SaleRequest) (*Sale, error)

	// GetSales returns sales newest-first. limit <= 0 means all.
	GetSales(ctx context.Context, limit int) ([]Sale, error)

	// GetTodaySales returns sales created today (store-local time), newest-first.
	GetTodaySales(ctx context.Context) ([]Sale, error)

	GetSale(ctx context.Context, id int) (*Sale, error)

	// DeleteSale removes a sale record. Administrative only: it does not
	// restore stock or reverse debt.
	DeleteSale(ctx context.Context, id int) error
}

type saleService struct {
	pool *pgxpool.Pool
}

// NewSaleService constructs a SaleService backed by PostgreSQL.
func NewSaleService(pool *pgxpool.Pool) SaleService {
	return &saleService{pool: pool}
}

func (s *saleService) ProcessSale(ctx context.Context, req SaleRequest) (*Sale, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("unknown payment method %q", req.PaymentMethod)
	}
	if req.PaymentMethod == PaymentCredit && req.ClientID == nil {
		return nil, ErrClientRequired
	}
	if strings.TrimSpace(req.VendorName) == "" {
		return nil, fmt.Errorf("vendor name is required")
	}
	for _, l := range req.Lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("line for product %d has quantity %d, must be at least 1", l.ProductID, l.Quantity)
		}
	}

	// Merge duplicate product lines, keeping first-appearance order, so the
	// combined quantity is what gets validated against stock and decremented.
	merged := make([]CartLine, 0, len(req.Lines))
	lineIndex := make(map[int]int, len(req.Lines))
	for _, l := range req.Lines {
		if i, ok := lineIndex[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		lineIndex[l.ProductID] = len(merged)
		merged = append(merged, CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin checkout", err)
	}
	defer tx.Rollback(ctx)

	// Lock product rows in id order so two concurrent checkouts of
	// overlapping carts cannot deadlock.
	ordered := make([]CartLine, len(merged))
	copy(ordered, merged)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	type pricedLine struct {
		productID int
		name      string
		unitPrice decimal.Decimal
		quantity  int
	}
	priced := make(map[int]pricedLine, len(ordered))
	total := decimal.Zero

	for _, line := range ordered {
		var name string
		var price decimal.Decimal
		var stock int
		err := tx.QueryRow(ctx,
			"SELECT name, price, stock FROM products WHERE id = $1 FOR UPDATE",
			line.ProductID,
		).Scan(&name, &price, &stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: product %d", ErrNotFound, line.ProductID)
			}
			return nil, storeErr("lock product", err)
		}
		if stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s has %d units, cart wants %d",
				ErrInsufficientStock, name, stock, line.Quantity)
		}

		priced[line.ProductID] = pricedLine{
			productID: line.ProductID,
			name:      name,
			unitPrice: price,
			quantity:  line.Quantity,
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	// Resolve (and for credit sales, lock) the client.
	clientName := WalkInClientName
	if req.ClientID != nil {
		err := tx.QueryRow(ctx,
			"SELECT name FROM clients WHERE id = $1 FOR UPDATE",
			*req.ClientID,
		).Scan(&clientName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: client %d", ErrNotFound, *req.ClientID)
			}
			return nil, storeErr("lock client", err)
		}
	}

	// Insert the sale header. The idempotency key rejects a re-submitted
	// checkout without touching stock.
	var saleID int
	var key *string
	if req.IdempotencyKey != "" {
		key = &req.IdempotencyKey
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (vendor_name, client_id, client_name, total, payment_method, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id`,
		req.VendorName, req.ClientID, clientName, total, string(req.PaymentMethod), string(SaleCompleted), key,
	).Scan(&saleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: idempotency key %s", ErrDuplicateSale, req.IdempotencyKey)
		}
		return nil, storeErr("insert sale", err)
	}

	// Write lines and decrement stock in the cart's original order.
	var productNames []string
	for i, line := range merged {
		pl := priced[line.ProductID]
		lineTotal := pl.unitPrice.Mul(decimal.NewFromInt(int64(pl.quantity)))

		_, err = tx.Exec(ctx, `
			INSERT INTO sale_lines (sale_id, line_number, product_id, product_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			saleID, i+1, pl.productID, pl.name, pl.quantity, pl.unitPrice, lineTotal)
		if err != nil {
			return nil, storeErr("insert sale line", err)
		}

		_, err = tx.Exec(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2",
			pl.quantity, pl.productID)
		if err != nil {
			return nil, storeErr("decrement stock", err)
		}

		productNames = append(productNames, pl.name)
	}

	// Credit sale: post the debt to the client ledger in the same transaction.
	if req.PaymentMethod == PaymentCredit {
		_, err = tx.Exec(ctx,
			"UPDATE clients SET current_debt = current_debt + $1, updated_at = NOW() WHERE id = $2",
			total, *req.ClientID)
		if err != nil {
			return nil, storeErr("increment client debt", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO credit_transactions (client_id, client_name, amount, type, description, sale_id)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			*req.ClientID, clientName, total, string(TransactionDebt),
			fmt.Sprintf("Venta a crédito - Productos: %s", strings.Join(productNames, ", ")),
			saleID)
		if err != nil {
			return nil, storeErr("insert credit transaction", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit checkout", err)
	}

	return s.GetSale(ctx, saleID)
}

const saleColumns = "id, vendor_name, client_id, client_name, total, payment_method, status, created_at"

func scanSale(row pgx.Row) (*Sale, error) {
	var sale Sale
	err := row.Scan(&sale.ID, &sale.VendorName, &sale.ClientID, &sale.ClientName,
		&sale.Total, &sale.PaymentMethod, &sale.Status, &sale.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *saleService) GetSale(ctx context.Context, id int) (*Sale, error) {
	sale, err := scanSale(s.pool.QueryRow(ctx,
		"SELECT "+saleColumns+" FROM sales WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: sale %d", ErrNotFound, id)
		}
		return nil, storeErr("fetch sale", err)
	}

	lines, err := s.fetchLines(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	sale.Lines = lines[id]
	return sale, nil
}

func (s *saleService) GetSales(ctx context.Context, limit int) ([]Sale, error) {
	query := "SELECT " + saleColumns + " FROM sales ORDER BY created_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	return s.querySales(ctx, query, args...)
}

func (s *saleService) GetTodaySales(ctx context.Context) ([]Sale, error) {
	return s.querySales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at >= date_trunc('day', now())
		  AND created_at <  date_trunc('day', now()) + interval '1 day'
		ORDER BY created_at DESC, id DESC`)
}

func (s *saleService) DeleteSale(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM sales WHERE id = $1", id)
	if err != nil {
		return storeErr("delete sale", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sale %d", ErrNotFound, id)
	}
	return nil
}

func (s *saleService) querySales(ctx context.Context, query string, args ...any) ([]Sale, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query sales", err)
	}
	defer rows.Close()

	var sales []Sale
	var ids []int
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, storeErr("scan sale", err)
		}
		sales = append(sales, *sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate sales", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	linesBySale, err := s.fetchLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Lines = linesBySale[sales[i].ID]
	}
	return sales, nil
}

func (s *saleService) fetchLines(ctx context.Context, saleIDs []int) (map[int][]SaleLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sale_id, line_number, product_id, product_name, quantity, unit_price, line_total
		FROM sale_lines
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, line_number`, saleIDs)
	if err != nil {
		return nil, storeErr("query sale lines", err)
	}
	defer rows.Close()

	out := make(map[int][]SaleLine)
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.LineNumber, &l.ProductID,
			&l.ProductName, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, storeErr("scan sale line", err)
		}
		out[l.SaleID] = append(out[l.SaleID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate sale lines", err)
	}
	return out, nil
}
