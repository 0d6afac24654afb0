package core

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// DailySummary aggregates today's sales, split by payment method.
type DailySummary struct {
	SaleCount     int             `json:"sale_count"`
	Total         decimal.Decimal `json:"total"`
	CashTotal     decimal.Decimal `json:"cash_total"`
	TransferTotal decimal.Decimal `json:"transfer_total"`
	CreditTotal   decimal.Decimal `json:"credit_total"`
}

// CreditSummary aggregates outstanding debt across the client ledger.
type CreditSummary struct {
	TotalDebt       decimal.Decimal `json:"total_debt"`
	ClientsWithDebt int             `json:"clients_with_debt"`
	AverageDebt     decimal.Decimal `json:"average_debt"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only aggregation queries for the dashboard.
type ReportingService interface {
	// DailySummary returns today's sale count and totals by payment method.
	DailySummary(ctx context.Context) (*DailySummary, error)

	// CreditSummary returns total outstanding debt, the number of clients
	// carrying debt, and the average per indebted client.
	CreditSummary(ctx context.Context) (*CreditSummary, error)

	// LowStockProducts returns products at or below their reorder threshold,
	// most depleted first.
	LowStockProducts(ctx context.Context) ([]Product, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) DailySummary(ctx context.Context) (*DailySummary, error) {
	var sum DailySummary
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total), 0),
		       COALESCE(SUM(total) FILTER (WHERE payment_method = 'cash'), 0),
		       COALESCE(SUM(total) FILTER (WHERE payment_method = 'transfer'), 0),
		       COALESCE(SUM(total) FILTER (WHERE payment_method = 'credit'), 0)
		FROM sales
		WHERE created_at >= date_trunc('day', now())
		  AND created_at <  date_trunc('day', now()) + interval '1 day'
	`).Scan(&sum.SaleCount, &sum.Total, &sum.CashTotal, &sum.TransferTotal, &sum.CreditTotal)
	if err != nil {
		return nil, storeErr("daily summary", err)
	}
	return &sum, nil
}

func (s *reportingService) CreditSummary(ctx context.Context) (*CreditSummary, error) {
	var sum CreditSummary
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(current_debt), 0),
		       COUNT(*) FILTER (WHERE current_debt > 0),
		       COALESCE(AVG(current_debt) FILTER (WHERE current_debt > 0), 0)
		FROM clients
	`).Scan(&sum.TotalDebt, &sum.ClientsWithDebt, &sum.AverageDebt)
	if err != nil {
		return nil, storeErr("credit summary", err)
	}
	return &sum, nil
}

func (s *reportingService) LowStockProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE stock <= min_stock
		ORDER BY stock - min_stock, name`)
	if err != nil {
		return nil, storeErr("query low stock", err)
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
		return nil, storeErr("iterate low stock", err)
	}
	return products, nil
}
