package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"heladeria-pos/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live shop database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE credit_transactions, sale_lines, sales, products, clients, vendors RESTART IDENTITY CASCADE;

		INSERT INTO products (name, price, stock, min_stock, icon) VALUES
		('Vainilla', 3.00, 50, 10, '🍦'),
		('Fresa',    3.50,  8, 10, '🍓');

		INSERT INTO clients (name, phone, credit_limit, current_debt) VALUES
		('Ana Martínez',   '555-0101', 100.00, 35.00),
		('Luis Rodríguez', '555-0102',  50.00,  0.00);

		INSERT INTO credit_transactions (client_id, client_name, amount, type, description)
		VALUES (1, 'Ana Martínez', 35.00, 'debt', 'Saldo inicial');

		INSERT INTO vendors (name, role, icon) VALUES ('María', 'owner', '👩');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

const (
	vanillaID    = 1
	strawberryID = 2
	anaID        = 1
)

func productStock(t *testing.T, pool *pgxpool.Pool, id int) int {
	t.Helper()
	var stock int
	if err := pool.QueryRow(context.Background(), "SELECT stock FROM products WHERE id = $1", id).Scan(&stock); err != nil {
		t.Fatalf("Failed to read stock for product %d: %v", id, err)
	}
	return stock
}

func clientDebt(t *testing.T, pool *pgxpool.Pool, id int) string {
	t.Helper()
	var debt string
	if err := pool.QueryRow(context.Background(), "SELECT current_debt::text FROM clients WHERE id = $1", id).Scan(&debt); err != nil {
		t.Fatalf("Failed to read debt for client %d: %v", id, err)
	}
	return debt
}

func TestSaleService_CashSale(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	sale, err := sales.ProcessSale(ctx, core.SaleRequest{
		Lines: []core.CartLine{
			{ProductID: vanillaID, Quantity: 2},
			{ProductID: strawberryID, Quantity: 1},
		},
		VendorName:    "María",
		PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		t.Fatalf("ProcessSale failed: %v", err)
	}

	// 2 × 3.00 + 1 × 3.50
	if sale.Total.StringFixed(2) != "9.50" {
		t.Errorf("Expected total 9.50, got %s", sale.Total.StringFixed(2))
	}
	if sale.ClientName != core.WalkInClientName {
		t.Errorf("Expected walk-in client name, got %q", sale.ClientName)
	}
	if len(sale.Lines) != 2 {
		t.Fatalf("Expected 2 sale lines, got %d", len(sale.Lines))
	}
	if sale.Lines[0].ProductName != "Vainilla" || sale.Lines[0].UnitPrice.StringFixed(2) != "3.00" {
		t.Errorf("Expected Vainilla snapshot at 3.00, got %s at %s",
			sale.Lines[0].ProductName, sale.Lines[0].UnitPrice.StringFixed(2))
	}

	if got := productStock(t, pool, vanillaID); got != 48 {
		t.Errorf("Expected vanilla stock 48, got %d", got)
	}
	if got := productStock(t, pool, strawberryID); got != 7 {
		t.Errorf("Expected strawberry stock 7, got %d", got)
	}

	// Cash sales must not touch the credit ledger.
	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM credit_transactions WHERE sale_id = $1", sale.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count transactions: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no credit transactions for a cash sale, got %d", count)
	}
}

func TestSaleService_AllOrNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	// Strawberry has only 8 units: the second line must sink the whole checkout.
	_, err := sales.ProcessSale(ctx, core.SaleRequest{
		Lines: []core.CartLine{
			{ProductID: vanillaID, Quantity: 2},
			{ProductID: strawberryID, Quantity: 9},
		},
		VendorName:    "María",
		PaymentMethod: core.PaymentCash,
	})
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	if got := productStock(t, pool, vanillaID); got != 50 {
		t.Errorf("Expected vanilla stock untouched at 50, got %d", got)
	}
	if got := productStock(t, pool, strawberryID); got != 8 {
		t.Errorf("Expected strawberry stock untouched at 8, got %d", got)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM sales").Scan(&count); err != nil {
		t.Fatalf("Failed to count sales: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no sale record after failed checkout, got %d", count)
	}
}

func TestSaleService_CreditSalePostsDebt(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	clientID := anaID
	sale, err := sales.ProcessSale(ctx, core.SaleRequest{
		Lines:         []core.CartLine{{ProductID: vanillaID, Quantity: 3}},
		VendorName:    "María",
		ClientID:      &clientID,
		PaymentMethod: core.PaymentCredit,
	})
	if err != nil {
		t.Fatalf("ProcessSale failed: %v", err)
	}

	if sale.ClientName != "Ana Martínez" {
		t.Errorf("Expected client name snapshot, got %q", sale.ClientName)
	}

	// 35.00 opening debt + 9.00 sale
	if got := clientDebt(t, pool, anaID); got != "44.00" {
		t.Errorf("Expected debt 44.00, got %s", got)
	}

	var amount, txnType, description string
	err = pool.QueryRow(ctx,
		"SELECT amount::text, type, description FROM credit_transactions WHERE sale_id = $1", sale.ID,
	).Scan(&amount, &txnType, &description)
	if err != nil {
		t.Fatalf("Expected a ledger entry for the credit sale: %v", err)
	}
	if amount != "9.00" || txnType != "debt" {
		t.Errorf("Expected debt entry of 9.00, got %s %s", txnType, amount)
	}
	if description != "Venta a crédito - Productos: Vainilla" {
		t.Errorf("Unexpected ledger description: %q", description)
	}
}

func TestSaleService_CreditRequiresClient(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)

	_, err := sales.ProcessSale(context.Background(), core.SaleRequest{
		Lines:         []core.CartLine{{ProductID: vanillaID, Quantity: 1}},
		VendorName:    "María",
		PaymentMethod: core.PaymentCredit,
	})
	if !errors.Is(err, core.ErrClientRequired) {
		t.Fatalf("Expected ErrClientRequired, got %v", err)
	}
}

func TestSaleService_EmptyCart(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)

	_, err := sales.ProcessSale(context.Background(), core.SaleRequest{
		VendorName:    "María",
		PaymentMethod: core.PaymentCash,
	})
	if !errors.Is(err, core.ErrEmptyCart) {
		t.Fatalf("Expected ErrEmptyCart, got %v", err)
	}
}

func TestSaleService_Idempotency(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	req := core.SaleRequest{
		Lines:          []core.CartLine{{ProductID: vanillaID, Quantity: 1}},
		VendorName:     "María",
		PaymentMethod:  core.PaymentCash,
		IdempotencyKey: uuid.NewString(),
	}

	if _, err := sales.ProcessSale(ctx, req); err != nil {
		t.Fatalf("First checkout failed: %v", err)
	}

	// Re-submitting the same checkout must fail without touching stock again.
	_, err := sales.ProcessSale(ctx, req)
	if !errors.Is(err, core.ErrDuplicateSale) {
		t.Fatalf("Expected ErrDuplicateSale, got %v", err)
	}
	if got := productStock(t, pool, vanillaID); got != 49 {
		t.Errorf("Expected stock decremented exactly once to 49, got %d", got)
	}
}

func TestSaleService_RepricesFromCatalog(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	// The cart carries a stale price snapshot; the price changed before checkout.
	_, err := pool.Exec(ctx, "UPDATE products SET price = 3.75 WHERE id = $1", vanillaID)
	if err != nil {
		t.Fatalf("Failed to reprice product: %v", err)
	}

	sale, err := sales.ProcessSale(ctx, core.SaleRequest{
		Lines:         []core.CartLine{{ProductID: vanillaID, Quantity: 2}},
		VendorName:    "María",
		PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		t.Fatalf("ProcessSale failed: %v", err)
	}
	if sale.Total.StringFixed(2) != "7.50" {
		t.Errorf("Expected commit-time pricing 7.50, got %s", sale.Total.StringFixed(2))
	}
}

func TestSaleService_MergesDuplicateProductLines(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	// A request may carry the same product on several lines; the checkout
	// must treat them as one combined position.
	sale, err := sales.ProcessSale(ctx, core.SaleRequest{
		Lines: []core.CartLine{
			{ProductID: vanillaID, Quantity: 1},
			{ProductID: vanillaID, Quantity: 3},
		},
		VendorName:    "María",
		PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		t.Fatalf("ProcessSale failed: %v", err)
	}

	if len(sale.Lines) != 1 {
		t.Fatalf("Expected duplicate lines merged into 1, got %d", len(sale.Lines))
	}
	if sale.Lines[0].Quantity != 4 {
		t.Errorf("Expected merged quantity 4, got %d", sale.Lines[0].Quantity)
	}

	// The header total must equal the sum of the committed lines.
	lineSum := decimal.Zero
	for _, l := range sale.Lines {
		lineSum = lineSum.Add(l.LineTotal)
	}
	if !sale.Total.Equal(lineSum) {
		t.Errorf("Sale total %s does not match line sum %s", sale.Total.StringFixed(2), lineSum.StringFixed(2))
	}
	if sale.Total.StringFixed(2) != "12.00" {
		t.Errorf("Expected total 12.00, got %s", sale.Total.StringFixed(2))
	}

	if got := productStock(t, pool, vanillaID); got != 46 {
		t.Errorf("Expected stock 46 after 4 units sold, got %d", got)
	}
}

func TestSaleService_DuplicateLinesValidatedAgainstCombinedStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	// Strawberry has 8 units; each line fits alone but 5 + 5 does not.
	_, err := sales.ProcessSale(ctx, core.SaleRequest{
		Lines: []core.CartLine{
			{ProductID: strawberryID, Quantity: 5},
			{ProductID: strawberryID, Quantity: 5},
		},
		VendorName:    "María",
		PaymentMethod: core.PaymentCash,
	})
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	if got := productStock(t, pool, strawberryID); got != 8 {
		t.Errorf("Expected stock untouched at 8, got %d", got)
	}
	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM sales").Scan(&count); err != nil {
		t.Fatalf("Failed to count sales: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no sale record, got %d", count)
	}
}

func TestSaleService_GetSalesNewestFirst(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := sales.ProcessSale(ctx, core.SaleRequest{
			Lines:         []core.CartLine{{ProductID: vanillaID, Quantity: 1}},
			VendorName:    "María",
			PaymentMethod: core.PaymentCash,
		})
		if err != nil {
			t.Fatalf("Checkout %d failed: %v", i, err)
		}
	}

	list, err := sales.GetSales(ctx, 2)
	if err != nil {
		t.Fatalf("GetSales failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected limit of 2 sales, got %d", len(list))
	}
	if list[0].ID <= list[1].ID {
		t.Errorf("Expected newest-first ordering, got ids %d then %d", list[0].ID, list[1].ID)
	}
	if len(list[0].Lines) != 1 {
		t.Errorf("Expected lines to be loaded, got %d", len(list[0].Lines))
	}
}
