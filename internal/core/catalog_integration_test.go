package core_test

import (
	"context"
	"errors"
	"testing"

	"heladeria-pos/internal/core"

	"github.com/shopspring/decimal"
)

func TestCatalogService_CreateAndUpdate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	p, err := catalog.CreateProduct(ctx, core.ProductInput{
		Name:     "Pistacho",
		Price:    decimal.RequireFromString("4.50"),
		Stock:    12,
		MinStock: 5,
		Icon:     "🟢",
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if p.Name != "Pistacho" || p.Stock != 12 {
		t.Errorf("Unexpected product: %+v", p)
	}

	newPrice := decimal.RequireFromString("5.00")
	updated, err := catalog.UpdateProduct(ctx, p.ID, core.ProductUpdate{Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.Price.StringFixed(2) != "5.00" {
		t.Errorf("Expected price 5.00, got %s", updated.Price.StringFixed(2))
	}
	// Fields absent from the update stay as they were.
	if updated.Name != "Pistacho" || updated.MinStock != 5 {
		t.Errorf("Partial update touched other fields: %+v", updated)
	}
}

func TestCatalogService_CreateValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	if _, err := catalog.CreateProduct(ctx, core.ProductInput{Name: "  "}); err == nil {
		t.Error("Expected error for blank name, got nil")
	}
	if _, err := catalog.CreateProduct(ctx, core.ProductInput{
		Name:  "Negativo",
		Price: decimal.RequireFromString("-1.00"),
	}); err == nil {
		t.Error("Expected error for negative price, got nil")
	}
}

func TestCatalogService_Restock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	p, err := catalog.Restock(ctx, strawberryID, 20)
	if err != nil {
		t.Fatalf("Restock failed: %v", err)
	}
	if p.Stock != 28 {
		t.Errorf("Expected stock 28 after restock, got %d", p.Stock)
	}

	if _, err := catalog.Restock(ctx, strawberryID, 0); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for zero restock, got %v", err)
	}
	if _, err := catalog.Restock(ctx, 999, 5); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCatalogService_DeleteKeepsSaleSnapshots(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	sales := core.NewSaleService(pool)
	ctx := context.Background()

	sale, err := sales.ProcessSale(ctx, core.SaleRequest{
		Lines:         []core.CartLine{{ProductID: vanillaID, Quantity: 1}},
		VendorName:    "María",
		PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if err := catalog.DeleteProduct(ctx, vanillaID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	// The sale record survives with its name and price snapshots intact.
	fetched, err := sales.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetSale after delete failed: %v", err)
	}
	if len(fetched.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(fetched.Lines))
	}
	line := fetched.Lines[0]
	if line.ProductID != nil {
		t.Errorf("Expected product reference cleared, got %v", *line.ProductID)
	}
	if line.ProductName != "Vainilla" || line.UnitPrice.StringFixed(2) != "3.00" {
		t.Errorf("Expected snapshot preserved, got %s at %s", line.ProductName, line.UnitPrice.StringFixed(2))
	}
}

func TestReportingService_Dashboard(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	sales := core.NewSaleService(pool)
	reporting := core.NewReportingService(pool)
	ctx := context.Background()

	clientID := anaID
	checkouts := []core.SaleRequest{
		{Lines: []core.CartLine{{ProductID: vanillaID, Quantity: 2}}, VendorName: "María", PaymentMethod: core.PaymentCash},
		{Lines: []core.CartLine{{ProductID: vanillaID, Quantity: 1}}, VendorName: "María", PaymentMethod: core.PaymentTransfer},
		{Lines: []core.CartLine{{ProductID: strawberryID, Quantity: 2}}, VendorName: "María", ClientID: &clientID, PaymentMethod: core.PaymentCredit},
	}
	for i, req := range checkouts {
		if _, err := sales.ProcessSale(ctx, req); err != nil {
			t.Fatalf("Checkout %d failed: %v", i, err)
		}
	}

	daily, err := reporting.DailySummary(ctx)
	if err != nil {
		t.Fatalf("DailySummary failed: %v", err)
	}
	if daily.SaleCount != 3 {
		t.Errorf("Expected 3 sales, got %d", daily.SaleCount)
	}
	if daily.CashTotal.StringFixed(2) != "6.00" {
		t.Errorf("Expected cash total 6.00, got %s", daily.CashTotal.StringFixed(2))
	}
	if daily.TransferTotal.StringFixed(2) != "3.00" {
		t.Errorf("Expected transfer total 3.00, got %s", daily.TransferTotal.StringFixed(2))
	}
	if daily.CreditTotal.StringFixed(2) != "7.00" {
		t.Errorf("Expected credit total 7.00, got %s", daily.CreditTotal.StringFixed(2))
	}
	if daily.Total.StringFixed(2) != "16.00" {
		t.Errorf("Expected total 16.00, got %s", daily.Total.StringFixed(2))
	}

	credit, err := reporting.CreditSummary(ctx)
	if err != nil {
		t.Fatalf("CreditSummary failed: %v", err)
	}
	// Ana: 35.00 opening + 7.00 credit sale. Luis carries no debt.
	if credit.TotalDebt.StringFixed(2) != "42.00" {
		t.Errorf("Expected outstanding debt 42.00, got %s", credit.TotalDebt.StringFixed(2))
	}
	if credit.ClientsWithDebt != 1 {
		t.Errorf("Expected 1 client with debt, got %d", credit.ClientsWithDebt)
	}

	// Strawberry started at 8 with min_stock 10, now at 6.
	low, err := reporting.LowStockProducts(ctx)
	if err != nil {
		t.Fatalf("LowStockProducts failed: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Fresa" {
		t.Errorf("Expected only Fresa below threshold, got %+v", low)
	}
}
