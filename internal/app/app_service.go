package app

import (
	"context"

	"github.com/google/uuid"

	"heladeria-pos/internal/core"
)

type appService struct {
	catalog   core.CatalogService
	clients   core.ClientService
	vendors   core.VendorService
	sales     core.SaleService
	credits   core.CreditService
	reporting core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	catalog core.CatalogService,
	clients core.ClientService,
	vendors core.VendorService,
	sales core.SaleService,
	credits core.CreditService,
	reporting core.ReportingService,
) ApplicationService {
	return &appService{
		catalog:   catalog,
		clients:   clients,
		vendors:   vendors,
		sales:     sales,
		credits:   credits,
		reporting: reporting,
	}
}

// ── Vendors ───────────────────────────────────────────────────────────────────

func (s *appService) ListVendors(ctx context.Context) (*VendorListResult, error) {
	vendors, err := s.vendors.GetVendors(ctx)
	if err != nil {
		return nil, err
	}
	return &VendorListResult{Vendors: vendors}, nil
}

func (s *appService) GetVendor(ctx context.Context, id int) (*core.Vendor, error) {
	return s.vendors.GetVendor(ctx, id)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.catalog.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error) {
	return s.catalog.CreateProduct(ctx, core.ProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		MinStock: req.MinStock,
		Icon:     req.Icon,
	})
}

func (s *appService) UpdateProduct(ctx context.Context, id int, req UpdateProductRequest) (*core.Product, error) {
	return s.catalog.UpdateProduct(ctx, id, core.ProductUpdate{
		Name:     req.Name,
		Price:    req.Price,
		MinStock: req.MinStock,
		Icon:     req.Icon,
	})
}

func (s *appService) RestockProduct(ctx context.Context, id, qty int) (*core.Product, error) {
	return s.catalog.Restock(ctx, id, qty)
}

func (s *appService) DeleteProduct(ctx context.Context, id int) error {
	return s.catalog.DeleteProduct(ctx, id)
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (s *appService) ListClients(ctx context.Context) (*ClientListResult, error) {
	clients, err := s.clients.GetClients(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) GetClient(ctx context.Context, id int) (*core.Client, error) {
	return s.clients.GetClient(ctx, id)
}

func (s *appService) CreateClient(ctx context.Context, req CreateClientRequest) (*core.Client, error) {
	return s.clients.CreateClient(ctx, core.ClientInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		CreditLimit: req.CreditLimit,
	})
}

func (s *appService) UpdateClient(ctx context.Context, id int, req UpdateClientRequest) (*core.Client, error) {
	return s.clients.UpdateClient(ctx, id, core.ClientUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		CreditLimit: req.CreditLimit,
	})
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func (s *appService) Checkout(ctx context.Context, req CheckoutRequest) (*SaleResult, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	lines := make([]core.CartLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.CartLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	sale, err := s.sales.ProcessSale(ctx, core.SaleRequest{
		Lines:          lines,
		VendorName:     req.VendorName,
		ClientID:       req.ClientID,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) ListSales(ctx context.Context, limit int) (*SaleListResult, error) {
	sales, err := s.sales.GetSales(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales}, nil
}

func (s *appService) ListTodaySales(ctx context.Context) (*SaleListResult, error) {
	sales, err := s.sales.GetTodaySales(ctx)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales}, nil
}

func (s *appService) DeleteSale(ctx context.Context, id int) error {
	return s.sales.DeleteSale(ctx, id)
}

// ── Credits ───────────────────────────────────────────────────────────────────

func (s *appService) ApplyCreditPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	txn, err := s.credits.ApplyPayment(ctx, req.ClientID, req.Amount, req.Method)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Transaction: txn, Client: client}, nil
}

func (s *appService) CreditHistory(ctx context.Context, clientID int) (*TransactionListResult, error) {
	txns, err := s.credits.History(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns}, nil
}

func (s *appService) ListCreditTransactions(ctx context.Context) (*TransactionListResult, error) {
	txns, err := s.credits.AllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns}, nil
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (s *appService) DashboardSummary(ctx context.Context) (*DashboardResult, error) {
	today, err := s.reporting.DailySummary(ctx)
	if err != nil {
		return nil, err
	}
	credit, err := s.reporting.CreditSummary(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.reporting.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardResult{Today: today, Credit: credit, LowStock: lowStock}, nil
}
