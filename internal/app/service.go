package app

import (
	"context"

	"heladeria-pos/internal/core"
)

// ApplicationService is the single interface all UI adapters (terminal, web)
// call. It decouples presentation from business logic. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Session state — the logged-in vendor and the cart being built — is owned by
// the calling adapter and passed in explicitly; nothing here is ambient.
type ApplicationService interface {
	// ListVendors returns the login picklist.
	ListVendors(ctx context.Context) (*VendorListResult, error)

	// GetVendor resolves one picklist entry, used at terminal login.
	GetVendor(ctx context.Context, id int) (*core.Vendor, error)

	// ListProducts returns the catalog ordered by name.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// CreateProduct adds a catalog entry.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error)

	// UpdateProduct applies a partial update to name, price, threshold or icon.
	UpdateProduct(ctx context.Context, id int, req UpdateProductRequest) (*core.Product, error)

	// RestockProduct adds qty units to a product's stock.
	RestockProduct(ctx context.Context, id, qty int) (*core.Product, error)

	// DeleteProduct removes a product; sale history keeps its snapshots.
	DeleteProduct(ctx context.Context, id int) error

	// ListClients returns registered clients ordered by name.
	ListClients(ctx context.Context) (*ClientListResult, error)

	// GetClient returns one client with current debt.
	GetClient(ctx context.Context, id int) (*core.Client, error)

	// CreateClient registers a client with zero starting debt.
	CreateClient(ctx context.Context, req CreateClientRequest) (*core.Client, error)

	// UpdateClient applies a partial update to contact data or credit limit.
	UpdateClient(ctx context.Context, id int, req UpdateClientRequest) (*core.Client, error)

	// Checkout processes a sale from the given cart lines. A blank
	// IdempotencyKey is filled in server-side so a retry after a network
	// failure cannot double-charge stock.
	Checkout(ctx context.Context, req CheckoutRequest) (*SaleResult, error)

	// ListSales returns sales newest-first; limit <= 0 means all.
	ListSales(ctx context.Context, limit int) (*SaleListResult, error)

	// ListTodaySales returns sales created today, newest-first.
	ListTodaySales(ctx context.Context) (*SaleListResult, error)

	// DeleteSale removes a sale record (administrative).
	DeleteSale(ctx context.Context, id int) error

	// ApplyCreditPayment applies a payment against a client's debt.
	ApplyCreditPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)

	// CreditHistory returns a client's ledger entries, newest-first.
	CreditHistory(ctx context.Context, clientID int) (*TransactionListResult, error)

	// ListCreditTransactions returns the whole ledger, newest-first.
	ListCreditTransactions(ctx context.Context) (*TransactionListResult, error)

	// DashboardSummary returns today's sales totals, the credit position,
	// and products below their reorder threshold.
	DashboardSummary(ctx context.Context) (*DashboardResult, error)
}
