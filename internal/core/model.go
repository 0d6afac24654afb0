package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale or credit payment was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCredit   PaymentMethod = "credit"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

// Settlement reports whether m can settle a credit payment
// (a debt cannot be paid off with more credit).
func (m PaymentMethod) Settlement() bool {
	return m == PaymentCash || m == PaymentTransfer
}

// WalkInClientName is recorded on sales with no registered client.
const WalkInClientName = "Cliente General"

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
)

// Product is a catalog item. Stock is a unit count and is never negative;
// MinStock is the reorder threshold used for low-stock warnings.
type Product struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	Icon      string          `json:"icon"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p Product) LowStock() bool { return p.Stock <= p.MinStock }

// Client is a registered customer with a credit account. CurrentDebt is
// mutated only by the sale and credit payment processors and reconciles with
// the signed sum of the client's credit transactions.
type Client struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Email       *string         `json:"email,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	CurrentDebt decimal.Decimal `json:"current_debt"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AvailableCredit is the remaining headroom under the client's limit.
func (c Client) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentDebt)
}

// Vendor is an entry in the terminal login picklist.
type Vendor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Icon     string `json:"icon"`
	IsActive bool   `json:"is_active"`
}

// Sale is an immutable completed-transaction record. ClientID is nil for
// walk-in sales; ClientName keeps a snapshot so the record survives client
// (or product) deletion.
type Sale struct {
	ID            int             `json:"id"`
	VendorName    string          `json:"vendor_name"`
	ClientID      *int            `json:"client_id,omitempty"`
	ClientName    string          `json:"client_name"`
	Lines         []SaleLine      `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        SaleStatus      `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleLine is one product position within a sale. ProductName and UnitPrice
// are snapshots taken at commit time from the authoritative catalog.
type SaleLine struct {
	ID          int             `json:"id"`
	SaleID      int             `json:"sale_id"`
	LineNumber  int             `json:"line_number"`
	ProductID   *int            `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// TransactionType tags a credit ledger entry.
type TransactionType string

const (
	TransactionDebt    TransactionType = "debt"    // positive amount, from a credit sale
	TransactionPayment TransactionType = "payment" // negative amount
)

// CreditTransaction is a signed ledger entry adjusting a client's debt.
// The sum of Amount over a client's transactions equals that client's
// CurrentDebt at all times.
type CreditTransaction struct {
	ID            int             `json:"id"`
	ClientID      int             `json:"client_id"`
	ClientName    string          `json:"client_name"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	PaymentMethod *PaymentMethod  `json:"payment_method,omitempty"`
	Description   string          `json:"description"`
	SaleID        *int            `json:"sale_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
