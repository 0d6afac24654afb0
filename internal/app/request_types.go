package app

import (
	"github.com/shopspring/decimal"

	"heladeria-pos/internal/core"
)

// CreateProductRequest is the input for adding a catalog entry.
type CreateProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
	Icon     string          `json:"icon"`
}

// UpdateProductRequest is a partial product update; nil fields are untouched.
type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	MinStock *int             `json:"min_stock,omitempty"`
	Icon     *string          `json:"icon,omitempty"`
}

// CreateClientRequest is the input for registering a client.
type CreateClientRequest struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// UpdateClientRequest is a partial client update; nil fields are untouched.
type UpdateClientRequest struct {
	Name        *string          `json:"name,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Email       *string          `json:"email,omitempty"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
}

// CheckoutLine is one cart position submitted for checkout. Only product and
// quantity matter; pricing is always re-read from the catalog.
type CheckoutLine struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// CheckoutRequest is the input for processing a sale.
type CheckoutRequest struct {
	Lines          []CheckoutLine     `json:"lines"`
	VendorName     string             `json:"vendor_name"`
	ClientID       *int               `json:"client_id,omitempty"` // nil = walk-in
	PaymentMethod  core.PaymentMethod `json:"payment_method"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// PaymentRequest is the input for applying a credit payment.
type PaymentRequest struct {
	ClientID int                `json:"client_id"`
	Amount   decimal.Decimal    `json:"amount"`
	Method   core.PaymentMethod `json:"method"`
}
