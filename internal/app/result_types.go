package app

import "heladeria-pos/internal/core"

// VendorListResult is returned by ListVendors.
type VendorListResult struct {
	Vendors []core.Vendor `json:"vendors"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client `json:"clients"`
}

// SaleResult is returned by Checkout.
type SaleResult struct {
	Sale *core.Sale `json:"sale"`
}

// SaleListResult is returned by ListSales and ListTodaySales.
type SaleListResult struct {
	Sales []core.Sale `json:"sales"`
}

// PaymentResult is returned by ApplyCreditPayment. Client carries the
// post-payment debt so the UI can refresh without a second round trip.
type PaymentResult struct {
	Transaction *core.CreditTransaction `json:"transaction"`
	Client      *core.Client            `json:"client"`
}

// TransactionListResult is returned by CreditHistory and ListCreditTransactions.
type TransactionListResult struct {
	Transactions []core.CreditTransaction `json:"transactions"`
}

// DashboardResult is returned by DashboardSummary.
type DashboardResult struct {
	Today    *core.DailySummary  `json:"today"`
	Credit   *core.CreditSummary `json:"credit"`
	LowStock []core.Product      `json:"low_stock"`
}
