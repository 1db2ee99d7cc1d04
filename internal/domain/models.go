package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role of an authenticated user
type Role string

const (
	RoleKasir Role = "kasir"
	RoleAdmin Role = "admin"
)

// User is a cashier or admin account
type User struct {
	ID           string    `json:"id" bson:"id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password"`
	Role         Role      `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Well-known customer type names. The price tier is selected by name;
// anything unrecognized falls back to the regular tier.
const (
	CustomerRegular = "regular"
	CustomerSales   = "sales"
	CustomerBengkel = "bengkel"
)

// Product carries three tier prices, one per customer type
type Product struct {
	ID           string          `json:"id" bson:"id"`
	Name         string          `json:"name" bson:"name"`
	SKU          string          `json:"sku" bson:"sku"`
	Description  string          `json:"description" bson:"description"`
	PriceRegular decimal.Decimal `json:"price_regular" bson:"price_regular"`
	PriceSales   decimal.Decimal `json:"price_sales" bson:"price_sales"`
	PriceBengkel decimal.Decimal `json:"price_bengkel" bson:"price_bengkel"`
	Stock        int64           `json:"stock" bson:"stock"`
	MinStock     int64           `json:"min_stock" bson:"min_stock"`
	Category     string          `json:"category" bson:"category"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updated_at"`
}

// TierPrice selects the unit price for a customer type name.
// Unknown names resolve to the regular price, never an error.
func (p Product) TierPrice(customerType string) decimal.Decimal {
	switch customerType {
	case CustomerSales:
		return p.PriceSales
	case CustomerBengkel:
		return p.PriceBengkel
	default:
		return p.PriceRegular
	}
}

// CustomerType is a named discount class
type CustomerType struct {
	ID                 string          `json:"id" bson:"id"`
	Name               string          `json:"name" bson:"name"`
	DisplayName        string          `json:"display_name" bson:"display_name"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" bson:"discount_percentage"`
	CreatedAt          time.Time       `json:"created_at" bson:"created_at"`
}

// PaymentMethod accepted at the till
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "tunai"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether the method is one of the accepted kinds
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTransfer
}

// TransactionStatus of a persisted sale
type TransactionStatus string

const TransactionCompleted TransactionStatus = "completed"

// TransactionItem is one sold line with the price resolved at commit time
type TransactionItem struct {
	ProductID      string          `json:"product_id" bson:"product_id"`
	ProductName    string          `json:"product_name" bson:"product_name"`
	ProductSKU     string          `json:"product_sku" bson:"product_sku"`
	Quantity       int64           `json:"quantity" bson:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" bson:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount" bson:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price" bson:"total_price"`
}

// Transaction is a committed sale
type Transaction struct {
	ID                  string            `json:"id" bson:"id"`
	TransactionNumber   string            `json:"transaction_number" bson:"transaction_number"`
	CustomerType        string            `json:"customer_type" bson:"customer_type"`
	CustomerTypeDisplay string            `json:"customer_type_display" bson:"customer_type_display"`
	Items               []TransactionItem `json:"items" bson:"items"`
	Subtotal            decimal.Decimal   `json:"subtotal" bson:"subtotal"`
	DiscountTotal       decimal.Decimal   `json:"discount_total" bson:"discount_total"`
	TotalAmount         decimal.Decimal   `json:"total_amount" bson:"total_amount"`
	PaymentMethod       PaymentMethod     `json:"payment_method" bson:"payment_method"`
	PaymentAmount       decimal.Decimal   `json:"payment_amount" bson:"payment_amount"`
	ChangeAmount        decimal.Decimal   `json:"change_amount" bson:"change_amount"`
	CashierID           string            `json:"cashier_id" bson:"cashier_id"`
	CashierName         string            `json:"cashier_name" bson:"cashier_name"`
	CreatedAt           time.Time         `json:"created_at" bson:"created_at"`
	Status              TransactionStatus `json:"status" bson:"status"`
}

// RequestItem is a (product, quantity) pair inside a submission
type RequestItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// TransactionRequest is the submission payload handed to the persistence
// side. It deliberately carries no computed totals: the receiving service
// resolves prices and is authoritative for stock and final amounts.
type TransactionRequest struct {
	CustomerType  string          `json:"customer_type"`
	Items         []RequestItem   `json:"items"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

// ReportSummary aggregates sales over a period
type ReportSummary struct {
	Period            string                     `json:"period"`
	StartDate         string                     `json:"start_date"`
	EndDate           string                     `json:"end_date"`
	TotalTransactions int                        `json:"total_transactions"`
	TotalRevenue      decimal.Decimal            `json:"total_revenue"`
	TotalItemsSold    int64                      `json:"total_items_sold"`
	PaymentMethods    map[string]decimal.Decimal `json:"payment_methods"`
	CustomerTypes     map[string]decimal.Decimal `json:"customer_types"`
}

// DashboardStats is the landing-page snapshot
type DashboardStats struct {
	TodayTransactions int             `json:"today_transactions"`
	TodayRevenue      decimal.Decimal `json:"today_revenue"`
	TotalProducts     int             `json:"total_products"`
	LowStockProducts  int             `json:"low_stock_products"`
}
