package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportFilter is bound from the query string of the report endpoints.
// Dates are YYYY-MM-DD; anything unparsable silently falls back to the
// trailing-7-day default window.
type ReportFilter struct {
	Start         string `form:"start"`
	End           string `form:"end"`
	OperatorID    string `form:"operator_id"`
	PaymentMethod string `form:"payment_method"`
}

// ReportQuery is the resolved form of ReportFilter handed to repositories:
// concrete local-time bounds plus optional filters.
type ReportQuery struct {
	Start         time.Time
	End           time.Time
	UserID        *uuid.UUID
	PaymentMethod string
}

type MethodTotal struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type TopProductRow struct {
	ProductID string          `json:"product_id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SaleItemRow is one flat line of the detailed report and the xlsx export.
type SaleItemRow struct {
	SaleID        string          `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	SoldAt        time.Time       `json:"sold_at"`
	Operator      string          `json:"operator"`
	PaymentMethod string          `json:"payment_method"`
	Barcode       string          `json:"barcode"`
	Product       string          `json:"product"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type SalesReportResponse struct {
	Start         string          `json:"start"`
	End           string          `json:"end"`
	SalesCount    int64           `json:"sales_count"`
	SalesTotal    decimal.Decimal `json:"sales_total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	ByMethod      []MethodTotal   `json:"by_method"`
	TopProducts   []TopProductRow `json:"top_products"`
	Items         []SaleItemRow   `json:"items"`
}

type DashboardResponse struct {
	TodayTotal     decimal.Decimal       `json:"today_total"`
	TodaySales     int64                 `json:"today_sales"`
	ActiveProducts int64                 `json:"active_products"`
	LowStockCount  int64                 `json:"low_stock_count"`
	TillBoard      []OperatorTillStatus  `json:"till_board"`
	ForgottenTills []TillSessionResponse `json:"forgotten_tills"`
}
