package dto

import "github.com/shopspring/decimal"

type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type FinalizeSaleRequest struct {
	Items         []CartItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=dinheiro cartao pix"`
	// AmountPaid is only meaningful for cash; other methods have it forced
	// to the sale total.
	AmountPaid decimal.Decimal `json:"amount_paid" validate:"min=0"`
}

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Barcode   string          `json:"barcode"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	SoldAt        string             `json:"sold_at"`
	Operator      string             `json:"operator,omitempty"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Change        decimal.Decimal    `json:"change"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	Items         []SaleItemResponse `json:"items"`
}
