package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Barcode     string          `json:"barcode"     validate:"required"`
	Name        string          `json:"name"        validate:"required"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	SalePrice   decimal.Decimal `json:"sale_price"  validate:"required"`
	CostPrice   decimal.Decimal `json:"cost_price"  validate:"required"`
	Stock       int             `json:"stock"       validate:"min=0"`
	MinStock    int             `json:"min_stock"   validate:"min=0"`
}

type UpdateProductRequest struct {
	Barcode     string          `json:"barcode"     validate:"required"`
	Name        string          `json:"name"        validate:"required"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	SalePrice   decimal.Decimal `json:"sale_price"  validate:"required"`
	CostPrice   decimal.Decimal `json:"cost_price"  validate:"required"`
	Stock       int             `json:"stock"       validate:"min=0"`
	MinStock    int             `json:"min_stock"   validate:"min=0"`
}

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Name    string `form:"name"`
	Barcode string `form:"barcode"`
	// Active: "false" = inactive only, "all" = everything, default = active only
	Active string `form:"active"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	ImagePath   *string         `json:"image_path,omitempty"`
	Active      bool            `json:"active"`
	LowStock    bool            `json:"low_stock"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// LookupResponse is what the POS screen needs to add an item to the cart.
type LookupResponse struct {
	ID        string          `json:"id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     int             `json:"stock"`
	ImagePath *string         `json:"image_path,omitempty"`
}
