package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry sold at the till.
// Deactivation is a soft delete: the row must stay resolvable from
// historical sale items.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode     string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Category    *string         `gorm:"type:varchar(100)"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	MinStock    int             `gorm:"not null;default:0"`
	// ImagePath is relative to the upload directory (see infra.ImageStore).
	ImagePath *string `gorm:"type:varchar(255)"`
	Active    bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LowOnStock reports whether the product is at or below its minimum.
func (p *Product) LowOnStock() bool { return p.Stock <= p.MinStock }
