package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods form a closed set.
const (
	PaymentCash = "dinheiro"
	PaymentCard = "cartao"
	PaymentPix  = "pix"
)

// Sale status. Finalized sales are append-only; the only permitted
// mutation is the finalizada → cancelada transition.
const (
	SaleFinalized = "finalizada"
	SaleCancelled = "cancelada"
)

// ValidPaymentMethod reports whether m belongs to the closed payment set.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPix:
		return true
	}
	return false
}

// Sale is one finalized checkout. Total always equals the sum of item
// subtotals; for cash payments Change = AmountPaid - Total, for the rest
// AmountPaid is forced to Total and Change is zero.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number        string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	SoldAt        time.Time       `gorm:"index;not null"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Change        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'finalizada'"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"`

	User  *User      `gorm:"foreignKey:UserID"`
	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem snapshots the product price at sale time — later catalog price
// changes never rewrite history.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
