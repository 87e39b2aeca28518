package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Till session status. The lifecycle is aberta → fechada, terminal.
const (
	TillOpen   = "aberta"
	TillClosed = "fechada"
)

// TillSession is one bounded cash-drawer period for a single operator.
// It is created on open and mutated exactly once on close, which fills
// ClosedAt and DeclaredCash; after that the row is immutable.
//
// Invariant: at most one open session per operator. Every query that
// attributes sales to a closed session must use the persisted
// [OpenedAt, ClosedAt] window — never a fresh "now".
type TillSession struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	OpenedAt    time.Time       `gorm:"not null"`
	OpeningCash decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'aberta'"`
	ClosedAt    *time.Time
	DeclaredCash *decimal.Decimal `gorm:"type:decimal(10,2)"`

	User *User `gorm:"foreignKey:UserID"`
}

// Window returns the sale-attribution bounds for the session. For a closed
// session the upper bound is the persisted closing instant; for an open one
// the caller-supplied provisional instant is used.
func (s *TillSession) Window(provisionalEnd time.Time) (time.Time, time.Time) {
	if s.Status == TillClosed && s.ClosedAt != nil {
		return s.OpenedAt, *s.ClosedAt
	}
	return s.OpenedAt, provisionalEnd
}
