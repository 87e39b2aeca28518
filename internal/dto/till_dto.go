package dto

import "github.com/shopspring/decimal"

type OpenTillRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash" validate:"min=0"`
}

type CloseTillRequest struct {
	DeclaredCash decimal.Decimal `json:"declared_cash" validate:"min=0"`
}

type TillSessionResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Operator     string           `json:"operator,omitempty"`
	OpenedAt     string           `json:"opened_at"`
	OpeningCash  decimal.Decimal  `json:"opening_cash"`
	Status       string           `json:"status"`
	ClosedAt     *string          `json:"closed_at,omitempty"`
	DeclaredCash *decimal.Decimal `json:"declared_cash,omitempty"`
}

// CloseTillResponse reports the reconciliation figures computed at the
// closing instant. The same figures are reproduced verbatim by any later
// read of the session.
type CloseTillResponse struct {
	Session      TillSessionResponse `json:"session"`
	SalesCount   int64               `json:"sales_count"`
	SalesTotal   decimal.Decimal     `json:"sales_total"`
	ExpectedCash decimal.Decimal     `json:"expected_cash"`
	DeclaredCash decimal.Decimal     `json:"declared_cash"`
	Variance     decimal.Decimal     `json:"variance"`
	Balanced     bool                `json:"balanced"`
}

// Operator board states beyond the session lifecycle.
const (
	TillNeverOpened = "nunca_aberto"
)

// OperatorTillStatus is one row of the oversight board: the most recent
// session of an active operator, with its variance when closed.
type OperatorTillStatus struct {
	UserID   string `json:"user_id"`
	Operator string `json:"operator"`
	// Status: aberta | fechada | nunca_aberto
	Status string `json:"status"`
	// At is the closing time for closed sessions, the opening time for open
	// ones, empty for operators that never opened a till.
	At           string          `json:"at,omitempty"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	DeclaredCash decimal.Decimal `json:"declared_cash"`
	Variance     decimal.Decimal `json:"variance"`
	// ShowVariance is false when the session balanced within tolerance (or
	// is not closed), so the board only flags real discrepancies.
	ShowVariance bool `json:"show_variance"`
}
