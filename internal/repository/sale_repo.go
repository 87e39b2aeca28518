package repository

import (
	"context"
	"time"

	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleRepository is the append-only sales ledger. Rows are inserted inside
// the checkout transaction and never mutated afterwards, except for the
// finalizada → cancelada status transition.
type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error

	// WindowTotals sums finalized sales of one operator inside a till
	// window. A non-empty methods slice restricts the payment methods
	// counted (the expected-cash scope); nil counts every method.
	// Both bounds are inclusive.
	WindowTotals(ctx context.Context, userID uuid.UUID, from, to time.Time, methods []string) (int64, decimal.Decimal, error)

	// Summary / SummaryByMethod / TopProducts / ItemRows serve reporting.
	// All of them are restricted to finalized sales and return zero/empty
	// results for empty windows — never an error.
	Summary(ctx context.Context, q dto.ReportQuery) (int64, decimal.Decimal, error)
	SummaryByMethod(ctx context.Context, q dto.ReportQuery) ([]dto.MethodTotal, error)
	TopProducts(ctx context.Context, q dto.ReportQuery, limit int) ([]dto.TopProductRow, error)
	ItemRows(ctx context.Context, q dto.ReportQuery) ([]dto.SaleItemRow, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("User").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("number = ?", number).Count(&n).Error
	return n > 0, err
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) WindowTotals(ctx context.Context, userID uuid.UUID, from, to time.Time, methods []string) (int64, decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("user_id = ? AND status = ? AND sold_at >= ? AND sold_at <= ?",
			userID, model.SaleFinalized, from, to)
	if len(methods) > 0 {
		q = q.Where("payment_method IN ?", methods)
	}

	var row struct {
		Count int64
		Total decimal.NullDecimal
	}
	err := q.Select("COUNT(*) AS count, SUM(total) AS total").Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	total := decimal.Zero
	if row.Total.Valid {
		total = row.Total.Decimal
	}
	return row.Count, total, nil
}

// reportScope applies the common report filters: finalized status, the
// inclusive window, and the optional operator / payment method narrowing.
func (r *saleRepo) reportScope(ctx context.Context, q dto.ReportQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("sales.status = ? AND sales.sold_at >= ? AND sales.sold_at <= ?",
			model.SaleFinalized, q.Start, q.End)
	if q.UserID != nil {
		db = db.Where("sales.user_id = ?", *q.UserID)
	}
	if q.PaymentMethod != "" {
		db = db.Where("sales.payment_method = ?", q.PaymentMethod)
	}
	return db
}

func (r *saleRepo) Summary(ctx context.Context, q dto.ReportQuery) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.NullDecimal
	}
	err := r.reportScope(ctx, q).
		Select("COUNT(*) AS count, SUM(total) AS total").
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	total := decimal.Zero
	if row.Total.Valid {
		total = row.Total.Decimal
	}
	return row.Count, total, nil
}

func (r *saleRepo) SummaryByMethod(ctx context.Context, q dto.ReportQuery) ([]dto.MethodTotal, error) {
	var rows []dto.MethodTotal
	err := r.reportScope(ctx, q).
		Select("payment_method AS method, COUNT(*) AS count, SUM(total) AS total").
		Group("payment_method").
		Order("payment_method ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) TopProducts(ctx context.Context, q dto.ReportQuery, limit int) ([]dto.TopProductRow, error) {
	var rows []dto.TopProductRow
	// Ties rank by product insertion order so repeated reports are stable.
	err := r.reportScope(ctx, q).
		Select(`products.id AS product_id, products.barcode AS barcode, products.name AS name,
			SUM(sale_items.quantity) AS quantity, SUM(sale_items.subtotal) AS revenue`).
		Joins("JOIN sale_items ON sale_items.sale_id = sales.id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Group("products.id, products.barcode, products.name, products.created_at").
		Order("SUM(sale_items.quantity) DESC, products.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) ItemRows(ctx context.Context, q dto.ReportQuery) ([]dto.SaleItemRow, error) {
	var rows []dto.SaleItemRow
	err := r.reportScope(ctx, q).
		Select(`sales.id AS sale_id, sales.number AS sale_number, sales.sold_at AS sold_at,
			users.name AS operator, sales.payment_method AS payment_method,
			products.barcode AS barcode, products.name AS product,
			sale_items.quantity AS quantity, sale_items.unit_price AS unit_price,
			sale_items.subtotal AS subtotal`).
		Joins("JOIN sale_items ON sale_items.sale_id = sales.id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Joins("JOIN users ON users.id = sales.user_id").
		Order("sales.sold_at DESC").
		Scan(&rows).Error
	return rows, err
}
