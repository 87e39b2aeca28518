package service

import (
	"context"
	"fmt"
	"time"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// saleNumberAttempts bounds the retry loop when the derived sale number is
// already taken (two sales in the same second).
const saleNumberAttempts = 5

type CheckoutService interface {
	// Finalize runs the whole checkout: precondition and stock checks,
	// payment math, and an atomic commit of the sale plus its stock
	// decrements. On any failure nothing is persisted.
	Finalize(ctx context.Context, userID uuid.UUID, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error)
	// Cancel flips a finalized sale to cancelada and restores its stock.
	Cancel(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	// GetModel is the raw sale for receipt rendering.
	GetModel(ctx context.Context, id uuid.UUID) (*model.Sale, error)
}

type checkoutService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	till     TillService
}

func NewCheckoutService(sales repository.SaleRepository, products repository.ProductRepository, till TillService) CheckoutService {
	return &checkoutService{sales: sales, products: products, till: till}
}

// runTx executes fn inside a database transaction. With no database bound
// (unit tests against fakes) fn runs directly with a nil tx.
func (s *checkoutService) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.sales.DB()
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

type resolvedItem struct {
	product  *model.Product
	quantity int
	subtotal decimal.Decimal
}

func (s *checkoutService) Finalize(ctx context.Context, userID uuid.UUID, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error) {
	session, err := s.till.OpenSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.Precondition("till is closed: open a till session before selling")
	}

	if len(req.Items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}
	if !model.ValidPaymentMethod(req.PaymentMethod) {
		return nil, apperr.Validation("unknown payment method: %s", req.PaymentMethod)
	}

	// Resolve the cart before touching the transaction: missing or
	// understocked products reject the whole sale up front. The stock
	// read here is advisory; the authoritative check is the conditional
	// decrement inside the transaction.
	resolved := make([]resolvedItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperr.Validation("invalid product id: %s", item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, apperr.NotFound("product not found: %s", item.ProductID)
		}
		if p.Stock < item.Quantity {
			return nil, apperr.InsufficientStock("insufficient stock for %s (available: %d)", p.Name, p.Stock)
		}
		sub := p.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		resolved = append(resolved, resolvedItem{product: p, quantity: item.Quantity, subtotal: sub})
		total = total.Add(sub)
	}

	paid := req.AmountPaid
	change := decimal.Zero
	if req.PaymentMethod == model.PaymentCash {
		change = paid.Sub(total)
		if change.IsNegative() {
			return nil, apperr.Validation("amount paid is less than the sale total")
		}
	} else {
		// Card and pix settle exactly; whatever the terminal sent as
		// amount_paid is ignored.
		paid = total
	}

	number, err := s.nextSaleNumber(ctx)
	if err != nil {
		return nil, err
	}

	sale := &model.Sale{
		Number:        number,
		SoldAt:        time.Now(),
		Total:         total,
		AmountPaid:    paid,
		Change:        change,
		PaymentMethod: req.PaymentMethod,
		Status:        model.SaleFinalized,
		UserID:        userID,
	}
	for _, it := range resolved {
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID: it.product.ID,
			Quantity:  it.quantity,
			UnitPrice: it.product.SalePrice,
			Subtotal:  it.subtotal,
		})
	}

	err = s.runTx(ctx, func(tx *gorm.DB) error {
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return err
		}
		for _, it := range resolved {
			ok, err := s.products.DecrementStockTx(tx, it.product.ID, it.quantity)
			if err != nil {
				return err
			}
			if !ok {
				// A concurrent sale took the remaining units between the
				// pre-flight read and this decrement.
				return apperr.InsufficientStock("insufficient stock for %s", it.product.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sale_number", sale.Number).
		Str("user_id", userID.String()).
		Str("payment_method", sale.PaymentMethod).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale finalized")

	resp := saleToResponse(sale)
	for i, it := range resolved {
		resp.Items[i].Product = it.product.Name
		resp.Items[i].Barcode = it.product.Barcode
	}
	return resp, nil
}

// nextSaleNumber derives the receipt number from the current unix second,
// stepping forward on collision.
func (s *checkoutService) nextSaleNumber(ctx context.Context) (string, error) {
	base := time.Now().Unix()
	for i := int64(0); i < saleNumberAttempts; i++ {
		number := fmt.Sprintf("V%d", base+i)
		exists, err := s.sales.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperr.Conflict("could not allocate a sale number, try again")
}

func (s *checkoutService) Cancel(ctx context.Context, id uuid.UUID) error {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return apperr.NotFound("sale not found")
	}
	if sale.Status == model.SaleCancelled {
		return apperr.InvalidState("sale is already cancelled")
	}

	err = s.runTx(ctx, func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			if err := s.products.RestoreStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.sales.UpdateStatusTx(tx, sale.ID, model.SaleCancelled)
	})
	if err != nil {
		return err
	}

	log.Info().Str("sale_number", sale.Number).Msg("sale cancelled, stock restored")
	return nil
}

func (s *checkoutService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("sale not found")
	}
	return saleToResponse(sale), nil
}

func (s *checkoutService) GetModel(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("sale not found")
	}
	return sale, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            s.ID.String(),
		Number:        s.Number,
		SoldAt:        s.SoldAt.Format(time.RFC3339),
		Total:         s.Total,
		AmountPaid:    s.AmountPaid,
		Change:        s.Change,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
	}
	if s.User != nil {
		resp.Operator = s.User.Name
	}
	for _, item := range s.Items {
		ir := dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
		if item.Product != nil {
			ir.Product = item.Product.Name
			ir.Barcode = item.Product.Barcode
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
