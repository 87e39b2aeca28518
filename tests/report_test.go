package tests

import (
	"context"
	"testing"
	"time"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/config"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRangeExplicit(t *testing.T) {
	now := time.Date(2024, 6, 10, 14, 30, 0, 0, time.Local)

	start, end := service.ResolveRange(now, "2024-06-01", "2024-06-05")
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 6, 5, 23, 59, 59, 0, time.Local), end)
}

func TestResolveRangeDefaultWindow(t *testing.T) {
	now := time.Date(2024, 6, 10, 14, 30, 0, 0, time.Local)

	// Missing dates: trailing 7 calendar days ending today.
	start, end := service.ResolveRange(now, "", "")
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 6, 10, 23, 59, 59, 0, time.Local), end)
}

func TestResolveRangeBadInputFallsBack(t *testing.T) {
	now := time.Date(2024, 6, 10, 14, 30, 0, 0, time.Local)

	cases := [][2]string{
		{"not-a-date", "2024-06-05"},
		{"2024-06-01", "garbage"},
		{"10/06/2024", "11/06/2024"},
		{"2024-06-05", "2024-06-01"}, // start after end
	}
	for _, c := range cases {
		start, end := service.ResolveRange(now, c[0], c[1])
		assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.Local), start, "input %v", c)
		assert.Equal(t, time.Date(2024, 6, 10, 23, 59, 59, 0, time.Local), end, "input %v", c)
	}
}

type reportFixture struct {
	svc      service.ReportService
	sales    *fakeSaleRepo
	products *fakeProductRepo
	users    *fakeUserRepo
	operator *model.User
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	saleRepo := newFakeSaleRepo()
	productRepo := newFakeProductRepo()
	tillRepo := newFakeTillRepo()
	userRepo := newFakeUserRepo()

	tillSvc := service.NewTillService(tillRepo, saleRepo, userRepo, config.ExpectedCashScopeCash)
	svc := service.NewReportService(saleRepo, productRepo, tillSvc)

	operator := &model.User{Name: "Paulo", Email: "paulo@loja.com", Role: model.RoleCashier, Active: true}
	require.NoError(t, userRepo.Create(context.Background(), operator))

	return &reportFixture{svc: svc, sales: saleRepo, products: productRepo, users: userRepo, operator: operator}
}

func (f *reportFixture) seedSale(t *testing.T, method, total string, soldAt time.Time, items ...model.SaleItem) {
	t.Helper()
	s := &model.Sale{
		Number:        "V" + uuid.NewString()[:8],
		SoldAt:        soldAt,
		Total:         dec(total),
		AmountPaid:    dec(total),
		PaymentMethod: method,
		Status:        model.SaleFinalized,
		UserID:        f.operator.ID,
		User:          f.operator,
		Items:         items,
	}
	require.NoError(t, f.sales.CreateTx(nil, s))
}

func (f *reportFixture) product(t *testing.T, name, barcode string) *model.Product {
	t.Helper()
	p := &model.Product{Barcode: barcode, Name: name, SalePrice: dec("1.00"), CostPrice: dec("1.00"), Active: true}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func item(p *model.Product, qty int, unit string) model.SaleItem {
	u := dec(unit)
	return model.SaleItem{
		ProductID: p.ID,
		Product:   p,
		Quantity:  qty,
		UnitPrice: u,
		Subtotal:  u.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestSalesReportAggregates(t *testing.T) {
	f := newReportFixture(t)
	rice := f.product(t, "Arroz Integral 1kg", "7891000100103")
	coffee := f.product(t, "Cafe em Po 500g", "7891000100127")

	now := time.Now()
	f.seedSale(t, model.PaymentCash, "17.80", now, item(rice, 2, "8.90"))
	f.seedSale(t, model.PaymentCard, "15.90", now, item(coffee, 1, "15.90"))
	f.seedSale(t, model.PaymentCash, "26.70", now, item(rice, 3, "8.90"))

	today := now.Format("2006-01-02")
	resp, err := f.svc.SalesReport(context.Background(), dto.ReportFilter{Start: today, End: today})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.SalesCount)
	assert.True(t, resp.SalesTotal.Equal(dec("60.40")))
	// 60.40 / 3 = 20.13 rounded to cents
	assert.True(t, resp.AverageTicket.Equal(dec("20.13")))

	require.Len(t, resp.ByMethod, 2)
	byMethod := make(map[string]dto.MethodTotal)
	for _, mt := range resp.ByMethod {
		byMethod[mt.Method] = mt
	}
	assert.Equal(t, int64(2), byMethod[model.PaymentCash].Count)
	assert.True(t, byMethod[model.PaymentCash].Total.Equal(dec("44.50")))
	assert.Equal(t, int64(1), byMethod[model.PaymentCard].Count)

	// Rice sold 5 units, coffee 1: rice ranks first.
	require.NotEmpty(t, resp.TopProducts)
	assert.Equal(t, "Arroz Integral 1kg", resp.TopProducts[0].Name)
	assert.Equal(t, int64(5), resp.TopProducts[0].Quantity)

	assert.Len(t, resp.Items, 3)
}

func TestSalesReportEmptyWindow(t *testing.T) {
	f := newReportFixture(t)

	resp, err := f.svc.SalesReport(context.Background(), dto.ReportFilter{Start: "2020-01-01", End: "2020-01-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.SalesCount)
	assert.True(t, resp.SalesTotal.IsZero())
	assert.True(t, resp.AverageTicket.IsZero())
	assert.Empty(t, resp.ByMethod)
	assert.Empty(t, resp.Items)
}

func TestSalesReportFiltersByMethodAndOperator(t *testing.T) {
	f := newReportFixture(t)
	rice := f.product(t, "Arroz Integral 1kg", "7891000100103")

	now := time.Now()
	f.seedSale(t, model.PaymentCash, "8.90", now, item(rice, 1, "8.90"))
	f.seedSale(t, model.PaymentPix, "17.80", now, item(rice, 2, "8.90"))

	today := now.Format("2006-01-02")
	resp, err := f.svc.SalesReport(context.Background(), dto.ReportFilter{
		Start: today, End: today, PaymentMethod: model.PaymentPix,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.SalesCount)
	assert.True(t, resp.SalesTotal.Equal(dec("17.80")))

	// Unknown operator id narrows to nothing instead of erroring.
	resp, err = f.svc.SalesReport(context.Background(), dto.ReportFilter{
		Start: today, End: today, OperatorID: uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.SalesCount)
}

func TestSalesReportExcludesCancelled(t *testing.T) {
	f := newReportFixture(t)
	rice := f.product(t, "Arroz Integral 1kg", "7891000100103")

	now := time.Now()
	f.seedSale(t, model.PaymentCash, "8.90", now, item(rice, 1, "8.90"))
	f.sales.sales[0].Status = model.SaleCancelled

	today := now.Format("2006-01-02")
	resp, err := f.svc.SalesReport(context.Background(), dto.ReportFilter{Start: today, End: today})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.SalesCount)
}

func TestExportXLSX(t *testing.T) {
	f := newReportFixture(t)
	rice := f.product(t, "Arroz Integral 1kg", "7891000100103")

	now := time.Now()
	f.seedSale(t, model.PaymentCash, "8.90", now, item(rice, 1, "8.90"))

	today := now.Format("2006-01-02")
	data, filename, err := f.svc.ExportXLSX(context.Background(), dto.ReportFilter{Start: today, End: today})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "sales_report_"+today+"_to_"+today+".xlsx", filename)
	// xlsx files are zip containers
	assert.Equal(t, byte('P'), data[0])
	assert.Equal(t, byte('K'), data[1])
}

func TestExportXLSXEmptyWindow(t *testing.T) {
	f := newReportFixture(t)

	_, _, err := f.svc.ExportXLSX(context.Background(), dto.ReportFilter{Start: "2020-01-01", End: "2020-01-02"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDashboard(t *testing.T) {
	f := newReportFixture(t)
	rice := f.product(t, "Arroz Integral 1kg", "7891000100103")
	rice.Stock = 1
	rice.MinStock = 5

	f.seedSale(t, model.PaymentCash, "8.90", time.Now(), item(rice, 1, "8.90"))
	// Yesterday's sale stays out of today's counters.
	f.seedSale(t, model.PaymentCash, "50.00", time.Now().AddDate(0, 0, -1), item(rice, 1, "50.00"))

	resp, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.TodaySales)
	assert.True(t, resp.TodayTotal.Equal(dec("8.90")))
	assert.Equal(t, int64(1), resp.ActiveProducts)
	assert.Equal(t, int64(1), resp.LowStockCount)
	require.Len(t, resp.TillBoard, 1)
	assert.Equal(t, dto.TillNeverOpened, resp.TillBoard[0].Status)
	assert.Empty(t, resp.ForgottenTills)
}
