package service

import (
	"context"
	"fmt"
	"time"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/infra"
	"github.com/artenioreis/loja-caixa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "2006-01-02"
	topProductLimit = 10
	// defaultWindowDays is the trailing window used when the filter dates
	// are absent or unparsable.
	defaultWindowDays = 7
)

type ReportService interface {
	// SalesReport aggregates finalized sales in the filter window. Empty
	// windows return zeroed aggregates, never an error.
	SalesReport(ctx context.Context, filter dto.ReportFilter) (*dto.SalesReportResponse, error)
	// ExportXLSX renders the detailed rows of the window as a spreadsheet
	// and returns the bytes plus a suggested filename.
	ExportXLSX(ctx context.Context, filter dto.ReportFilter) ([]byte, string, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type reportService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	till     TillService
}

func NewReportService(sales repository.SaleRepository, products repository.ProductRepository, till TillService) ReportService {
	return &reportService{sales: sales, products: products, till: till}
}

// ResolveRange turns the raw YYYY-MM-DD filter strings into inclusive
// local-time bounds: [start 00:00:00, end 23:59:59]. Missing or unparsable
// dates, and a start after the end, silently fall back to the trailing
// 7-day window ending on now's date.
func ResolveRange(now time.Time, startStr, endStr string) (time.Time, time.Time) {
	loc := now.Location()

	start, errStart := time.ParseInLocation(dateLayout, startStr, loc)
	end, errEnd := time.ParseInLocation(dateLayout, endStr, loc)
	if errStart != nil || errEnd != nil || start.After(end) {
		end = now
		start = now.AddDate(0, 0, -(defaultWindowDays - 1))
	}

	startBound := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	endBound := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, loc)
	return startBound, endBound
}

// resolveQuery builds the repository query from the raw filter. A bad
// operator id or payment method narrows to nothing rather than erroring;
// reads are forgiving across the board.
func (s *reportService) resolveQuery(filter dto.ReportFilter) dto.ReportQuery {
	start, end := ResolveRange(time.Now(), filter.Start, filter.End)
	q := dto.ReportQuery{Start: start, End: end, PaymentMethod: filter.PaymentMethod}
	if filter.OperatorID != "" {
		if id, err := uuid.Parse(filter.OperatorID); err == nil {
			q.UserID = &id
		}
	}
	return q
}

func (s *reportService) SalesReport(ctx context.Context, filter dto.ReportFilter) (*dto.SalesReportResponse, error) {
	q := s.resolveQuery(filter)

	count, total, err := s.sales.Summary(ctx, q)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.sales.SummaryByMethod(ctx, q)
	if err != nil {
		return nil, err
	}
	top, err := s.sales.TopProducts(ctx, q, topProductLimit)
	if err != nil {
		return nil, err
	}
	items, err := s.sales.ItemRows(ctx, q)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = total.Div(decimal.NewFromInt(count)).Round(2)
	}

	if byMethod == nil {
		byMethod = []dto.MethodTotal{}
	}
	if top == nil {
		top = []dto.TopProductRow{}
	}
	if items == nil {
		items = []dto.SaleItemRow{}
	}

	return &dto.SalesReportResponse{
		Start:         q.Start.Format(dateLayout),
		End:           q.End.Format(dateLayout),
		SalesCount:    count,
		SalesTotal:    total,
		AverageTicket: avg,
		ByMethod:      byMethod,
		TopProducts:   top,
		Items:         items,
	}, nil
}

func (s *reportService) ExportXLSX(ctx context.Context, filter dto.ReportFilter) ([]byte, string, error) {
	q := s.resolveQuery(filter)

	rows, err := s.sales.ItemRows(ctx, q)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", apperr.NotFound("no sales in the selected period")
	}

	data, err := infra.WriteSalesWorkbook(rows)
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("sales_report_%s_to_%s.xlsx",
		q.Start.Format(dateLayout), q.End.Format(dateLayout))
	return data, name, nil
}

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	today := time.Now().Format(dateLayout)
	start, end := ResolveRange(time.Now(), today, today)

	count, total, err := s.sales.Summary(ctx, dto.ReportQuery{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	activeProducts, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.products.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	board, err := s.till.StatusBoard(ctx)
	if err != nil {
		return nil, err
	}
	forgotten, err := s.till.ForgottenSessions(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		TodayTotal:     total,
		TodaySales:     count,
		ActiveProducts: activeProducts,
		LowStockCount:  lowStock,
		TillBoard:      board,
		ForgottenTills: forgotten,
	}, nil
}
