package infra

import (
	"bytes"
	"fmt"

	"github.com/artenioreis/loja-caixa/internal/dto"

	"github.com/xuri/excelize/v2"
)

const salesSheet = "Relatorio_Vendas"

var salesHeaders = []string{
	"Venda", "Data/Hora", "Operador", "Pagamento",
	"Codigo de Barras", "Produto", "Qtd", "Preco Unit.", "Subtotal",
}

// WriteSalesWorkbook renders the detailed report rows as an xlsx workbook
// and returns its bytes.
func WriteSalesWorkbook(rows []dto.SaleItemRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), salesSheet)

	for col, h := range salesHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(salesSheet, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(salesHeaders), 1)
		_ = f.SetCellStyle(salesSheet, "A1", last, style)
	}

	for i, row := range rows {
		// Monetary cells carry floats so spreadsheet formulas work on them;
		// precision was already fixed at two decimals upstream.
		unitPrice, _ := row.UnitPrice.Float64()
		subtotal, _ := row.Subtotal.Float64()
		values := []interface{}{
			row.SaleNumber,
			row.SoldAt.Format("02/01/2006 15:04:05"),
			row.Operator,
			row.PaymentMethod,
			row.Barcode,
			row.Product,
			row.Quantity,
			unitPrice,
			subtotal,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(salesSheet, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx: row %d: %w", i+1, err)
			}
		}
	}

	_ = f.SetColWidth(salesSheet, "A", "A", 14)
	_ = f.SetColWidth(salesSheet, "B", "B", 20)
	_ = f.SetColWidth(salesSheet, "C", "F", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
