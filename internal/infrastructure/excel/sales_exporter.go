// Package excel exporta ventas a una planilla XLSX.
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

var _ sales.SalesExporter = (*SalesExporter)(nil)

const (
	sheetDetail  = "Ventas"
	sheetSummary = "Resumen"
)

var detailHeader = []any{
	"ID venta", "Fecha", "Método de pago", "Código", "Producto",
	"Cantidad", "Precio unitario", "Costo unitario", "Subtotal", "Ganancia",
}

// SalesExporter escribe una fila por línea de venta y una hoja de resumen con totales.
type SalesExporter struct{}

func NewSalesExporter() *SalesExporter { return &SalesExporter{} }

func (e *SalesExporter) ExportSales(w io.Writer, list []*entity.Sale, products map[int64]*entity.Product) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetDetail); err != nil {
		return fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("excel: estilo: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return fmt.Errorf("excel: estilo: %w", err)
	}

	if err := f.SetSheetRow(sheetDetail, "A1", &detailHeader); err != nil {
		return fmt.Errorf("excel: cabecera: %w", err)
	}
	_ = f.SetCellStyle(sheetDetail, "A1", "J1", headerStyle)

	r := 2
	var units int
	for _, s := range list {
		for _, it := range s.Items {
			barcode, name := "", fmt.Sprintf("Producto #%d", it.ProductID)
			if p, ok := products[it.ProductID]; ok && p != nil {
				barcode, name = p.Barcode, p.Name
			}
			unit, _ := it.UnitPrice.Float64()
			cost, _ := it.CostPrice.Float64()
			sub, _ := it.Subtotal().Float64()
			profit, _ := it.Profit().Float64()
			values := []any{
				s.ID, s.Date.Format("2006-01-02 15:04"), s.PaymentMethod, barcode, name,
				it.Quantity, unit, cost, sub, profit,
			}
			cell, _ := excelize.CoordinatesToCellName(1, r)
			if err := f.SetSheetRow(sheetDetail, cell, &values); err != nil {
				return fmt.Errorf("excel: fila %d: %w", r, err)
			}
			units += it.Quantity
			r++
		}
	}
	if r > 2 {
		_ = f.SetCellStyle(sheetDetail, "G2", fmt.Sprintf("J%d", r-1), moneyStyle)
	}
	_ = f.SetColWidth(sheetDetail, "B", "B", 17)
	_ = f.SetColWidth(sheetDetail, "E", "E", 30)

	if err := writeSummary(f, list, units, headerStyle, moneyStyle); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("excel: escribir: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, list []*entity.Sale, units int, headerStyle, moneyStyle int) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("excel: hoja resumen: %w", err)
	}
	var income, profit float64
	for _, s := range list {
		v, _ := s.TotalAmount.Float64()
		income += v
		for _, it := range s.Items {
			p, _ := it.Profit().Float64()
			profit += p
		}
	}
	rows := [][]any{
		{"Ventas", len(list)},
		{"Unidades vendidas", units},
		{"Ingresos", income},
		{"Ganancia", profit},
	}
	for i, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &values); err != nil {
			return fmt.Errorf("excel: resumen: %w", err)
		}
	}
	_ = f.SetCellStyle(sheetSummary, "A1", "A4", headerStyle)
	_ = f.SetCellStyle(sheetSummary, "B3", "B4", moneyStyle)
	_ = f.SetColWidth(sheetSummary, "A", "A", 20)
	return nil
}
