package excel

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tallerpro/repuestos-api/internal/application/inventory"
	"github.com/xuri/excelize/v2"
)

// NombreArchivo arma el nombre de descarga del historial exportado,
// por ejemplo "Movimientos_Inventario_2026-08-28_14-05.xlsx".
func NombreArchivo(now time.Time) string {
	return fmt.Sprintf("Movimientos_Inventario_%s_%s.xlsx",
		now.Format("2006-01-02"), now.Format("15-04"))
}

// ExportarMovimientos genera el libro XLSX con el historial de movimientos.
func ExportarMovimientos(filas []inventory.FilaExportacion) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Movimientos"); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}
	sheet = "Movimientos"

	header := []interface{}{
		"Fecha", "Repuesto", "Tipo de movimiento", "Cantidad",
		"Stock anterior", "Stock posterior", "Registrado por", "Autorizado por",
		"Proveedor", "N° Factura", "N° OT", "Valor total", "Observaciones",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("escribir encabezado: %w", err)
	}

	estilo, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, estilo)
	}

	row := 2
	for _, fila := range filas {
		valorTotal := ""
		if fila.ValorTotal != nil {
			valorTotal = fila.ValorTotal.StringFixed(2)
		}
		excelRow := []interface{}{
			fila.Fecha.Format("2006-01-02 15:04"),
			fila.Repuesto,
			fila.TipoMovimiento,
			fila.Cantidad,
			fila.StockAnterior,
			fila.StockPosterior,
			fila.RegistradoPor,
			fila.AutorizadoPor,
			fila.Proveedor,
			fila.NumeroFactura,
			fila.NumeroOT,
			valorTotal,
			fila.Observaciones,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("celda fila %d: %w", row, err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("escribir fila %d: %w", row, err)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "B", 22)
	_ = f.SetColWidth(sheet, "C", "C", 26)
	_ = f.SetColWidth(sheet, "G", "M", 18)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escribir libro: %w", err)
	}
	return buf, nil
}
