package httpapi

import (
	"bytes"
	"fmt"

	"eco-dashboard/internal/domain"

	"github.com/xuri/excelize/v2"
)

// MeasurementsExportHeader matches the measurement view columns.
var MeasurementsExportHeader = []string{
	"Fecha y Hora",
	"Valor",
	"Dispositivo",
	"Device ID",
}

// GenerateMeasurementsExport renders measurement views into an xlsx
// workbook.
func GenerateMeasurementsExport(rows []domain.MeasurementView) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; close explicitly on each path.

	sheetName := "Mediciones"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range MeasurementsExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, row := range rows {
		values := []any{row.FechaHora, row.Valor, row.Dispositivo, row.DeviceID}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "C", 18)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
