package sku

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "SKUs"

var exportHeader = []any{
	"ID", "NDC", "Name", "Manufacturer", "Dosage Form", "Strength", "Package Size",
	"GTIN", "Status", "Created At", "Last Modified",
}

// WriteWorkbook renders records as a single-sheet xlsx workbook.
func WriteWorkbook(w io.Writer, records []SKU) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("sku export: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("sku export: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("sku export: style: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("sku export: header style: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			rec.ID, rec.NDC, rec.Name, rec.Manufacturer, rec.DosageForm, rec.Strength, rec.PackageSize,
			deref(rec.GTIN), string(rec.Status),
			rec.CreatedAt.UTC().Format(time.RFC3339), rec.LastModified.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("sku export: row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("sku export: freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("sku export: write: %w", err)
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
