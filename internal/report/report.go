// Package report renders bookings as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"uredno/internal/storage"
)

const SheetName = "Bookings"

var headers = []string{
	"ID", "Reference", "Customer", "Phone", "Service", "Property", "Size (m²)",
	"Frequency", "Address", "Date", "Slot", "Distance (km)", "Base", "Extras",
	"Distance fee", "Surcharges", "Discount", "Net", "VAT", "Total", "Status", "Created At",
}

// WriteBookings writes an xlsx workbook with one header row and one row per
// booking. Amounts are rounded to cents.
func WriteBookings(w io.Writer, bookings []storage.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, b := range bookings {
		data := []any{
			b.ID,
			b.Reference,
			b.CustomerName,
			b.CustomerPhone,
			b.ServiceType,
			b.PropertyType,
			cents(b.PropertySize),
			b.Frequency,
			b.Address,
			b.ScheduledDate.Format("2006-01-02"),
			b.TimeSlot,
			cents(b.DistanceKm),
			cents(b.BasePrice),
			cents(b.ExtrasTotal),
			cents(b.DistanceFee),
			cents(b.Surcharges),
			cents(b.DiscountAmount),
			cents(b.NetAmount),
			cents(b.VATAmount),
			cents(b.TotalPrice),
			string(b.Status),
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
