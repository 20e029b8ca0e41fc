// Package export serializes a ledger into downloadable CSV, XLSX and PDF
// documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"spendtrack/internal/core"
)

// Format identifies a supported export serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format query value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX, FormatPDF:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Filename returns the download name for a user's export.
func (f Format) Filename(user string) string {
	return fmt.Sprintf("expenses_%s.%s", user, f)
}

var header = []string{"Date", "Category", "Description", "Amount"}

// Write serializes records in the given format.
func Write(w io.Writer, f Format, user string, records []core.Record) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatXLSX:
		return WriteXLSX(w, records)
	case FormatPDF:
		return WritePDF(w, user, records)
	default:
		return fmt.Errorf("unsupported export format: %q", f)
	}
}

// WriteCSV emits the ledger wire format: header row plus one row per record.
// The output parses back into the same records.
func WriteCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Time.Format(core.TimeLayout),
			rec.Category,
			rec.Description,
			core.FormatCents(rec.Amount.Cents),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX emits a workbook with a single "Expenses" sheet.
func WriteXLSX(w io.Writer, records []core.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Expenses"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, rec := range records {
		values := []any{
			rec.Time.Format(core.TimeLayout),
			rec.Category,
			rec.Description,
			float64(rec.Amount.Cents) / 100,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Column widths and truncation limits for the PDF table.
const (
	pdfDateWidth     = 40
	pdfCategoryWidth = 30
	pdfDescWidth     = 90
	pdfAmountWidth   = 30

	maxCategoryRunes = 18
	maxDescRunes     = 45
)

// WritePDF emits a bordered report table titled with the owner's name.
// Category and description are truncated to keep rows on one line.
func WritePDF(w io.Writer, user string, records []core.Record) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	pdf.CellFormat(200, 10, fmt.Sprintf("Expense Report - %s", user), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{pdfDateWidth, pdfCategoryWidth, pdfDescWidth, pdfAmountWidth}
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	for _, rec := range records {
		pdf.CellFormat(widths[0], 7, rec.Time.Format(core.TimeLayout), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, truncate(rec.Category, maxCategoryRunes), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, truncate(rec.Description, maxDescRunes), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[3], 7, "Rs "+core.FormatCents(rec.Amount.Cents), "1", 1, "", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
